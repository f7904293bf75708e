package user

import (
	"database/sql"
	"time"
)

// User represents a bot participant. Rows are created on first contact and
// never deleted; only the username is refreshed on later interactions.
type User struct {
	ID        int64          `db:"id"` // Telegram user ID
	Username  sql.NullString `db:"username"`
	CreatedAt time.Time      `db:"created_at"`
}

// DisplayName returns the @-prefixed username or a dash placeholder when the
// user has no public username.
func (u *User) DisplayName() string {
	if u.Username.Valid && u.Username.String != "" {
		return "@" + u.Username.String
	}
	return "—"
}
