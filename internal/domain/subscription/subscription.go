package subscription

import "time"

// Plan identifies the upgrade tier a user asked for.
type Plan string

const (
	PlanPremium Plan = "premium"
	PlanLux     Plan = "lux"
)

// Status of an intent. The bot takes no payments, so every intent the bot
// writes stays pending until the operator follows up personally.
type Status string

const StatusPending Status = "pending"

// Intent records a user's expressed interest in an upgrade tier. It is an
// operator follow-up marker, not a confirmed transaction. One row per user,
// overwritten on every new request.
type Intent struct {
	UserID    int64     `db:"user_id"`
	Plan      Plan      `db:"plan"`
	Status    Status    `db:"status"`
	UpdatedAt time.Time `db:"updated_at"`
}
