package trial

import (
	"database/sql"
	"time"
)

// Attempt represents one run of the free 3-day content test for a user.
// Fields are filled in one by one as the dialogue progresses, so most of them
// are nullable until the corresponding funnel step is answered.
type Attempt struct {
	ID            int64          `db:"id"`
	UserID        int64          `db:"user_id"`
	Niche         sql.NullString `db:"niche"`
	AccountLink   sql.NullString `db:"account_link"`
	Goal          sql.NullString `db:"goal"`
	MaterialVideo sql.NullString `db:"material_video"` // Telegram file ID of the submitted source video
	MaterialNote  sql.NullString `db:"material_note"`  // free-text description of the material
	Day           int            `db:"day"`            // current test day, 1..3
	IsDone        bool           `db:"is_done"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

// LastDay is the final day of the content test.
const LastDay = 3

// Field identifies a single updatable attempt column. Repositories map each
// value to its column explicitly, so arbitrary column writes are impossible.
type Field int

const (
	FieldNiche Field = iota
	FieldAccountLink
	FieldGoal
	FieldMaterialVideo
	FieldMaterialNote
)
