package trial

import "time"

// DayStat holds the metrics a user reports for one published video of an
// attempt. At most one row exists per (attempt, day); a repeated submission
// for the same day overwrites the previous one.
type DayStat struct {
	ID        int64     `db:"id"`
	AttemptID int64     `db:"test_id"`
	UserID    int64     `db:"user_id"`
	Day       int       `db:"day"`
	PostLink  string    `db:"post_link"`
	Views     int64     `db:"views"`
	Likes     int64     `db:"likes"`
	Comments  int64     `db:"comments"`
	Follows   int64     `db:"follows"`
	CreatedAt time.Time `db:"created_at"`
}
