package trial

import (
	"context"
	"time"
)

// Repository defines the operations for persisting and retrieving Attempt entities.
type Repository interface {
	// Start creates a new attempt for the user. Any prior attempt that is
	// still active is force-completed in the same transaction, so at most one
	// attempt per user is ever active.
	Start(ctx context.Context, userID int64) (*Attempt, error)
	// Active returns the user's current unfinished attempt, or ErrAttemptNotFound.
	Active(ctx context.Context, userID int64) (*Attempt, error)
	// Latest returns the user's most recent attempt regardless of completion,
	// or ErrAttemptNotFound.
	Latest(ctx context.Context, userID int64) (*Attempt, error)
	// SetField updates a single answer column of the active attempt. A user
	// without an active attempt is a no-op.
	SetField(ctx context.Context, userID int64, field Field, value string) error
	SetDay(ctx context.Context, userID int64, day int) error
	// Finish marks the active attempt as done.
	Finish(ctx context.Context, userID int64) error
	// ListStale returns active attempts that have not been touched since the
	// cutoff, for the daily reminder job.
	ListStale(ctx context.Context, cutoff time.Time) ([]*Attempt, error)
}

// StatsRepository defines the operations for day statistics of an attempt.
type StatsRepository interface {
	// Upsert inserts the stats for (attempt, day), overwriting a previous
	// submission for the same day.
	Upsert(ctx context.Context, stat *DayStat) error
	// ListByAttempt returns all day stats of an attempt ordered by day ascending.
	ListByAttempt(ctx context.Context, attemptID int64) ([]*DayStat, error)
}
