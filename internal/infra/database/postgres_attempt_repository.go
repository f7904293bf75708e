package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"neurolux_bot/internal/domain/trial"

	"github.com/jmoiron/sqlx"
)

// Custom errors
var (
	ErrAttemptNotFound = fmt.Errorf("test attempt not found")
	ErrUnknownField    = fmt.Errorf("unknown attempt field")
)

const attemptColumns = `id, user_id, niche, account_link, goal, material_video,
	material_note, day, is_done, created_at, updated_at`

type PostgresAttemptRepository struct {
	db *sqlx.DB
}

func NewPostgresAttemptRepository(db *sqlx.DB) *PostgresAttemptRepository {
	return &PostgresAttemptRepository{db: db}
}

// Start creates a new attempt for the user, force-completing any prior active
// one in the same transaction so the "one active attempt per user" invariant
// holds even under concurrent starts.
func (r *PostgresAttemptRepository) Start(ctx context.Context, userID int64) (*trial.Attempt, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error starting attempt transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE free_tests SET is_done = TRUE, updated_at = NOW() WHERE user_id = $1 AND NOT is_done`,
		userID,
	); err != nil {
		return nil, fmt.Errorf("error closing previous attempts: %w", err)
	}

	a := &trial.Attempt{}
	if err := tx.GetContext(ctx, a,
		`INSERT INTO free_tests (user_id) VALUES ($1) RETURNING `+attemptColumns,
		userID,
	); err != nil {
		return nil, fmt.Errorf("error creating attempt: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing attempt start: %w", err)
	}
	return a, nil
}

func (r *PostgresAttemptRepository) Active(ctx context.Context, userID int64) (*trial.Attempt, error) {
	query := `SELECT ` + attemptColumns + `
	           FROM free_tests
	           WHERE user_id = $1 AND NOT is_done
	           ORDER BY id DESC LIMIT 1`
	a := &trial.Attempt{}
	if err := r.db.GetContext(ctx, a, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("error getting active attempt: %w", err)
	}
	return a, nil
}

func (r *PostgresAttemptRepository) Latest(ctx context.Context, userID int64) (*trial.Attempt, error) {
	query := `SELECT ` + attemptColumns + `
	           FROM free_tests
	           WHERE user_id = $1
	           ORDER BY id DESC LIMIT 1`
	a := &trial.Attempt{}
	if err := r.db.GetContext(ctx, a, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("error getting latest attempt: %w", err)
	}
	return a, nil
}

// attemptColumn maps a typed field identifier to its column. The switch is the
// whole dispatch surface: there is no path from user input to a column name.
func attemptColumn(field trial.Field) (string, error) {
	switch field {
	case trial.FieldNiche:
		return "niche", nil
	case trial.FieldAccountLink:
		return "account_link", nil
	case trial.FieldGoal:
		return "goal", nil
	case trial.FieldMaterialVideo:
		return "material_video", nil
	case trial.FieldMaterialNote:
		return "material_note", nil
	default:
		return "", ErrUnknownField
	}
}

// SetField updates a single answer column of the user's active attempt.
// A user without an active attempt is a no-op, mirroring the dialogue flow
// where stale button presses may arrive after the attempt is finished.
func (r *PostgresAttemptRepository) SetField(ctx context.Context, userID int64, field trial.Field, value string) error {
	column, err := attemptColumn(field)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(
		`UPDATE free_tests SET %s = $1, updated_at = NOW() WHERE user_id = $2 AND NOT is_done`,
		column,
	)
	if _, err := r.db.ExecContext(ctx, query, value, userID); err != nil {
		return fmt.Errorf("error updating attempt field %s: %w", column, err)
	}
	return nil
}

func (r *PostgresAttemptRepository) SetDay(ctx context.Context, userID int64, day int) error {
	query := `UPDATE free_tests SET day = $1, updated_at = NOW() WHERE user_id = $2 AND NOT is_done`
	if _, err := r.db.ExecContext(ctx, query, day, userID); err != nil {
		return fmt.Errorf("error updating attempt day: %w", err)
	}
	return nil
}

func (r *PostgresAttemptRepository) Finish(ctx context.Context, userID int64) error {
	query := `UPDATE free_tests SET is_done = TRUE, updated_at = NOW() WHERE user_id = $1 AND NOT is_done`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("error finishing attempt: %w", err)
	}
	return nil
}

// ListStale returns active attempts not touched since the cutoff, for the
// daily reminder job.
func (r *PostgresAttemptRepository) ListStale(ctx context.Context, cutoff time.Time) ([]*trial.Attempt, error) {
	query := `SELECT ` + attemptColumns + `
	           FROM free_tests
	           WHERE NOT is_done AND updated_at < $1
	           ORDER BY updated_at ASC`
	attempts := make([]*trial.Attempt, 0)
	if err := r.db.SelectContext(ctx, &attempts, query, cutoff); err != nil {
		return nil, fmt.Errorf("error listing stale attempts: %w", err)
	}
	return attempts, nil
}
