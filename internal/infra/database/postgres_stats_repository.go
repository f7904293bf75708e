package database

import (
	"context"
	"fmt"

	"neurolux_bot/internal/domain/trial"

	"github.com/jmoiron/sqlx"
)

type PostgresStatsRepository struct {
	db *sqlx.DB
}

func NewPostgresStatsRepository(db *sqlx.DB) *PostgresStatsRepository {
	return &PostgresStatsRepository{db: db}
}

// Upsert inserts the day stats for (attempt, day). A repeated submission for
// the same day overwrites the previous row instead of duplicating it.
func (r *PostgresStatsRepository) Upsert(ctx context.Context, stat *trial.DayStat) error {
	query := `INSERT INTO day_stats (test_id, user_id, day, post_link, views, likes, comments, follows)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	           ON CONFLICT (test_id, day) DO UPDATE
	           SET post_link = EXCLUDED.post_link,
	               views     = EXCLUDED.views,
	               likes     = EXCLUDED.likes,
	               comments  = EXCLUDED.comments,
	               follows   = EXCLUDED.follows
	           RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		stat.AttemptID, stat.UserID, stat.Day, stat.PostLink,
		stat.Views, stat.Likes, stat.Comments, stat.Follows,
	).Scan(&stat.ID, &stat.CreatedAt)
	if err != nil {
		return fmt.Errorf("error upserting day stats: %w", err)
	}
	return nil
}

func (r *PostgresStatsRepository) ListByAttempt(ctx context.Context, attemptID int64) ([]*trial.DayStat, error) {
	query := `SELECT id, test_id, user_id, day, post_link, views, likes, comments, follows, created_at
	           FROM day_stats
	           WHERE test_id = $1
	           ORDER BY day ASC`
	stats := make([]*trial.DayStat, 0)
	if err := r.db.SelectContext(ctx, &stats, query, attemptID); err != nil {
		return nil, fmt.Errorf("error listing day stats: %w", err)
	}
	return stats, nil
}
