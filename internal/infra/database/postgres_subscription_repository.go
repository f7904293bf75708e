package database

import (
	"context"
	"database/sql"
	"fmt"

	"neurolux_bot/internal/domain/subscription"

	"github.com/jmoiron/sqlx"
)

// Custom errors
var ErrIntentNotFound = fmt.Errorf("subscription intent not found")

type PostgresSubscriptionRepository struct {
	db *sqlx.DB
}

func NewPostgresSubscriptionRepository(db *sqlx.DB) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{db: db}
}

// Upsert creates or overwrites the user's intent. Status is always written as
// "pending"; the bot records interest, the operator handles the rest.
func (r *PostgresSubscriptionRepository) Upsert(ctx context.Context, userID int64, plan subscription.Plan) error {
	query := `INSERT INTO subscriptions (user_id, plan, status)
	           VALUES ($1, $2, $3)
	           ON CONFLICT (user_id) DO UPDATE
	           SET plan = EXCLUDED.plan, status = EXCLUDED.status, updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, userID, plan, subscription.StatusPending); err != nil {
		return fmt.Errorf("error upserting subscription intent: %w", err)
	}
	return nil
}

func (r *PostgresSubscriptionRepository) GetByUserID(ctx context.Context, userID int64) (*subscription.Intent, error) {
	query := `SELECT user_id, plan, status, updated_at FROM subscriptions WHERE user_id = $1`
	intent := &subscription.Intent{}
	if err := r.db.GetContext(ctx, intent, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrIntentNotFound
		}
		return nil, fmt.Errorf("error getting subscription intent: %w", err)
	}
	return intent, nil
}
