package database

import (
	"context"
	"database/sql"
	"fmt"

	"neurolux_bot/internal/domain/user"

	"github.com/jmoiron/sqlx"
)

// Custom errors
var ErrUserNotFound = fmt.Errorf("user not found")

type PostgresUserRepository struct {
	db *sqlx.DB
}

func NewPostgresUserRepository(db *sqlx.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// Upsert creates the user on first contact and refreshes the username on
// subsequent interactions. An empty username never clears a stored one.
func (r *PostgresUserRepository) Upsert(ctx context.Context, telegramID int64, username string) error {
	query := `INSERT INTO users (id, username)
	           VALUES ($1, NULLIF($2, ''))
	           ON CONFLICT (id) DO UPDATE
	           SET username = COALESCE(NULLIF(EXCLUDED.username, ''), users.username)`

	if _, err := r.db.ExecContext(ctx, query, telegramID, username); err != nil {
		return fmt.Errorf("error upserting user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, telegramID int64) (*user.User, error) {
	query := `SELECT id, username, created_at FROM users WHERE id = $1`
	u := &user.User{}
	if err := r.db.GetContext(ctx, u, query, telegramID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user by ID: %w", err)
	}
	return u, nil
}
