package user

import "context"

// Repository defines the operations for persisting and retrieving User entities.
type Repository interface {
	// Upsert creates the user on first contact and refreshes the username on
	// subsequent ones. An empty username never overwrites a stored one.
	Upsert(ctx context.Context, telegramID int64, username string) error
	GetByID(ctx context.Context, telegramID int64) (*User, error)
}
