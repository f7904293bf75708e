package subscription

import "context"

// Repository defines the operations for persisting subscription intents.
type Repository interface {
	// Upsert creates or overwrites the user's intent with status "pending".
	Upsert(ctx context.Context, userID int64, plan Plan) error
	// GetByUserID returns the user's intent, or ErrIntentNotFound.
	GetByUserID(ctx context.Context, userID int64) (*Intent, error)
}
