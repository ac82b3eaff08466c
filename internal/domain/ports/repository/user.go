package repository

import (
	"context"

	"telegram-chat-stats/internal/domain/model"
)

// -----------------------------
// Users
// -----------------------------

type UserRepository interface {
	// Upsert inserts the user or overwrites handle and names with the given values.
	Upsert(ctx context.Context, u *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}
