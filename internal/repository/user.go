package repository

import (
	"context"

	"docqa/internal/model"
)

// UserRepository persists identities. Usernames are unique.
type UserRepository interface {
	// Create inserts a user and returns ErrDuplicate if the username is taken.
	Create(ctx context.Context, u *model.User) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
}
