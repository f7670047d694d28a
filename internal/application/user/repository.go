package user

import (
	"context"

	"github.com/lllypuk/imghost/internal/domain/user"
	"github.com/lllypuk/imghost/internal/domain/uuid"
)

// CommandRepository defines the write side of the user store.
// Declared on the consumer side.
type CommandRepository interface {
	Save(ctx context.Context, u *user.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// QueryRepository defines the read side of the user store.
type QueryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	FindByUsername(ctx context.Context, username string) (*user.User, error)
	List(ctx context.Context, offset, limit int) ([]*user.User, error)
	Count(ctx context.Context) (int, error)
}

// Repository combines Command and Query interfaces for convenience
type Repository interface {
	CommandRepository
	QueryRepository
}
