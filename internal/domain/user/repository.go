package user

import (
	"context"

	"github.com/lllypuk/imghost/internal/domain/uuid"
)

// Repository defines persistence of users.
type Repository interface {
	// FindByID returns errs.ErrNotFound when no user has the id.
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByUsername returns errs.ErrNotFound when no user has the name.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// Exists reports whether a user with the id is stored.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// Save inserts or replaces the user.
	Save(ctx context.Context, user *User) error

	// Delete returns errs.ErrNotFound when nothing was removed.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns users ordered by creation time.
	List(ctx context.Context, offset, limit int) ([]*User, error)

	// Count returns the total number of users.
	Count(ctx context.Context) (int, error)
}
