package user

import "github.com/lllypuk/imghost/internal/domain/uuid"

// CreateUserCommand creates a user
type CreateUserCommand struct {
	Username string
	Roles    []string
}

// DeleteUserCommand deletes a user
type DeleteUserCommand struct {
	UserID uuid.UUID
}
