package user

import "github.com/lllypuk/imghost/internal/domain/uuid"

// GetUserQuery fetches a user by id
type GetUserQuery struct {
	UserID uuid.UUID
}

// ListUsersQuery fetches one page of users. Page is zero based.
type ListUsersQuery struct {
	Count int
	Page  int
}
