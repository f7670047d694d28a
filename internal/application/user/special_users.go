package user

import (
	"context"
	"slices"
)

// SpecialUsersQuery exposes the usernames that can not be deleted.
// The list is fixed at construction.
type SpecialUsersQuery struct {
	undeletable []string
}

// NewSpecialUsersQuery creates a new SpecialUsersQuery
func NewSpecialUsersQuery(undeletable []string) *SpecialUsersQuery {
	return &SpecialUsersQuery{undeletable: slices.Clone(undeletable)}
}

// Execute returns the special users
func (q *SpecialUsersQuery) Execute(_ context.Context) SpecialUsersResult {
	return SpecialUsersResult{UndeletableUsers: slices.Clone(q.undeletable)}
}

// IsUndeletable reports whether username is protected from deletion
func (q *SpecialUsersQuery) IsUndeletable(username string) bool {
	return slices.Contains(q.undeletable, username)
}
