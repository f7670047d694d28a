package user

import "github.com/lllypuk/imghost/internal/domain/user"

// UsersListResult is one page of users
type UsersListResult struct {
	Users []*user.User
	Total int
	Count int
	Page  int
}

// SpecialUsersResult lists users with special handling
type SpecialUsersResult struct {
	UndeletableUsers []string
}
