package user

import (
	"context"

	"github.com/lllypuk/imghost/internal/application/appcore"
)

const (
	// MaxListCount is the largest page a single request may ask for
	MaxListCount = 100
)

// ListUsersUseCase returns users page by page
type ListUsersUseCase struct {
	appcore.BaseUseCase

	userRepo QueryRepository
}

// NewListUsersUseCase creates a new ListUsersUseCase
func NewListUsersUseCase(userRepo QueryRepository) *ListUsersUseCase {
	return &ListUsersUseCase{userRepo: userRepo}
}

// Execute returns the requested page. A page past the end is empty, not an error.
func (uc *ListUsersUseCase) Execute(
	ctx context.Context,
	query ListUsersQuery,
) (UsersListResult, error) {
	if err := uc.ValidateContext(ctx); err != nil {
		return UsersListResult{}, err
	}
	if err := uc.validate(query); err != nil {
		return UsersListResult{}, uc.WrapError("validation failed", err)
	}

	totalCount, err := uc.userRepo.Count(ctx)
	if err != nil {
		return UsersListResult{}, uc.WrapError("failed to get users count", err)
	}

	users, err := uc.userRepo.List(ctx, query.Page*query.Count, query.Count)
	if err != nil {
		return UsersListResult{}, uc.WrapError("failed to list users", err)
	}

	return UsersListResult{
		Users: users,
		Total: totalCount,
		Count: query.Count,
		Page:  query.Page,
	}, nil
}

func (uc *ListUsersUseCase) validate(query ListUsersQuery) error {
	if err := appcore.ValidateNonNegative("page", query.Page); err != nil {
		return err
	}
	return appcore.ValidateRange("count", query.Count, 1, MaxListCount)
}
