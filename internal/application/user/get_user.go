package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/lllypuk/imghost/internal/application/appcore"
	"github.com/lllypuk/imghost/internal/domain/errs"
	"github.com/lllypuk/imghost/internal/domain/user"
)

// GetUserUseCase fetches a single user
type GetUserUseCase struct {
	userRepo QueryRepository
}

// NewGetUserUseCase creates a new GetUserUseCase
func NewGetUserUseCase(userRepo QueryRepository) *GetUserUseCase {
	return &GetUserUseCase{userRepo: userRepo}
}

// Execute returns the user or ErrUserNotFound
func (uc *GetUserUseCase) Execute(ctx context.Context, query GetUserQuery) (*user.User, error) {
	if err := appcore.ValidateUUID("userID", query.UserID); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	usr, err := uc.userRepo.FindByID(ctx, query.UserID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return usr, nil
}
