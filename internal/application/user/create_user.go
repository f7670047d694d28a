package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/lllypuk/imghost/internal/domain/errs"
	"github.com/lllypuk/imghost/internal/domain/user"
)

// CreateUserUseCase registers a new user
type CreateUserUseCase struct {
	userRepo Repository
}

// NewCreateUserUseCase creates a new CreateUserUseCase
func NewCreateUserUseCase(userRepo Repository) *CreateUserUseCase {
	return &CreateUserUseCase{userRepo: userRepo}
}

// Execute validates the command and stores the user. Users without roles get RoleUser.
func (uc *CreateUserUseCase) Execute(ctx context.Context, cmd CreateUserCommand) (*user.User, error) {
	roles := make([]user.Role, 0, len(cmd.Roles))
	for _, raw := range cmd.Roles {
		r, err := user.ParseRole(raw)
		if err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}
		roles = append(roles, r)
	}
	if len(roles) == 0 {
		roles = []user.Role{user.RoleUser}
	}

	usr, err := user.NewUser(cmd.Username, roles)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	existing, err := uc.userRepo.FindByUsername(ctx, usr.Username())
	switch {
	case err == nil && existing != nil:
		return nil, ErrUsernameAlreadyExists
	case err != nil && !errors.Is(err, errs.ErrNotFound):
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	if err = uc.userRepo.Save(ctx, usr); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	return usr, nil
}
