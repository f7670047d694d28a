package service

import (
	"context"

	"github.com/lllypuk/imghost/internal/application/appcore"
	userapp "github.com/lllypuk/imghost/internal/application/user"
	"github.com/lllypuk/imghost/internal/domain/user"
	httphandler "github.com/lllypuk/imghost/internal/handler/http"
)

// Compile-time assertions that UserService serves the user and info handlers.
var (
	_ httphandler.UserService          = (*UserService)(nil)
	_ httphandler.SpecialUsersProvider = (*UserService)(nil)
)

// ListUsersUseCase lists users.
type ListUsersUseCase = appcore.UseCase[userapp.ListUsersQuery, userapp.UsersListResult]

// GetUserUseCase fetches a user.
type GetUserUseCase = appcore.UseCase[userapp.GetUserQuery, *user.User]

// CreateUserUseCase creates a user.
type CreateUserUseCase = appcore.UseCase[userapp.CreateUserCommand, *user.User]

// DeleteUserUseCase defines the use case for deleting a user.
type DeleteUserUseCase interface {
	Execute(ctx context.Context, cmd userapp.DeleteUserCommand) error
}

// SpecialUsersQuery defines the query for the special users.
type SpecialUsersQuery interface {
	Execute(ctx context.Context) userapp.SpecialUsersResult
}

// UserService implements httphandler.UserService
type UserService struct {
	listUC   ListUsersUseCase
	getUC    GetUserUseCase
	createUC CreateUserUseCase
	deleteUC DeleteUserUseCase
	special  SpecialUsersQuery
}

// UserServiceConfig holds the dependencies of UserService.
type UserServiceConfig struct {
	ListUC   ListUsersUseCase
	GetUC    GetUserUseCase
	CreateUC CreateUserUseCase
	DeleteUC DeleteUserUseCase
	Special  SpecialUsersQuery
}

// NewUserService creates a new UserService.
func NewUserService(cfg UserServiceConfig) *UserService {
	return &UserService{
		listUC:   cfg.ListUC,
		getUC:    cfg.GetUC,
		createUC: cfg.CreateUC,
		deleteUC: cfg.DeleteUC,
		special:  cfg.Special,
	}
}

// ListUsers returns one page of users.
func (s *UserService) ListUsers(
	ctx context.Context,
	query userapp.ListUsersQuery,
) (userapp.UsersListResult, error) {
	return s.listUC.Execute(ctx, query)
}

// GetUser returns a user by id.
func (s *UserService) GetUser(ctx context.Context, query userapp.GetUserQuery) (*user.User, error) {
	return s.getUC.Execute(ctx, query)
}

// CreateUser creates a user.
func (s *UserService) CreateUser(ctx context.Context, cmd userapp.CreateUserCommand) (*user.User, error) {
	return s.createUC.Execute(ctx, cmd)
}

// DeleteUser deletes a user unless it is undeletable.
func (s *UserService) DeleteUser(ctx context.Context, cmd userapp.DeleteUserCommand) error {
	return s.deleteUC.Execute(ctx, cmd)
}

// SpecialUsers returns the users with special handling.
func (s *UserService) SpecialUsers(ctx context.Context) userapp.SpecialUsersResult {
	return s.special.Execute(ctx)
}
