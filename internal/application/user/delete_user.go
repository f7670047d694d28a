package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lllypuk/imghost/internal/application/appcore"
	"github.com/lllypuk/imghost/internal/domain/errs"
)

// DeleteRecorder observes outcomes of user deletion.
type DeleteRecorder interface {
	UserDeleted()
	UserDeleteRefused()
}

// DeleteUserUseCase removes a user unless the user is undeletable
type DeleteUserUseCase struct {
	userRepo Repository
	special  *SpecialUsersQuery
	recorder DeleteRecorder
	logger   *slog.Logger
}

// DeleteUserOption configures DeleteUserUseCase
type DeleteUserOption func(*DeleteUserUseCase)

// WithDeleteRecorder sets the recorder of deletion outcomes
func WithDeleteRecorder(r DeleteRecorder) DeleteUserOption {
	return func(uc *DeleteUserUseCase) {
		uc.recorder = r
	}
}

// WithDeleteLogger sets the logger
func WithDeleteLogger(l *slog.Logger) DeleteUserOption {
	return func(uc *DeleteUserUseCase) {
		uc.logger = l
	}
}

// NewDeleteUserUseCase creates a new DeleteUserUseCase
func NewDeleteUserUseCase(userRepo Repository, special *SpecialUsersQuery, opts ...DeleteUserOption) *DeleteUserUseCase {
	uc := &DeleteUserUseCase{
		userRepo: userRepo,
		special:  special,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute deletes the user
func (uc *DeleteUserUseCase) Execute(ctx context.Context, cmd DeleteUserCommand) error {
	if err := appcore.ValidateUUID("userID", cmd.UserID); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	usr, err := uc.userRepo.FindByID(ctx, cmd.UserID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if uc.special.IsUndeletable(usr.Username()) {
		uc.logger.WarnContext(ctx, "refused to delete undeletable user",
			slog.String("user_id", cmd.UserID.String()),
			slog.String("username", usr.Username()),
		)
		if uc.recorder != nil {
			uc.recorder.UserDeleteRefused()
		}
		return ErrUndeletableUser
	}

	if err = uc.userRepo.Delete(ctx, cmd.UserID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if uc.recorder != nil {
		uc.recorder.UserDeleted()
	}
	return nil
}
