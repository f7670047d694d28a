package image

import (
	"context"
	"errors"
	"fmt"

	"github.com/lllypuk/imghost/internal/application/appcore"
	"github.com/lllypuk/imghost/internal/domain/errs"
)

// DeleteImageUseCase deletes an image by id and delete key
type DeleteImageUseCase struct {
	repo Repository
}

// NewDeleteImageUseCase creates a new DeleteImageUseCase
func NewDeleteImageUseCase(repo Repository) *DeleteImageUseCase {
	return &DeleteImageUseCase{repo: repo}
}

// Execute deletes the image when the key matches
func (uc *DeleteImageUseCase) Execute(ctx context.Context, cmd DeleteImageCommand) error {
	if err := appcore.ValidateUUID("imageID", cmd.ImageID); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if err := appcore.ValidateRequired("key", cmd.DeleteKey); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	img, err := uc.repo.FindByIDWithKey(ctx, cmd.ImageID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return ErrImageNotFound
		}
		return fmt.Errorf("failed to find image: %w", err)
	}

	if !img.CheckDeleteKey(cmd.DeleteKey) {
		return ErrInvalidDeleteKey
	}

	if err = uc.repo.Delete(ctx, cmd.ImageID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return ErrImageNotFound
		}
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
