package image

import (
	"context"
	"errors"
	"fmt"

	"github.com/lllypuk/imghost/internal/application/appcore"
	"github.com/lllypuk/imghost/internal/domain/errs"
	"github.com/lllypuk/imghost/internal/domain/image"
)

// GetImageUseCase fetches image metadata without its delete key
type GetImageUseCase struct {
	repo Repository
}

// NewGetImageUseCase creates a new GetImageUseCase
func NewGetImageUseCase(repo Repository) *GetImageUseCase {
	return &GetImageUseCase{repo: repo}
}

// Execute returns the image or ErrImageNotFound
func (uc *GetImageUseCase) Execute(ctx context.Context, query GetImageQuery) (*image.Image, error) {
	if err := appcore.ValidateUUID("imageID", query.ImageID); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	img, err := uc.repo.FindByID(ctx, query.ImageID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to find image: %w", err)
	}

	return img.WithoutDeleteKey(), nil
}
