package image

import (
	"context"
	"fmt"

	"github.com/lllypuk/imghost/internal/application/appcore"
)

// ListImagesUseCase returns images page by page
type ListImagesUseCase struct {
	repo Repository
}

// NewListImagesUseCase creates a new ListImagesUseCase
func NewListImagesUseCase(repo Repository) *ListImagesUseCase {
	return &ListImagesUseCase{repo: repo}
}

// Execute returns the requested page. A zero UserID lists every image.
func (uc *ListImagesUseCase) Execute(ctx context.Context, query ListImagesQuery) (ImagesListResult, error) {
	if err := appcore.ValidateNonNegative("page", query.Page); err != nil {
		return ImagesListResult{}, fmt.Errorf("validation failed: %w", err)
	}
	if err := appcore.ValidateRange("count", query.Count, 1, MaxListCount); err != nil {
		return ImagesListResult{}, fmt.Errorf("validation failed: %w", err)
	}

	total, err := uc.repo.Count(ctx, query.UserID)
	if err != nil {
		return ImagesListResult{}, fmt.Errorf("failed to get images count: %w", err)
	}

	images, err := uc.repo.List(ctx, query.UserID, query.Page*query.Count, query.Count)
	if err != nil {
		return ImagesListResult{}, fmt.Errorf("failed to list images: %w", err)
	}

	return ImagesListResult{
		Images: images,
		Total:  total,
		Count:  query.Count,
		Page:   query.Page,
	}, nil
}
