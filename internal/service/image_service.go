package service

import (
	"context"

	"github.com/lllypuk/imghost/internal/application/appcore"
	imageapp "github.com/lllypuk/imghost/internal/application/image"
	"github.com/lllypuk/imghost/internal/domain/image"
	httphandler "github.com/lllypuk/imghost/internal/handler/http"
)

// Compile-time assertion that ImageService implements httphandler.ImageService.
var _ httphandler.ImageService = (*ImageService)(nil)

// ListImagesUseCase lists images.
type ListImagesUseCase = appcore.UseCase[imageapp.ListImagesQuery, imageapp.ImagesListResult]

// GetImageUseCase fetches an image.
type GetImageUseCase = appcore.UseCase[imageapp.GetImageQuery, *image.Image]

// DeleteImageUseCase defines the use case for deleting an image.
type DeleteImageUseCase interface {
	Execute(ctx context.Context, cmd imageapp.DeleteImageCommand) error
}

// ImageService implements httphandler.ImageService
type ImageService struct {
	listUC   ListImagesUseCase
	getUC    GetImageUseCase
	deleteUC DeleteImageUseCase
}

// ImageServiceConfig holds the dependencies of ImageService.
type ImageServiceConfig struct {
	ListUC   ListImagesUseCase
	GetUC    GetImageUseCase
	DeleteUC DeleteImageUseCase
}

// NewImageService creates a new ImageService.
func NewImageService(cfg ImageServiceConfig) *ImageService {
	return &ImageService{
		listUC:   cfg.ListUC,
		getUC:    cfg.GetUC,
		deleteUC: cfg.DeleteUC,
	}
}

// ListImages returns one page of images.
func (s *ImageService) ListImages(
	ctx context.Context,
	query imageapp.ListImagesQuery,
) (imageapp.ImagesListResult, error) {
	return s.listUC.Execute(ctx, query)
}

// GetImage returns image metadata.
func (s *ImageService) GetImage(ctx context.Context, query imageapp.GetImageQuery) (*image.Image, error) {
	return s.getUC.Execute(ctx, query)
}

// DeleteImage deletes an image when the key matches.
func (s *ImageService) DeleteImage(ctx context.Context, cmd imageapp.DeleteImageCommand) error {
	return s.deleteUC.Execute(ctx, cmd)
}
