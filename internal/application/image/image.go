// Package image contains use cases over stored images.
package image

import (
	"context"
	"errors"

	"github.com/lllypuk/imghost/internal/domain/image"
	"github.com/lllypuk/imghost/internal/domain/uuid"
)

const (
	// MaxListCount is the largest page a single request may ask for
	MaxListCount = 100
)

var (
	// ErrImageNotFound is returned when the image does not exist
	ErrImageNotFound = errors.New("image not found")

	// ErrInvalidDeleteKey is returned when the delete key does not match
	ErrInvalidDeleteKey = errors.New("invalid delete key")
)

// Repository is the image store as seen by the use cases
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*image.Image, error)
	FindByIDWithKey(ctx context.Context, id uuid.UUID) (*image.Image, error)
	List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*image.Image, error)
	Count(ctx context.Context, userID uuid.UUID) (int, error)
	DistinctOwners(ctx context.Context) ([]uuid.UUID, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByOwner(ctx context.Context, userID uuid.UUID) (int, error)
}

// OwnerChecker reports whether a user still exists
type OwnerChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// ListImagesQuery fetches a page of images, optionally of a single owner
type ListImagesQuery struct {
	UserID uuid.UUID
	Count  int
	Page   int
}

// ImagesListResult is one page of images
type ImagesListResult struct {
	Images []*image.Image
	Total  int
	Count  int
	Page   int
}

// GetImageQuery fetches an image by id
type GetImageQuery struct {
	ImageID uuid.UUID
}

// DeleteImageCommand deletes an image when the key matches
type DeleteImageCommand struct {
	ImageID   uuid.UUID
	DeleteKey string
}

// PurgeResult summarizes a purge run
type PurgeResult struct {
	OwnersChecked int
	OrphanOwners  int
	ImagesDeleted int
}
