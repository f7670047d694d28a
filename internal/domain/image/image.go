// Package image holds the uploaded image aggregate.
package image

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	googleuuid "github.com/google/uuid"

	"github.com/lllypuk/imghost/internal/domain/errs"
	"github.com/lllypuk/imghost/internal/domain/uuid"
)

// DefaultFileName is used when an upload carries no file name.
const DefaultFileName = "image"

// Image is a stored upload owned by a user.
type Image struct {
	id        uuid.UUID
	userID    uuid.UUID
	created   time.Time
	fileName  string
	deleteKey string
}

// NewImage creates an image with a freshly generated delete key.
func NewImage(userID uuid.UUID, fileName string) (*Image, error) {
	if userID.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	name := strings.TrimSpace(fileName)
	if name == "" {
		name = DefaultFileName
	}

	return &Image{
		id:        uuid.NewUUID(),
		userID:    userID,
		created:   time.Now(),
		fileName:  name,
		deleteKey: strings.ReplaceAll(googleuuid.NewString(), "-", ""),
	}, nil
}

// Reconstruct restores an image from storage. deleteKey may be empty.
func Reconstruct(id, userID uuid.UUID, created time.Time, fileName, deleteKey string) *Image {
	return &Image{
		id:        id,
		userID:    userID,
		created:   created,
		fileName:  fileName,
		deleteKey: deleteKey,
	}
}

// ID returns the image id
func (i *Image) ID() uuid.UUID { return i.id }

// UserID returns the owner id
func (i *Image) UserID() uuid.UUID { return i.userID }

// Created returns upload time
func (i *Image) Created() time.Time { return i.created }

// FileName returns the original file name
func (i *Image) FileName() string { return i.fileName }

// DeleteKey returns the secret key, empty when it was not loaded.
func (i *Image) DeleteKey() string { return i.deleteKey }

// HasDeleteKey reports whether the key was loaded with the image.
func (i *Image) HasDeleteKey() bool { return i.deleteKey != "" }

// CheckDeleteKey compares key with the stored delete key.
// An image without a loaded key never matches.
func (i *Image) CheckDeleteKey(key string) bool {
	if i.deleteKey == "" || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(i.deleteKey), []byte(key)) == 1
}

// WithoutDeleteKey returns a copy safe for listing.
func (i *Image) WithoutDeleteKey() *Image {
	c := *i
	c.deleteKey = ""
	return &c
}

// Repository defines persistence of images.
// Reads never populate the delete key except FindByIDWithKey.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Image, error)
	FindByIDWithKey(ctx context.Context, id uuid.UUID) (*Image, error)
	List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*Image, error)
	Count(ctx context.Context, userID uuid.UUID) (int, error)
	// DistinctOwners returns every user id that owns at least one image.
	DistinctOwners(ctx context.Context) ([]uuid.UUID, error)
	Save(ctx context.Context, img *Image) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteByOwner removes all images of a user and returns how many were removed.
	DeleteByOwner(ctx context.Context, userID uuid.UUID) (int, error)
}
