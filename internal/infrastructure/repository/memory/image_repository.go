package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/lllypuk/imghost/internal/domain/errs"
	"github.com/lllypuk/imghost/internal/domain/image"
	"github.com/lllypuk/imghost/internal/domain/uuid"
)

// ImageRepository keeps images in a map guarded by a mutex.
type ImageRepository struct {
	mu     sync.RWMutex
	images map[uuid.UUID]*image.Image
}

// NewImageRepository creates an empty repository.
func NewImageRepository() *ImageRepository {
	return &ImageRepository{images: make(map[uuid.UUID]*image.Image)}
}

func (r *ImageRepository) FindByID(ctx context.Context, id uuid.UUID) (*image.Image, error) {
	img, err := r.FindByIDWithKey(ctx, id)
	if err != nil {
		return nil, err
	}
	return img.WithoutDeleteKey(), nil
}

func (r *ImageRepository) FindByIDWithKey(_ context.Context, id uuid.UUID) (*image.Image, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	img, ok := r.images[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return img, nil
}

// List returns images ordered by upload time, newest first. A zero userID matches every owner.
func (r *ImageRepository) List(_ context.Context, userID uuid.UUID, offset, limit int) ([]*image.Image, error) {
	matched := r.filter(userID)
	slices.SortFunc(matched, func(a, b *image.Image) int {
		return cmp.Or(b.Created().Compare(a.Created()), cmp.Compare(a.ID(), b.ID()))
	})

	out := page(matched, offset, limit)
	for i, img := range out {
		out[i] = img.WithoutDeleteKey()
	}
	return out, nil
}

func (r *ImageRepository) Count(_ context.Context, userID uuid.UUID) (int, error) {
	return len(r.filter(userID)), nil
}

func (r *ImageRepository) DistinctOwners(_ context.Context) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[uuid.UUID]struct{})
	owners := []uuid.UUID{}
	for _, img := range r.images {
		if _, ok := seen[img.UserID()]; ok {
			continue
		}
		seen[img.UserID()] = struct{}{}
		owners = append(owners, img.UserID())
	}
	slices.Sort(owners)
	return owners, nil
}

func (r *ImageRepository) Save(_ context.Context, img *image.Image) error {
	if img == nil {
		return errs.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.images[img.ID()] = img
	return nil
}

func (r *ImageRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.images[id]; !ok {
		return errs.ErrNotFound
	}
	delete(r.images, id)
	return nil
}

func (r *ImageRepository) DeleteByOwner(_ context.Context, userID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for id, img := range r.images {
		if img.UserID() == userID {
			delete(r.images, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *ImageRepository) filter(userID uuid.UUID) []*image.Image {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*image.Image, 0, len(r.images))
	for _, img := range r.images {
		if userID.IsZero() || img.UserID() == userID {
			out = append(out, img)
		}
	}
	return out
}
