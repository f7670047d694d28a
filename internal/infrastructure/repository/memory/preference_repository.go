package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/lllypuk/imghost/internal/domain/errs"
)

// PreferenceRepository keeps raw preference values in a map.
type PreferenceRepository struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewPreferenceRepository creates an empty repository.
func NewPreferenceRepository() *PreferenceRepository {
	return &PreferenceRepository{values: make(map[string]string)}
}

func (r *PreferenceRepository) FindAll(_ context.Context) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.values), nil
}

func (r *PreferenceRepository) Find(_ context.Context, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.values[key]
	if !ok {
		return "", errs.ErrNotFound
	}
	return v, nil
}

func (r *PreferenceRepository) Save(_ context.Context, key, raw string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = raw
	return nil
}
