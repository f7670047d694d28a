// Package memory provides in-memory repositories used by the mock wiring mode and tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/lllypuk/imghost/internal/domain/errs"
	"github.com/lllypuk/imghost/internal/domain/user"
	"github.com/lllypuk/imghost/internal/domain/uuid"
)

// UserRepository keeps users in a map guarded by a mutex.
type UserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*user.User
}

// NewUserRepository creates an empty repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[uuid.UUID]*user.User)}
}

func (r *UserRepository) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return u, nil
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username() == username {
			return u, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (r *UserRepository) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.users[id]
	return ok, nil
}

func (r *UserRepository) Save(_ context.Context, u *user.User) error {
	if u == nil {
		return errs.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.users {
		if id != u.ID() && existing.Username() == u.Username() {
			return errs.ErrAlreadyExists
		}
	}
	r.users[u.ID()] = u
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return errs.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// List returns users ordered by creation time, oldest first.
func (r *UserRepository) List(_ context.Context, offset, limit int) ([]*user.User, error) {
	r.mu.RLock()
	all := make([]*user.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, u)
	}
	r.mu.RUnlock()

	slices.SortFunc(all, func(a, b *user.User) int {
		return cmp.Or(a.CreatedAt().Compare(b.CreatedAt()), cmp.Compare(a.ID(), b.ID()))
	})

	return page(all, offset, limit), nil
}

func (r *UserRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}

func page[T any](all []T, offset, limit int) []T {
	if offset < 0 || offset >= len(all) {
		return []T{}
	}
	if limit <= 0 {
		return slices.Clone(all[offset:])
	}
	end := min(offset+limit, len(all))
	return slices.Clone(all[offset:end])
}
