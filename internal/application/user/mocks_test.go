package user_test

import (
	"context"
	"slices"

	"github.com/lllypuk/imghost/internal/domain/errs"
	domainuser "github.com/lllypuk/imghost/internal/domain/user"
	"github.com/lllypuk/imghost/internal/domain/uuid"
)

// mockUserRepository keeps users in insertion order
type mockUserRepository struct {
	users     []*domainuser.User
	saveError error
	findError error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{}
}

func (m *mockUserRepository) FindByID(_ context.Context, id uuid.UUID) (*domainuser.User, error) {
	if m.findError != nil {
		return nil, m.findError
	}
	for _, u := range m.users {
		if u.ID() == id {
			return u, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (m *mockUserRepository) FindByUsername(_ context.Context, username string) (*domainuser.User, error) {
	if m.findError != nil {
		return nil, m.findError
	}
	for _, u := range m.users {
		if u.Username() == username {
			return u, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (m *mockUserRepository) Save(_ context.Context, usr *domainuser.User) error {
	if m.saveError != nil {
		return m.saveError
	}
	m.users = append(m.users, usr)
	return nil
}

func (m *mockUserRepository) Delete(_ context.Context, id uuid.UUID) error {
	before := len(m.users)
	m.users = slices.DeleteFunc(m.users, func(u *domainuser.User) bool { return u.ID() == id })
	if len(m.users) == before {
		return errs.ErrNotFound
	}
	return nil
}

func (m *mockUserRepository) List(_ context.Context, offset, limit int) ([]*domainuser.User, error) {
	if offset >= len(m.users) {
		return []*domainuser.User{}, nil
	}
	end := min(offset+limit, len(m.users))
	return slices.Clone(m.users[offset:end]), nil
}

func (m *mockUserRepository) Count(_ context.Context) (int, error) {
	return len(m.users), nil
}

func (m *mockUserRepository) seed(names ...string) []*domainuser.User {
	out := make([]*domainuser.User, 0, len(names))
	for _, name := range names {
		u, err := domainuser.NewUser(name, []domainuser.Role{domainuser.RoleUser})
		if err != nil {
			panic(err)
		}
		m.users = append(m.users, u)
		out = append(out, u)
	}
	return out
}

type countingRecorder struct {
	deleted int
	refused int
}

func (r *countingRecorder) UserDeleted()       { r.deleted++ }
func (r *countingRecorder) UserDeleteRefused() { r.refused++ }
