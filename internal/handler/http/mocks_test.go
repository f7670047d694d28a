package httphandler_test

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lllypuk/imghost/internal/application/appcore"
	imageapp "github.com/lllypuk/imghost/internal/application/image"
	userapp "github.com/lllypuk/imghost/internal/application/user"
	"github.com/lllypuk/imghost/internal/domain/image"
	"github.com/lllypuk/imghost/internal/domain/user"
	"github.com/lllypuk/imghost/internal/domain/uuid"
)

// mockUserService keeps users in insertion order.
type mockUserService struct {
	users       []*user.User
	undeletable []string
	listErr     error
}

func newMockUserService(t *testing.T, usernames ...string) *mockUserService {
	t.Helper()

	m := &mockUserService{}
	for _, name := range usernames {
		u, err := user.NewUser(name, []user.Role{user.RoleUser})
		require.NoError(t, err)
		m.users = append(m.users, u)
	}
	return m
}

func (m *mockUserService) ListUsers(
	_ context.Context,
	query userapp.ListUsersQuery,
) (userapp.UsersListResult, error) {
	if m.listErr != nil {
		return userapp.UsersListResult{}, m.listErr
	}
	if query.Page < 0 || query.Count < 1 || query.Count > userapp.MaxListCount {
		return userapp.UsersListResult{}, appcore.NewValidationError("count", "out of range")
	}

	start := min(query.Page*query.Count, len(m.users))
	end := min(start+query.Count, len(m.users))
	return userapp.UsersListResult{
		Users: m.users[start:end],
		Total: len(m.users),
		Count: query.Count,
		Page:  query.Page,
	}, nil
}

func (m *mockUserService) GetUser(_ context.Context, query userapp.GetUserQuery) (*user.User, error) {
	for _, u := range m.users {
		if u.ID() == query.UserID {
			return u, nil
		}
	}
	return nil, userapp.ErrUserNotFound
}

func (m *mockUserService) CreateUser(_ context.Context, cmd userapp.CreateUserCommand) (*user.User, error) {
	roles := make([]user.Role, 0, len(cmd.Roles))
	for _, r := range cmd.Roles {
		roles = append(roles, user.Role(r))
	}
	u, err := user.NewUser(cmd.Username, roles)
	if err != nil {
		return nil, err
	}
	for _, existing := range m.users {
		if existing.Username() == u.Username() {
			return nil, userapp.ErrUsernameAlreadyExists
		}
	}
	m.users = append(m.users, u)
	return u, nil
}

func (m *mockUserService) DeleteUser(_ context.Context, cmd userapp.DeleteUserCommand) error {
	for i, u := range m.users {
		if u.ID() != cmd.UserID {
			continue
		}
		if slices.Contains(m.undeletable, u.Username()) {
			return userapp.ErrUndeletableUser
		}
		m.users = slices.Delete(m.users, i, i+1)
		return nil
	}
	return userapp.ErrUserNotFound
}

func (m *mockUserService) SpecialUsers(_ context.Context) userapp.SpecialUsersResult {
	return userapp.SpecialUsersResult{UndeletableUsers: m.undeletable}
}

type mockImageService struct {
	images    []*image.Image
	lastQuery imageapp.ListImagesQuery
}

func (m *mockImageService) ListImages(
	_ context.Context,
	query imageapp.ListImagesQuery,
) (imageapp.ImagesListResult, error) {
	m.lastQuery = query

	var matched []*image.Image
	for _, img := range m.images {
		if query.UserID.IsZero() || img.UserID() == query.UserID {
			matched = append(matched, img.WithoutDeleteKey())
		}
	}
	return imageapp.ImagesListResult{Images: matched, Total: len(matched), Count: query.Count, Page: query.Page}, nil
}

func (m *mockImageService) GetImage(_ context.Context, query imageapp.GetImageQuery) (*image.Image, error) {
	img, ok := m.find(query.ImageID)
	if !ok {
		return nil, imageapp.ErrImageNotFound
	}
	return img.WithoutDeleteKey(), nil
}

func (m *mockImageService) DeleteImage(_ context.Context, cmd imageapp.DeleteImageCommand) error {
	img, ok := m.find(cmd.ImageID)
	if !ok {
		return imageapp.ErrImageNotFound
	}
	if !img.CheckDeleteKey(cmd.DeleteKey) {
		return imageapp.ErrInvalidDeleteKey
	}
	m.images = slices.DeleteFunc(m.images, func(i *image.Image) bool { return i.ID() == cmd.ImageID })
	return nil
}

func (m *mockImageService) find(id uuid.UUID) (*image.Image, bool) {
	for _, img := range m.images {
		if img.ID() == id {
			return img, true
		}
	}
	return nil, false
}
