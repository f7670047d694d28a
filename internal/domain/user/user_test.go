package user_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/imghost/internal/domain/errs"
	userDomain "github.com/lllypuk/imghost/internal/domain/user"
	"github.com/lllypuk/imghost/internal/domain/uuid"
)

func TestNewUser_Success(t *testing.T) {
	user, err := userDomain.NewUser("John_Doe", []userDomain.Role{userDomain.RoleUser})

	require.NoError(t, err)
	assert.False(t, user.ID().IsZero())
	assert.Equal(t, "john_doe", user.Username())
	assert.Equal(t, []userDomain.Role{userDomain.RoleUser}, user.Roles())
	assert.WithinDuration(t, time.Now(), user.CreatedAt(), time.Second)
	assert.Equal(t, user.CreatedAt(), user.UpdatedAt())
}

func TestNewUser_InvalidUsername(t *testing.T) {
	testCases := []struct {
		name     string
		username string
	}{
		{"empty", ""},
		{"too short", "ab"},
		{"too long", strings.Repeat("a", 33)},
		{"spaces", "john doe"},
		{"punctuation", "john.doe"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			user, err := userDomain.NewUser(tc.username, nil)

			require.ErrorIs(t, err, errs.ErrInvalidInput)
			assert.Nil(t, user)
		})
	}
}

func TestNewUser_UnknownRole(t *testing.T) {
	user, err := userDomain.NewUser("alice", []userDomain.Role{"root"})

	require.ErrorIs(t, err, errs.ErrInvalidInput)
	assert.Nil(t, user)
}

func TestUser_RolesAreCopied(t *testing.T) {
	roles := []userDomain.Role{userDomain.RoleAdmin}
	user, err := userDomain.NewUser("alice", roles)
	require.NoError(t, err)

	roles[0] = userDomain.RoleGuest
	got := user.Roles()
	got = append(got, userDomain.RoleSystem)

	assert.Equal(t, []userDomain.Role{userDomain.RoleAdmin}, user.Roles())
	assert.Len(t, got, 2)
}

func TestUser_HasRoleAndSetRoles(t *testing.T) {
	user, err := userDomain.NewUser("alice", []userDomain.Role{userDomain.RoleUser})
	require.NoError(t, err)
	before := user.UpdatedAt()

	assert.True(t, user.HasRole(userDomain.RoleUser))
	assert.False(t, user.HasRole(userDomain.RoleAdmin))

	time.Sleep(time.Millisecond)
	require.NoError(t, user.SetRoles([]userDomain.Role{userDomain.RoleAdmin, userDomain.RoleUser}))
	assert.True(t, user.HasRole(userDomain.RoleAdmin))
	assert.True(t, user.UpdatedAt().After(before))

	require.ErrorIs(t, user.SetRoles([]userDomain.Role{"nope"}), errs.ErrInvalidInput)
	assert.True(t, user.HasRole(userDomain.RoleAdmin))
}

func TestParseRole(t *testing.T) {
	r, err := userDomain.ParseRole(" Admin ")
	require.NoError(t, err)
	assert.Equal(t, userDomain.RoleAdmin, r)

	_, err = userDomain.ParseRole("superuser")
	require.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestReconstruct(t *testing.T) {
	id := uuid.NewUUID()
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	user := userDomain.Reconstruct(id, "guest", []userDomain.Role{userDomain.RoleGuest}, created, created)

	assert.Equal(t, id, user.ID())
	assert.Equal(t, "guest", user.Username())
	assert.Equal(t, created, user.CreatedAt())
}
