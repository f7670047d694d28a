package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	imagedomain "github.com/lllypuk/imghost/internal/domain/image"
	userdomain "github.com/lllypuk/imghost/internal/domain/user"
	"github.com/lllypuk/imghost/internal/domain/uuid"
)

// NewUserFixture creates a user with the given username and the user role.
func NewUserFixture(t *testing.T, username string) *userdomain.User {
	t.Helper()

	u, err := userdomain.NewUser(username, []userdomain.Role{userdomain.RoleUser})
	require.NoError(t, err)
	return u
}

// UserFixtures creates n users named user000, user001... with creation times
// one second apart starting at base.
func UserFixtures(n int, base time.Time) []*userdomain.User {
	users := make([]*userdomain.User, 0, n)
	for i := range n {
		created := base.Add(time.Duration(i) * time.Second)
		users = append(users, userdomain.Reconstruct(
			uuid.NewUUID(),
			fmt.Sprintf("user%03d", i),
			[]userdomain.Role{userdomain.RoleUser},
			created,
			created,
		))
	}
	return users
}

// NewImageFixture creates an image of owner with a fresh delete key.
func NewImageFixture(t *testing.T, owner uuid.UUID, fileName string) *imagedomain.Image {
	t.Helper()

	img, err := imagedomain.NewImage(owner, fileName)
	require.NoError(t, err)
	return img
}
