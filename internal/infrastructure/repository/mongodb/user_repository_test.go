//go:build integration

package mongodb_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/imghost/internal/domain/errs"
	userdomain "github.com/lllypuk/imghost/internal/domain/user"
	"github.com/lllypuk/imghost/internal/domain/uuid"
	infmongo "github.com/lllypuk/imghost/internal/infrastructure/mongodb"
	"github.com/lllypuk/imghost/internal/infrastructure/repository/mongodb"
	"github.com/lllypuk/imghost/tests/testutil"
)

func setupUserRepository(t *testing.T) *mongodb.MongoUserRepository {
	t.Helper()

	db := testutil.SetupTestDatabase(t)
	return mongodb.NewMongoUserRepository(db.Collection(infmongo.CollectionUsers))
}

func TestMongoUserRepository_SaveAndFind(t *testing.T) {
	repo := setupUserRepository(t)
	ctx := context.Background()

	u := testutil.NewUserFixture(t, "alice")
	require.NoError(t, repo.Save(ctx, u))

	byID, err := repo.FindByID(ctx, u.ID())
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username())
	assert.Equal(t, []userdomain.Role{userdomain.RoleUser}, byID.Roles())
	testutil.AssertTimeApproximatelyEqual(t, u.CreatedAt(), byID.CreatedAt(), time.Millisecond)

	byName, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID(), byName.ID())

	exists, err := repo.Exists(ctx, u.ID())
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMongoUserRepository_NotFound(t *testing.T) {
	repo := setupUserRepository(t)
	ctx := context.Background()

	_, err := repo.FindByID(ctx, uuid.NewUUID())
	require.ErrorIs(t, err, errs.ErrNotFound)

	_, err = repo.FindByUsername(ctx, "nobody")
	require.ErrorIs(t, err, errs.ErrNotFound)

	exists, err := repo.Exists(ctx, uuid.NewUUID())
	require.NoError(t, err)
	assert.False(t, exists)

	require.ErrorIs(t, repo.Delete(ctx, uuid.NewUUID()), errs.ErrNotFound)
}

func TestMongoUserRepository_InvalidInput(t *testing.T) {
	repo := setupUserRepository(t)
	ctx := context.Background()

	_, err := repo.FindByID(ctx, "")
	require.ErrorIs(t, err, errs.ErrInvalidInput)
	require.ErrorIs(t, repo.Save(ctx, nil), errs.ErrInvalidInput)
	require.ErrorIs(t, repo.Delete(ctx, ""), errs.ErrInvalidInput)
}

func TestMongoUserRepository_DuplicateUsername(t *testing.T) {
	repo := setupUserRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, testutil.NewUserFixture(t, "bob")))

	err := repo.Save(ctx, testutil.NewUserFixture(t, "bob"))
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestMongoUserRepository_SaveUpdatesExisting(t *testing.T) {
	repo := setupUserRepository(t)
	ctx := context.Background()

	u := testutil.NewUserFixture(t, "carol")
	require.NoError(t, repo.Save(ctx, u))
	require.NoError(t, u.SetRoles([]userdomain.Role{userdomain.RoleAdmin}))
	require.NoError(t, repo.Save(ctx, u))

	found, err := repo.FindByID(ctx, u.ID())
	require.NoError(t, err)
	assert.True(t, found.HasRole(userdomain.RoleAdmin))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMongoUserRepository_ListPages(t *testing.T) {
	repo := setupUserRepository(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	users := testutil.UserFixtures(7, base)
	// Saved out of order, listed by creation time
	for i := len(users) - 1; i >= 0; i-- {
		require.NoError(t, repo.Save(ctx, users[i]))
	}

	first, err := repo.List(ctx, 0, 3)
	require.NoError(t, err)
	require.Len(t, first, 3)
	assert.Equal(t, "user000", first[0].Username())
	assert.Equal(t, "user002", first[2].Username())

	last, err := repo.List(ctx, 6, 3)
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, "user006", last[0].Username())

	beyond, err := repo.List(ctx, 9, 3)
	require.NoError(t, err)
	assert.NotNil(t, beyond)
	assert.Empty(t, beyond)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestMongoUserRepository_Delete(t *testing.T) {
	repo := setupUserRepository(t)
	ctx := context.Background()

	u := testutil.NewUserFixture(t, "dave")
	require.NoError(t, repo.Save(ctx, u))
	require.NoError(t, repo.Delete(ctx, u.ID()))

	_, err := repo.FindByID(ctx, u.ID())
	require.ErrorIs(t, err, errs.ErrNotFound)
}
