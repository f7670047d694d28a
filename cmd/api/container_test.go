package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userapp "github.com/lllypuk/imghost/internal/application/user"
	"github.com/lllypuk/imghost/internal/config"
	"github.com/lllypuk/imghost/internal/infrastructure/repository/memory"
	"github.com/lllypuk/imghost/internal/middleware"
)

func newMockConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.App.Mode = config.AppModeMock
	return cfg
}

func TestNewContainer_MockMode(t *testing.T) {
	c, err := NewContainer(newMockConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.Nil(t, c.MongoDB)
	assert.Nil(t, c.Redis)
	assert.Nil(t, c.PreferenceCache)
	assert.IsType(t, &memory.UserRepository{}, c.UserRepo)
	assert.IsType(t, &middleware.MemoryRateLimitStore{}, c.RateLimitStore)
	assert.NotNil(t, c.Registry)
	assert.NotNil(t, c.UserHandler)
	assert.NotNil(t, c.InfoHandler)
	assert.NotNil(t, c.ImageHandler)
	assert.NotNil(t, c.PreferenceHandler)
	assert.True(t, c.Health.IsReady(context.Background()))
}

func TestNewContainer_MockModeWithoutRateLimit(t *testing.T) {
	cfg := newMockConfig()
	cfg.RateLimit.Enabled = false

	c, err := NewContainer(cfg)
	require.NoError(t, err)
	assert.Nil(t, c.RateLimitStore)
}

func TestNewContainer_UndeletableUsersFromConfig(t *testing.T) {
	cfg := newMockConfig()
	cfg.Users.Undeletable = []string{"root"}

	c, err := NewContainer(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	root, err := c.UserService.CreateUser(ctx, userapp.CreateUserCommand{Username: "root"})
	require.NoError(t, err)

	err = c.UserService.DeleteUser(ctx, userapp.DeleteUserCommand{UserID: root.ID()})
	require.ErrorIs(t, err, userapp.ErrUndeletableUser)
	assert.Equal(t, []string{"root"}, c.UserService.SpecialUsers(ctx).UndeletableUsers)
}

func TestContainerOption_WithLogger(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	c := &Container{}
	WithLogger(logger)(c)
	assert.Same(t, logger, c.Logger)
}

func TestContainer_Close_NoResources(t *testing.T) {
	c := &Container{Logger: slog.Default()}
	assert.NoError(t, c.Close())
}

func TestContainer_ValidateWiring_RealModeRequiresBackends(t *testing.T) {
	c := &Container{Config: config.DefaultConfig(), Logger: slog.Default()}

	err := c.validateWiring()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongodb client not initialized")
	assert.Contains(t, err.Error(), "redis client not initialized")
}
