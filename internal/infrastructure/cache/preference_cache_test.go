//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/imghost/internal/domain/errs"
	"github.com/lllypuk/imghost/internal/infrastructure/cache"
	"github.com/lllypuk/imghost/tests/testutil"
)

func TestPreferenceCache(t *testing.T) {
	client, prefix := testutil.SetupTestRedisWithPrefix(t)
	c := cache.NewPreferenceCache(cache.PreferenceCacheConfig{
		Client:    client,
		KeyPrefix: prefix,
		TTL:       time.Minute,
	})
	ctx := context.Background()

	_, err := c.Get(ctx, "allow_editing")
	require.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, c.Set(ctx, "allow_editing", "false"))

	v, err := c.Get(ctx, "allow_editing")
	require.NoError(t, err)
	assert.Equal(t, "false", v)

	ttl, err := client.TTL(ctx, prefix+"allow_editing").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	require.NoError(t, c.Delete(ctx, "allow_editing"))
	require.NoError(t, c.Delete(ctx, "allow_editing"))

	_, err = c.Get(ctx, "allow_editing")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestPreferenceCache_Expires(t *testing.T) {
	client, prefix := testutil.SetupTestRedisWithPrefix(t)
	c := cache.NewPreferenceCache(cache.PreferenceCacheConfig{
		Client:    client,
		KeyPrefix: prefix,
		TTL:       100 * time.Millisecond,
	})
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "jwt_expires_in", "1d"))

	assert.Eventually(t, func() bool {
		_, err := c.Get(ctx, "jwt_expires_in")
		return err != nil
	}, 2*time.Second, 50*time.Millisecond)
}
