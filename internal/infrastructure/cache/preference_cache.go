// Package cache provides Redis-backed caches.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lllypuk/imghost/internal/domain/errs"
)

const (
	defaultPreferenceKeyPrefix = "imghost:preference:"
	defaultPreferenceTTL       = 5 * time.Minute
)

// PreferenceCache keeps raw preference values in Redis.
type PreferenceCache struct {
	client    redis.Cmdable
	keyPrefix string
	ttl       time.Duration
}

// PreferenceCacheConfig contains configuration for PreferenceCache.
type PreferenceCacheConfig struct {
	Client    redis.Cmdable
	KeyPrefix string
	TTL       time.Duration
}

// NewPreferenceCache creates a new Redis-based preference cache.
func NewPreferenceCache(cfg PreferenceCacheConfig) *PreferenceCache {
	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = defaultPreferenceKeyPrefix
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultPreferenceTTL
	}

	return &PreferenceCache{
		client:    cfg.Client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

func (c *PreferenceCache) key(name string) string {
	return c.keyPrefix + name
}

// Get returns the cached raw value or errs.ErrNotFound on a miss.
func (c *PreferenceCache) Get(ctx context.Context, name string) (string, error) {
	v, err := c.client.Get(ctx, c.key(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", errs.ErrNotFound
		}
		return "", fmt.Errorf("failed to get cached preference: %w", err)
	}
	return v, nil
}

// Set caches a raw value for the configured TTL.
func (c *PreferenceCache) Set(ctx context.Context, name, raw string) error {
	if err := c.client.Set(ctx, c.key(name), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache preference: %w", err)
	}
	return nil
}

// Delete drops a cached value. Deleting a missing key is not an error.
func (c *PreferenceCache) Delete(ctx context.Context, name string) error {
	if err := c.client.Del(ctx, c.key(name)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate preference: %w", err)
	}
	return nil
}
