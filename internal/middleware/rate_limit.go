package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Rate limit defaults.
const (
	DefaultRateLimit       = 100
	DefaultRateLimitWindow = time.Minute
)

// Rate limit response headers.
const (
	HeaderRateLimitLimit     = "X-Ratelimit-Limit"
	HeaderRateLimitRemaining = "X-Ratelimit-Remaining"
	HeaderRateLimitReset     = "X-Ratelimit-Reset"
)

// RateLimitStore counts requests per key in fixed windows.
type RateLimitStore interface {
	// Increment increments the counter for key and returns the new count.
	// The window starts with the first increment.
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)

	// TTL returns the time left in the current window of key.
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// RateLimitConfig holds configuration for the rate limit middleware.
type RateLimitConfig struct {
	Logger *slog.Logger

	// Store is the counter backend. A nil store disables rate limiting.
	Store RateLimitStore

	// Limit is the maximum number of requests allowed per window.
	Limit int

	Window time.Duration

	// KeyFunc generates the rate limit key. Defaults to the client IP.
	KeyFunc func(c echo.Context) string

	SkipPaths []string
}

// DefaultRateLimitConfig returns a RateLimitConfig with sensible defaults.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Logger:    slog.Default(),
		Limit:     DefaultRateLimit,
		Window:    DefaultRateLimitWindow,
		SkipPaths: []string{"/health", "/ready", "/metrics"},
	}
}

// RateLimit returns a fixed window rate limiting middleware. Store failures
// let the request through.
func RateLimit(config RateLimitConfig) echo.MiddlewareFunc {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Limit <= 0 {
		config.Limit = DefaultRateLimit
	}
	if config.Window <= 0 {
		config.Window = DefaultRateLimitWindow
	}
	if config.KeyFunc == nil {
		config.KeyFunc = KeyByIP
	}
	skipPaths := pathSet(config.SkipPaths)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Store == nil {
				return next(c)
			}
			if _, ok := skipPaths[c.Request().URL.Path]; ok {
				return next(c)
			}

			ctx := c.Request().Context()
			key := config.KeyFunc(c)

			count, err := config.Store.Increment(ctx, key, config.Window)
			if err != nil {
				config.Logger.ErrorContext(ctx, "failed to increment rate limit counter",
					slog.String("key", key),
					slog.String("error", err.Error()),
				)
				return next(c)
			}

			limit := int64(config.Limit)
			header := c.Response().Header()
			header.Set(HeaderRateLimitLimit, strconv.FormatInt(limit, 10))
			header.Set(HeaderRateLimitRemaining, strconv.FormatInt(max(limit-count, 0), 10))

			ttl, err := config.Store.TTL(ctx, key)
			if err == nil && ttl > 0 {
				header.Set(HeaderRateLimitReset, strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))
			}

			if count > limit {
				config.Logger.WarnContext(ctx, "rate limit exceeded",
					slog.String("key", key),
					slog.Int64("count", count),
					slog.Int64("limit", limit),
					slog.String("path", c.Request().URL.Path),
				)
				return respondRateLimitError(c, ttl)
			}

			return next(c)
		}
	}
}

// KeyByIP keys requests by client IP.
func KeyByIP(c echo.Context) string {
	return "ip:" + c.RealIP()
}

// KeyByEndpoint keys requests by method, route and client IP.
func KeyByEndpoint(c echo.Context) string {
	return fmt.Sprintf("endpoint:%s:%s:%s", c.Request().Method, c.Path(), c.RealIP())
}

func respondRateLimitError(c echo.Context, retryAfter time.Duration) error {
	seconds := int64(retryAfter.Seconds())
	if retryAfter > 0 {
		c.Response().Header().Set("Retry-After", strconv.FormatInt(seconds, 10))
	}

	return c.JSON(http.StatusTooManyRequests, map[string]any{
		"success": false,
		"error": map[string]any{
			"code":        "RATE_LIMIT_EXCEEDED",
			"message":     "Too many requests. Please try again later.",
			"retry_after": seconds,
		},
	})
}

// MemoryRateLimitStore keeps counters in process memory. Used in mock mode and tests.
type MemoryRateLimitStore struct {
	mu     sync.Mutex
	counts map[string]*rateLimitEntry
	now    func() time.Time
}

type rateLimitEntry struct {
	count     int64
	expiresAt time.Time
}

// NewMemoryRateLimitStore creates a new in-memory rate limit store.
func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	return &MemoryRateLimitStore{
		counts: make(map[string]*rateLimitEntry),
		now:    time.Now,
	}
}

// Increment increments the counter for the given key.
func (s *MemoryRateLimitStore) Increment(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, ok := s.counts[key]
	if ok && now.Before(entry.expiresAt) {
		entry.count++
		return entry.count, nil
	}

	s.counts[key] = &rateLimitEntry{count: 1, expiresAt: now.Add(window)}
	return 1, nil
}

// TTL returns the remaining window of key, zero when there is none.
func (s *MemoryRateLimitStore) TTL(_ context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.counts[key]
	if !ok {
		return 0, nil
	}
	return max(entry.expiresAt.Sub(s.now()), 0), nil
}

// RedisRateLimitStore keeps counters in Redis so limits hold across API instances.
type RedisRateLimitStore struct {
	client    redis.Cmdable
	keyPrefix string
}

// NewRedisRateLimitStore creates a new Redis-based rate limit store.
func NewRedisRateLimitStore(client redis.Cmdable, keyPrefix string) *RedisRateLimitStore {
	if keyPrefix == "" {
		keyPrefix = "imghost:ratelimit:"
	}
	return &RedisRateLimitStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Increment increments the counter and starts its window when it has none.
func (s *RedisRateLimitStore) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	fullKey := s.keyPrefix + key

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, fullKey)
		pipe.ExpireNX(ctx, fullKey, window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter: %w", err)
	}

	return incr.Val(), nil
}

// TTL returns the remaining window of key.
func (s *RedisRateLimitStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.client.TTL(ctx, s.keyPrefix+key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get counter ttl: %w", err)
	}
	return max(ttl, 0), nil
}
