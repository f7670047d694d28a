// Package preference serves system preferences with defaults and an optional cache.
package preference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lllypuk/imghost/internal/domain/errs"
	"github.com/lllypuk/imghost/internal/domain/preference"
)

// Repository stores raw preference values
type Repository interface {
	FindAll(ctx context.Context) (map[string]string, error)
	Find(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key, raw string) error
}

// Cache keeps raw values close to the service. Get returns errs.ErrNotFound on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, raw string) error
	Delete(ctx context.Context, key string) error
}

// Service reads and writes system preferences
type Service struct {
	repo   Repository
	cache  Cache
	logger *slog.Logger
}

// ServiceOption configures Service
type ServiceOption func(*Service)

// WithCache enables caching of stored values
func WithCache(c Cache) ServiceOption {
	return func(s *Service) {
		s.cache = c
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates a new Service
func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{repo: repo, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAll returns every known preference, stored values overriding defaults.
// Stored values that no longer validate fall back to the default.
func (s *Service) GetAll(ctx context.Context) ([]preference.Preference, error) {
	stored, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	out := preference.Defaults()
	for i, def := range out {
		raw, ok := stored[def.Key]
		if !ok {
			continue
		}
		if p, ok := s.parseStored(ctx, def.Key, raw); ok {
			out[i] = p
		}
	}
	return out, nil
}

// Get returns a single preference
func (s *Service) Get(ctx context.Context, key string) (preference.Preference, error) {
	def, err := preference.Default(key)
	if err != nil {
		return preference.Preference{}, err
	}

	raw, err := s.lookup(ctx, key)
	if errors.Is(err, errs.ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return preference.Preference{}, fmt.Errorf("failed to load preference %s: %w", key, err)
	}

	if p, ok := s.parseStored(ctx, key, raw); ok {
		return p, nil
	}
	return def, nil
}

// Set validates and stores a preference
func (s *Service) Set(ctx context.Context, key, raw string) (preference.Preference, error) {
	p, err := preference.Validate(key, raw)
	if err != nil {
		return preference.Preference{}, err
	}

	if err = s.repo.Save(ctx, key, p.Raw()); err != nil {
		return preference.Preference{}, fmt.Errorf("failed to save preference %s: %w", key, err)
	}

	if s.cache != nil {
		if cacheErr := s.cache.Delete(ctx, key); cacheErr != nil {
			s.logger.WarnContext(ctx, "failed to invalidate preference cache",
				slog.String("key", key),
				slog.String("error", cacheErr.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "preference updated", slog.String("key", key), slog.String("value", p.Raw()))
	return p, nil
}

func (s *Service) lookup(ctx context.Context, key string) (string, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, key)
		if err == nil {
			return raw, nil
		}
		if !errors.Is(err, errs.ErrNotFound) {
			s.logger.WarnContext(ctx, "preference cache read failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}

	raw, err := s.repo.Find(ctx, key)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if cacheErr := s.cache.Set(ctx, key, raw); cacheErr != nil {
			s.logger.WarnContext(ctx, "preference cache write failed",
				slog.String("key", key),
				slog.String("error", cacheErr.Error()),
			)
		}
	}
	return raw, nil
}

func (s *Service) parseStored(ctx context.Context, key, raw string) (preference.Preference, bool) {
	p, err := preference.Validate(key, raw)
	if err != nil {
		s.logger.WarnContext(ctx, "ignoring invalid stored preference",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return preference.Preference{}, false
	}
	return p, true
}
