// Package worker contains background jobs of the image host.
package worker

import (
	"context"
	"log/slog"
	"time"

	imageapp "github.com/lllypuk/imghost/internal/application/image"
)

// Default image purge worker configuration values.
const (
	defaultPurgeInterval = time.Hour
)

// ImagePurgeConfig contains configuration for the image purge worker.
type ImagePurgeConfig struct {
	// Interval is the time between purge runs.
	Interval time.Duration

	// Enabled determines if the worker should run.
	Enabled bool
}

// DefaultImagePurgeConfig returns the default configuration.
func DefaultImagePurgeConfig() ImagePurgeConfig {
	return ImagePurgeConfig{
		Interval: defaultPurgeInterval,
		Enabled:  true,
	}
}

// OrphanPurger deletes images whose owner is gone.
type OrphanPurger interface {
	Execute(ctx context.Context) (imageapp.PurgeResult, error)
}

// PurgeObserver records the outcome of purge runs.
type PurgeObserver interface {
	ObservePurge(orphans, purged int, elapsed time.Duration, err error)
}

// ImagePurgeWorker periodically removes images of deleted users.
type ImagePurgeWorker struct {
	purger   OrphanPurger
	observer PurgeObserver
	logger   *slog.Logger
	config   ImagePurgeConfig
}

// NewImagePurgeWorker creates a new image purge worker. observer may be nil.
func NewImagePurgeWorker(
	purger OrphanPurger,
	observer PurgeObserver,
	logger *slog.Logger,
	config ImagePurgeConfig,
) *ImagePurgeWorker {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Interval <= 0 {
		config.Interval = defaultPurgeInterval
	}

	return &ImagePurgeWorker{
		purger:   purger,
		observer: observer,
		logger:   logger,
		config:   config,
	}
}

// Run purges once immediately and then on every tick until ctx is cancelled.
func (w *ImagePurgeWorker) Run(ctx context.Context) error {
	if !w.config.Enabled {
		w.logger.InfoContext(ctx, "image purge worker is disabled")
		return nil
	}

	w.logger.InfoContext(ctx, "starting image purge worker",
		slog.Duration("interval", w.config.Interval),
	)

	w.RunOnce(ctx)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "image purge worker stopped")
			return ctx.Err()

		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single purge run. Failures are logged and recorded.
func (w *ImagePurgeWorker) RunOnce(ctx context.Context) {
	start := time.Now()
	result, err := w.purger.Execute(ctx)
	elapsed := time.Since(start)

	if w.observer != nil {
		w.observer.ObservePurge(result.OrphanOwners, result.ImagesDeleted, elapsed, err)
	}

	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger.ErrorContext(ctx, "image purge failed",
			slog.String("error", err.Error()),
			slog.Int("images_deleted", result.ImagesDeleted),
		)
		return
	}

	level := slog.LevelDebug
	if result.ImagesDeleted > 0 {
		level = slog.LevelInfo
	}
	w.logger.Log(ctx, level, "image purge completed",
		slog.Int("owners_checked", result.OwnersChecked),
		slog.Int("orphan_owners", result.OrphanOwners),
		slog.Int("images_deleted", result.ImagesDeleted),
		slog.Duration("duration", elapsed),
	)
}
