// Package main provides the worker service entry point.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"golang.org/x/sync/errgroup"

	imageapp "github.com/lllypuk/imghost/internal/application/image"
	"github.com/lllypuk/imghost/internal/config"
	"github.com/lllypuk/imghost/internal/infrastructure/metrics"
	mongodbinfra "github.com/lllypuk/imghost/internal/infrastructure/mongodb"
	"github.com/lllypuk/imghost/internal/infrastructure/repository/mongodb"
	"github.com/lllypuk/imghost/internal/worker"
)

const (
	metricsAddrEnv         = "WORKER_METRICS_ADDR"
	metricsShutdownTimeout = 5 * time.Second
	metricsReadTimeout     = 5 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		//nolint:sloglint // No context available before logger setup
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	logger.Info("starting imghost worker service",
		slog.String("environment", cfg.App.Environment),
		slog.Bool("purge_enabled", cfg.Worker.PurgeEnabled),
		slog.Duration("purge_interval", cfg.Worker.PurgeInterval),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if runErr := run(ctx, cfg, logger); runErr != nil {
		logger.Error("worker service failed", slog.String("error", runErr.Error()))
		os.Exit(1)
	}

	logger.Info("worker service shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	mongoClient, err := connectMongoDB(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if disconnectErr := mongoClient.Disconnect(context.Background()); disconnectErr != nil {
			logger.Error("failed to disconnect from MongoDB", slog.String("error", disconnectErr.Error()))
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)
	userRepo := mongodb.NewMongoUserRepository(
		db.Collection(mongodbinfra.CollectionUsers),
		mongodb.WithUserRepoLogger(logger),
	)
	imageRepo := mongodb.NewMongoImageRepository(
		db.Collection(mongodbinfra.CollectionImages),
		mongodb.WithImageRepoLogger(logger),
	)

	registry := prometheus.NewRegistry()
	appMetrics := metrics.NewAppMetrics(registry)

	purgeWorker := worker.NewImagePurgeWorker(
		imageapp.NewPurgeOrphansUseCase(imageRepo, userRepo, logger),
		appMetrics,
		logger,
		worker.ImagePurgeConfig{
			Interval: cfg.Worker.PurgeInterval,
			Enabled:  cfg.Worker.PurgeEnabled,
		},
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if runErr := purgeWorker.Run(gctx); runErr != nil && !errors.Is(runErr, context.Canceled) {
			return runErr
		}
		return nil
	})

	if addr := os.Getenv(metricsAddrEnv); addr != "" {
		srv := &http.Server{
			Addr:              addr,
			Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: metricsReadTimeout,
		}
		g.Go(func() error {
			logger.InfoContext(gctx, "serving worker metrics", slog.String("addr", addr))
			if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				return serveErr
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

// setupLogger creates and configures the structured logger based on configuration.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLogLevel(cfg.Log.Level),
		AddSource: cfg.IsDevelopment(),
	}

	var handler slog.Handler
	switch cfg.Log.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// connectMongoDB establishes a connection to MongoDB.
func connectMongoDB(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*mongo.Client, error) {
	clientOpts := options.Client().
		ApplyURI(cfg.MongoDB.URI).
		SetMaxPoolSize(cfg.MongoDB.MaxPoolSize)

	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, cfg.MongoDB.Timeout)
	defer pingCancel()

	if pingErr := client.Ping(pingCtx, nil); pingErr != nil {
		_ = client.Disconnect(context.Background())
		return nil, pingErr
	}

	logger.InfoContext(ctx, "connected to MongoDB",
		slog.String("database", cfg.MongoDB.Database),
	)
	return client, nil
}
