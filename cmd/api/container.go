// Package main provides the API server entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	imageapp "github.com/lllypuk/imghost/internal/application/image"
	prefapp "github.com/lllypuk/imghost/internal/application/preference"
	userapp "github.com/lllypuk/imghost/internal/application/user"
	"github.com/lllypuk/imghost/internal/config"
	"github.com/lllypuk/imghost/internal/domain/uuid"
	httphandler "github.com/lllypuk/imghost/internal/handler/http"
	"github.com/lllypuk/imghost/internal/infrastructure/cache"
	"github.com/lllypuk/imghost/internal/infrastructure/httpserver"
	"github.com/lllypuk/imghost/internal/infrastructure/metrics"
	mongodbinfra "github.com/lllypuk/imghost/internal/infrastructure/mongodb"
	"github.com/lllypuk/imghost/internal/infrastructure/repository/memory"
	"github.com/lllypuk/imghost/internal/infrastructure/repository/mongodb"
	"github.com/lllypuk/imghost/internal/middleware"
	"github.com/lllypuk/imghost/internal/service"
)

// Container initialization timeouts.
const (
	containerInitTimeout   = 30 * time.Second
	redisPingTimeout       = 5 * time.Second
	mongoDisconnectTimeout = 10 * time.Second
	healthCheckTimeout     = 3 * time.Second
)

// UserStore is the user repository as used by the API and the purge job.
type UserStore interface {
	userapp.Repository
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Container holds all application dependencies and manages their lifecycle.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Infrastructure, nil in mock mode
	MongoDB     *mongo.Client
	MongoDBName string
	Redis       *redis.Client

	Registry *prometheus.Registry
	Metrics  *metrics.AppMetrics
	Health   *httpserver.Checks

	// Repositories
	UserRepo        UserStore
	ImageRepo       imageapp.Repository
	PreferenceRepo  prefapp.Repository
	PreferenceCache prefapp.Cache

	RateLimitStore middleware.RateLimitStore

	// Services
	UserService       *service.UserService
	ImageService      *service.ImageService
	PreferenceService *prefapp.Service

	// HTTP handlers
	UserHandler       *httphandler.UserHandler
	InfoHandler       *httphandler.InfoHandler
	ImageHandler      *httphandler.ImageHandler
	PreferenceHandler *httphandler.PreferenceHandler
}

// ContainerOption configures a Container.
type ContainerOption func(*Container)

// WithLogger sets a custom logger for the container.
func WithLogger(logger *slog.Logger) ContainerOption {
	return func(c *Container) {
		c.Logger = logger
	}
}

// NewContainer creates a new dependency injection container.
// The wiring mode (real/mock) is determined by config.App.Mode.
func NewContainer(cfg *config.Config, opts ...ContainerOption) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}

	c.logWiringMode()
	c.setupMetrics()

	if cfg.App.IsMockMode() {
		c.setupMockInfrastructure()
	} else if err := c.setupInfrastructure(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to setup infrastructure: %w", err)
	}

	c.setupServices()
	c.setupHTTPHandlers()
	c.setupHealthChecks()

	if err := c.validateWiring(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("wiring validation failed: %w", err)
	}

	return c, nil
}

// logWiringMode logs the current wiring mode configuration.
func (c *Container) logWiringMode() {
	mode := c.Config.App.Mode
	if mode == "" {
		mode = config.AppModeReal
	}

	if c.Config.App.IsMockMode() {
		c.Logger.Warn("container starting in MOCK mode",
			slog.String("mode", string(mode)),
			slog.Bool("is_development", c.Config.IsDevelopment()),
		)
		return
	}
	c.Logger.Info("container starting in REAL mode",
		slog.String("mode", string(mode)),
		slog.Bool("is_production", c.Config.IsProduction()),
	)
}

// setupMetrics creates a dedicated registry with the runtime collectors.
func (c *Container) setupMetrics() {
	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = metrics.NewAppMetrics(c.Registry)
}

// setupMockInfrastructure wires in-memory storage. Nothing is cached and the
// rate limiter counts in process.
func (c *Container) setupMockInfrastructure() {
	c.UserRepo = memory.NewUserRepository()
	c.ImageRepo = memory.NewImageRepository()
	c.PreferenceRepo = memory.NewPreferenceRepository()
	if c.Config.RateLimit.Enabled {
		c.RateLimitStore = middleware.NewMemoryRateLimitStore()
	}
}

// setupInfrastructure connects to MongoDB and Redis and builds the stores on top of them.
func (c *Container) setupInfrastructure() error {
	ctx, cancel := context.WithTimeout(context.Background(), containerInitTimeout)
	defer cancel()

	if err := c.setupMongoDB(ctx); err != nil {
		return fmt.Errorf("mongodb: %w", err)
	}
	if err := c.setupRedis(ctx); err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	db := c.MongoDB.Database(c.MongoDBName)
	c.UserRepo = mongodb.NewMongoUserRepository(
		db.Collection(mongodbinfra.CollectionUsers),
		mongodb.WithUserRepoLogger(c.Logger),
	)
	c.ImageRepo = mongodb.NewMongoImageRepository(
		db.Collection(mongodbinfra.CollectionImages),
		mongodb.WithImageRepoLogger(c.Logger),
	)
	c.PreferenceRepo = mongodb.NewMongoPreferenceRepository(db.Collection(mongodbinfra.CollectionPreferences))

	if c.Config.Preferences.CacheEnabled {
		c.PreferenceCache = cache.NewPreferenceCache(cache.PreferenceCacheConfig{
			Client: c.Redis,
			TTL:    c.Config.Preferences.CacheTTL,
		})
	}
	if c.Config.RateLimit.Enabled {
		c.RateLimitStore = middleware.NewRedisRateLimitStore(c.Redis, "")
	}

	return nil
}

// setupMongoDB initializes the MongoDB client and creates the indexes.
func (c *Container) setupMongoDB(ctx context.Context) error {
	clientOpts := options.Client().
		ApplyURI(c.Config.MongoDB.URI).
		SetMaxPoolSize(c.Config.MongoDB.MaxPoolSize)

	client, connectErr := mongo.Connect(clientOpts)
	if connectErr != nil {
		return fmt.Errorf("failed to connect: %w", connectErr)
	}
	c.MongoDB = client
	c.MongoDBName = c.Config.MongoDB.Database

	pingCtx, cancel := context.WithTimeout(ctx, c.Config.MongoDB.Timeout)
	defer cancel()

	if pingErr := client.Ping(pingCtx, nil); pingErr != nil {
		return fmt.Errorf("failed to ping: %w", pingErr)
	}

	c.Logger.InfoContext(ctx, "connected to MongoDB",
		slog.String("database", c.MongoDBName),
	)

	indexCtx, indexCancel := context.WithTimeout(ctx, c.Config.MongoDB.Timeout)
	defer indexCancel()

	if indexErr := mongodbinfra.CreateAllIndexes(indexCtx, client.Database(c.MongoDBName)); indexErr != nil {
		return fmt.Errorf("failed to create indexes: %w", indexErr)
	}

	c.Logger.InfoContext(ctx, "MongoDB indexes created successfully")
	return nil
}

// setupRedis initializes the Redis client.
func (c *Container) setupRedis(ctx context.Context) error {
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Addr,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
		PoolSize: c.Config.Redis.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if pingErr := c.Redis.Ping(pingCtx).Err(); pingErr != nil {
		return fmt.Errorf("failed to ping: %w", pingErr)
	}

	c.Logger.InfoContext(ctx, "connected to Redis",
		slog.String("addr", c.Config.Redis.Addr),
	)
	return nil
}

// setupServices builds the use cases and the service facades over them.
func (c *Container) setupServices() {
	special := userapp.NewSpecialUsersQuery(c.Config.Users.Undeletable)

	c.UserService = service.NewUserService(service.UserServiceConfig{
		ListUC:   userapp.NewListUsersUseCase(c.UserRepo),
		GetUC:    userapp.NewGetUserUseCase(c.UserRepo),
		CreateUC: userapp.NewCreateUserUseCase(c.UserRepo),
		DeleteUC: userapp.NewDeleteUserUseCase(c.UserRepo, special,
			userapp.WithDeleteRecorder(c.Metrics),
			userapp.WithDeleteLogger(c.Logger),
		),
		Special: special,
	})

	c.ImageService = service.NewImageService(service.ImageServiceConfig{
		ListUC:   imageapp.NewListImagesUseCase(c.ImageRepo),
		GetUC:    imageapp.NewGetImageUseCase(c.ImageRepo),
		DeleteUC: imageapp.NewDeleteImageUseCase(c.ImageRepo),
	})

	prefOpts := []prefapp.ServiceOption{prefapp.WithLogger(c.Logger)}
	if c.PreferenceCache != nil {
		prefOpts = append(prefOpts, prefapp.WithCache(c.PreferenceCache))
	}
	c.PreferenceService = prefapp.NewService(c.PreferenceRepo, prefOpts...)
}

// setupHTTPHandlers creates the HTTP handlers.
func (c *Container) setupHTTPHandlers() {
	c.UserHandler = httphandler.NewUserHandler(c.UserService)
	c.InfoHandler = httphandler.NewInfoHandler(c.UserService)
	c.ImageHandler = httphandler.NewImageHandler(c.ImageService)
	c.PreferenceHandler = httphandler.NewPreferenceHandler(c.PreferenceService)
}

// setupHealthChecks registers a ping per connected backend. Mock mode has
// no backends and is always ready.
func (c *Container) setupHealthChecks() {
	c.Health = httpserver.NewChecks(healthCheckTimeout)

	if mongoClient := c.MongoDB; mongoClient != nil {
		c.Health.Add("mongodb", func(ctx context.Context) error {
			return mongoClient.Ping(ctx, nil)
		})
	}
	if redisClient := c.Redis; redisClient != nil {
		c.Health.Add("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
}

// validateWiring ensures all required dependencies are initialized.
func (c *Container) validateWiring() error {
	var errs []error

	if c.Config.App.IsRealMode() {
		if c.MongoDB == nil {
			errs = append(errs, errors.New("mongodb client not initialized"))
		}
		if c.Redis == nil {
			errs = append(errs, errors.New("redis client not initialized"))
		}
	}
	if c.UserRepo == nil || c.ImageRepo == nil || c.PreferenceRepo == nil {
		errs = append(errs, errors.New("repositories not initialized"))
	}
	if c.UserHandler == nil || c.InfoHandler == nil || c.ImageHandler == nil || c.PreferenceHandler == nil {
		errs = append(errs, errors.New("http handlers not initialized"))
	}

	return errors.Join(errs...)
}

// Close gracefully closes all container resources.
// Resources are closed in reverse order of initialization.
func (c *Container) Close() error {
	c.Logger.Info("closing container resources...")

	var errs []error

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		} else {
			c.Logger.Debug("redis connection closed")
		}
	}

	if c.MongoDB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), mongoDisconnectTimeout)
		defer cancel()

		if err := c.MongoDB.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mongodb disconnect: %w", err))
		} else {
			c.Logger.Debug("mongodb connection closed")
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	c.Logger.Info("all container resources closed")
	return nil
}
