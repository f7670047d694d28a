// Package main provides the API server entry point.
package main

import (
	"github.com/labstack/echo/v4"

	"github.com/lllypuk/imghost/internal/infrastructure/httpserver"
	"github.com/lllypuk/imghost/internal/middleware"
)

// SetupRoutes installs the middleware chain, the API routes and the
// operational endpoints on e.
func SetupRoutes(e *echo.Echo, c *Container) *httpserver.Router {
	routerConfig := httpserver.RouterConfig{
		Logger:          c.Logger,
		MetricsObserver: c.Metrics,
		CORSConfig:      middleware.DefaultCORSConfig(),
		LoggingConfig: middleware.LoggingConfig{
			Logger:    c.Logger,
			SkipPaths: middleware.DefaultLoggingConfig().SkipPaths,
		},
		RecoveryConfig: middleware.RecoveryConfig{
			Logger:    c.Logger,
			StackSize: middleware.DefaultRecoveryConfig().StackSize,
		},
		APIPrefix: httpserver.DefaultAPIPrefix,
	}

	if c.RateLimitStore != nil {
		routerConfig.RateLimitMiddleware = middleware.RateLimit(middleware.RateLimitConfig{
			Logger:  c.Logger,
			Store:   c.RateLimitStore,
			Limit:   c.Config.RateLimit.Limit,
			Window:  c.Config.RateLimit.Window,
			KeyFunc: middleware.KeyByIP,
		})
	}

	router := httpserver.NewRouter(e, routerConfig)

	router.RegisterHealthEndpoints(c.Health)
	router.RegisterMetricsEndpoint(c.Registry)
	router.RegisterAll(
		c.UserHandler,
		c.InfoHandler,
		c.ImageHandler,
		c.PreferenceHandler,
	)

	return router
}
