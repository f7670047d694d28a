package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lllypuk/imghost/internal/middleware"
)

// DefaultAPIPrefix is the prefix of all API routes.
const DefaultAPIPrefix = "/api/v1"

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger *slog.Logger

	// RateLimitMiddleware is applied to API routes only when set.
	RateLimitMiddleware echo.MiddlewareFunc

	// MetricsObserver receives every handled request when set.
	MetricsObserver middleware.RequestObserver

	CORSConfig     middleware.CORSConfig
	LoggingConfig  middleware.LoggingConfig
	RecoveryConfig middleware.RecoveryConfig

	APIPrefix string
}

// DefaultRouterConfig returns a RouterConfig with sensible defaults.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		Logger:         slog.Default(),
		CORSConfig:     middleware.DefaultCORSConfig(),
		LoggingConfig:  middleware.DefaultLoggingConfig(),
		RecoveryConfig: middleware.DefaultRecoveryConfig(),
		APIPrefix:      DefaultAPIPrefix,
	}
}

// Router owns the global middleware chain and the API route group.
type Router struct {
	echo   *echo.Echo
	config RouterConfig
	logger *slog.Logger
	api    *echo.Group
}

// NewRouter creates a new router with the given configuration.
func NewRouter(e *echo.Echo, config RouterConfig) *Router {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.APIPrefix == "" {
		config.APIPrefix = DefaultAPIPrefix
	}

	r := &Router{
		echo:   e,
		config: config,
		logger: config.Logger,
	}

	// Recovery first so panics in any other middleware are caught
	e.Use(middleware.Recovery(config.RecoveryConfig))
	e.Use(middleware.Logging(config.LoggingConfig))
	if config.MetricsObserver != nil {
		e.Use(middleware.Metrics(config.MetricsObserver))
	}
	e.Use(middleware.CORS(config.CORSConfig))

	if config.RateLimitMiddleware != nil {
		r.api = e.Group(config.APIPrefix, config.RateLimitMiddleware)
	} else {
		r.api = e.Group(config.APIPrefix)
	}

	return r
}

// Echo returns the underlying Echo instance.
func (r *Router) Echo() *echo.Echo {
	return r.echo
}

// API returns the API route group.
func (r *Router) API() *echo.Group {
	return r.api
}

// RouteRegistrar defines the interface for registering routes.
type RouteRegistrar interface {
	RegisterRoutes(g *echo.Group)
}

// RegisterAll registers all route registrars on the API group.
func (r *Router) RegisterAll(registrars ...RouteRegistrar) {
	for _, registrar := range registrars {
		registrar.RegisterRoutes(r.api)
	}
}

// RegisterMetricsEndpoint serves the metrics of gatherer on /metrics.
func (r *Router) RegisterMetricsEndpoint(gatherer prometheus.Gatherer) {
	r.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

// PrintRoutes logs all registered routes at debug level.
func (r *Router) PrintRoutes() {
	for _, route := range r.echo.Routes() {
		r.logger.Debug("registered route",
			slog.String("method", route.Method),
			slog.String("path", route.Path),
		)
	}
}
