// Package httpserver provides HTTP server infrastructure components.
package httpserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// Health statuses.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusReady     = "ready"
	StatusNotReady  = "not_ready"
)

// DefaultCheckTimeout bounds a single component check.
const DefaultCheckTimeout = 2 * time.Second

// ComponentStatus represents the health status of a single component.
type ComponentStatus struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthResponse represents the response for health endpoints.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components []ComponentStatus `json:"components,omitempty"`
}

// HealthChecker reports the health of the infrastructure the service depends on.
type HealthChecker interface {
	IsReady(ctx context.Context) bool
	GetHealthStatus(ctx context.Context) []ComponentStatus
}

// CheckFunc checks one component. A nil error means healthy.
type CheckFunc func(ctx context.Context) error

// Checks is a HealthChecker running named component checks concurrently.
type Checks struct {
	names   []string
	checks  map[string]CheckFunc
	timeout time.Duration
}

// NewChecks creates an empty set of checks.
func NewChecks(timeout time.Duration) *Checks {
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}
	return &Checks{checks: make(map[string]CheckFunc), timeout: timeout}
}

// Add registers a check. Components are reported in registration order.
func (c *Checks) Add(name string, check CheckFunc) *Checks {
	if _, ok := c.checks[name]; !ok {
		c.names = append(c.names, name)
	}
	c.checks[name] = check
	return c
}

// GetHealthStatus runs all checks.
func (c *Checks) GetHealthStatus(ctx context.Context) []ComponentStatus {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	statuses := make([]ComponentStatus, len(c.names))
	var wg sync.WaitGroup
	for i, name := range c.names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			statuses[i] = ComponentStatus{Name: name, Status: StatusHealthy}
			if err := c.checks[name](ctx); err != nil {
				statuses[i].Status = StatusUnhealthy
				statuses[i].Message = err.Error()
			}
		}()
	}
	wg.Wait()

	return statuses
}

// IsReady reports whether every check passes.
func (c *Checks) IsReady(ctx context.Context) bool {
	for _, s := range c.GetHealthStatus(ctx) {
		if s.Status != StatusHealthy {
			return false
		}
	}
	return true
}

// HealthEndpoints serves the health endpoints:
//   - GET /health always answers 200 while the process runs
//   - GET /ready answers 503 when a component is unhealthy
//   - GET /health/details lists every component
type HealthEndpoints struct {
	checker HealthChecker
}

// NewHealthEndpoints creates a new HealthEndpoints instance. A nil checker is always ready.
func NewHealthEndpoints(checker HealthChecker) *HealthEndpoints {
	return &HealthEndpoints{checker: checker}
}

// Register registers all health endpoints on the Echo instance.
func (h *HealthEndpoints) Register(e *echo.Echo) {
	e.GET("/health", h.handleHealth)
	e.GET("/ready", h.handleReady)
	e.GET("/health/details", h.handleHealthDetails)
}

func (h *HealthEndpoints) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: StatusHealthy})
}

func (h *HealthEndpoints) handleReady(c echo.Context) error {
	components := h.components(c.Request().Context())
	if !allHealthy(components) {
		return c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: StatusNotReady, Components: components})
	}
	return c.JSON(http.StatusOK, HealthResponse{Status: StatusReady, Components: components})
}

func (h *HealthEndpoints) handleHealthDetails(c echo.Context) error {
	components := h.components(c.Request().Context())
	if !allHealthy(components) {
		return c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: StatusUnhealthy, Components: components})
	}
	return c.JSON(http.StatusOK, HealthResponse{Status: StatusHealthy, Components: components})
}

func (h *HealthEndpoints) components(ctx context.Context) []ComponentStatus {
	if h.checker == nil {
		return nil
	}
	return h.checker.GetHealthStatus(ctx)
}

func allHealthy(components []ComponentStatus) bool {
	for _, comp := range components {
		if comp.Status != StatusHealthy {
			return false
		}
	}
	return true
}

// RegisterHealthEndpoints registers the health endpoints backed by checker.
func (r *Router) RegisterHealthEndpoints(checker HealthChecker) {
	NewHealthEndpoints(checker).Register(r.echo)
}
