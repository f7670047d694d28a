package middleware_test

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/imghost/internal/middleware"
)

type observed struct {
	method, route string
	status        int
}

type recordingObserver struct {
	mu   sync.Mutex
	seen []observed
}

func (o *recordingObserver) ObserveRequest(method, route string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, observed{method, route, status})
}

func TestMetrics_RouteTemplate(t *testing.T) {
	obs := &recordingObserver{}
	e := echo.New()
	e.Use(middleware.Metrics(obs))
	e.DELETE("/api/v1/users/:id", func(c echo.Context) error { return c.NoContent(http.StatusForbidden) })
	e.GET("/api/v1/images/:id", func(echo.Context) error { return echo.ErrNotFound })

	rec := doRequest(e, http.MethodDelete, "/api/v1/users/42")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	doRequest(e, http.MethodGet, "/api/v1/images/7")

	require.Len(t, obs.seen, 2)
	assert.Equal(t, observed{http.MethodDelete, "/api/v1/users/:id", http.StatusForbidden}, obs.seen[0])
	assert.Equal(t, observed{http.MethodGet, "/api/v1/images/:id", http.StatusNotFound}, obs.seen[1])
}
