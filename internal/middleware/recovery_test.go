package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/imghost/internal/middleware"
)

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(middleware.Recovery(middleware.RecoveryConfig{Logger: newJSONLogger(&buf)}))
	e.GET("/boom", func(echo.Context) error { panic("boom") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "INTERNAL_ERROR", body["error"].(map[string]any)["code"])

	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), "stack")
}

func TestRecovery_WithoutStack(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(middleware.Recovery(middleware.RecoveryConfig{Logger: newJSONLogger(&buf), DisablePrintStack: true}))
	e.GET("/boom", func(echo.Context) error { panic(assert.AnError) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), assert.AnError.Error())
	assert.NotContains(t, buf.String(), "\"stack\"")
}

func TestRecovery_PassThrough(t *testing.T) {
	e := echo.New()
	e.Use(middleware.Recovery(middleware.DefaultRecoveryConfig()))
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
