package httphandler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lllypuk/imghost/internal/domain/errs"
	"github.com/lllypuk/imghost/internal/domain/preference"
	"github.com/lllypuk/imghost/internal/infrastructure/httpserver"
)

// SetPreferenceRequest carries the new raw value of a preference.
type SetPreferenceRequest struct {
	Value *string `json:"value"`
}

// PreferenceResponse represents a preference in API responses.
type PreferenceResponse struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// PreferenceService reads and writes system preferences.
type PreferenceService interface {
	GetAll(ctx context.Context) ([]preference.Preference, error)
	Get(ctx context.Context, key string) (preference.Preference, error)
	Set(ctx context.Context, key, raw string) (preference.Preference, error)
}

// PreferenceHandler handles system preference requests.
type PreferenceHandler struct {
	service PreferenceService
}

// NewPreferenceHandler creates a new PreferenceHandler.
func NewPreferenceHandler(service PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{service: service}
}

// RegisterRoutes registers preference routes with the API group.
func (h *PreferenceHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/preferences", h.List)
	g.GET("/preferences/:key", h.Get)
	g.PUT("/preferences/:key", h.Set)
}

// List handles GET /api/v1/preferences.
func (h *PreferenceHandler) List(c echo.Context) error {
	prefs, err := h.service.GetAll(c.Request().Context())
	if err != nil {
		return handlePreferenceError(c, err)
	}

	resp := make([]PreferenceResponse, 0, len(prefs))
	for _, p := range prefs {
		resp = append(resp, ToPreferenceResponse(p))
	}
	return httpserver.RespondOK(c, resp)
}

// Get handles GET /api/v1/preferences/:key.
func (h *PreferenceHandler) Get(c echo.Context) error {
	p, err := h.service.Get(c.Request().Context(), c.Param("key"))
	if err != nil {
		return handlePreferenceError(c, err)
	}
	return httpserver.RespondOK(c, ToPreferenceResponse(p))
}

// Set handles PUT /api/v1/preferences/:key.
func (h *PreferenceHandler) Set(c echo.Context) error {
	var req SetPreferenceRequest
	if bindErr := c.Bind(&req); bindErr != nil || req.Value == nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", "value is required")
	}

	p, err := h.service.Set(c.Request().Context(), c.Param("key"), *req.Value)
	if err != nil {
		return handlePreferenceError(c, err)
	}
	return httpserver.RespondOK(c, ToPreferenceResponse(p))
}

func handlePreferenceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return httpserver.RespondErrorWithCode(
			c, http.StatusNotFound, "PREFERENCE_NOT_FOUND", "unknown preference")
	case isValidationError(err):
		return respondValidationError(c, err)
	default:
		return httpserver.RespondError(c, err)
	}
}

// ToPreferenceResponse converts a Preference to PreferenceResponse.
func ToPreferenceResponse(p preference.Preference) PreferenceResponse {
	return PreferenceResponse{
		Key:   p.Key,
		Type:  string(p.Type),
		Value: p.Value,
	}
}
