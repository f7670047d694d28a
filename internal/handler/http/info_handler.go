package httphandler

import (
	"context"

	"github.com/labstack/echo/v4"

	userapp "github.com/lllypuk/imghost/internal/application/user"
	"github.com/lllypuk/imghost/internal/infrastructure/httpserver"
)

// SpecialUsersResponse lists usernames with special handling.
type SpecialUsersResponse struct {
	UndeletableUsers []string `json:"undeletable_users"`
}

// SpecialUsersProvider returns the special users.
type SpecialUsersProvider interface {
	SpecialUsers(ctx context.Context) userapp.SpecialUsersResult
}

// InfoHandler serves read-only server information.
type InfoHandler struct {
	special SpecialUsersProvider
}

// NewInfoHandler creates a new InfoHandler.
func NewInfoHandler(special SpecialUsersProvider) *InfoHandler {
	return &InfoHandler{special: special}
}

// RegisterRoutes registers info routes with the API group.
func (h *InfoHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/info/special-users", h.SpecialUsers)
}

// SpecialUsers handles GET /api/v1/info/special-users.
func (h *InfoHandler) SpecialUsers(c echo.Context) error {
	result := h.special.SpecialUsers(c.Request().Context())

	users := result.UndeletableUsers
	if users == nil {
		users = []string{}
	}
	return httpserver.RespondOK(c, SpecialUsersResponse{UndeletableUsers: users})
}
