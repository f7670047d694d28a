package httphandler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	userapp "github.com/lllypuk/imghost/internal/application/user"
	"github.com/lllypuk/imghost/internal/domain/user"
	"github.com/lllypuk/imghost/internal/domain/uuid"
	"github.com/lllypuk/imghost/internal/infrastructure/httpserver"
)

// CreateUserRequest represents the request to create a user.
type CreateUserRequest struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	Roles     []string `json:"roles"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// UserListResponse is one page of users.
type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Total int            `json:"total"`
	Count int            `json:"count"`
	Page  int            `json:"page"`
}

// UserService defines the interface for user operations.
// Declared on the consumer side per project guidelines.
type UserService interface {
	ListUsers(ctx context.Context, query userapp.ListUsersQuery) (userapp.UsersListResult, error)
	GetUser(ctx context.Context, query userapp.GetUserQuery) (*user.User, error)
	CreateUser(ctx context.Context, cmd userapp.CreateUserCommand) (*user.User, error)
	DeleteUser(ctx context.Context, cmd userapp.DeleteUserCommand) error
}

// UserHandler handles user-related HTTP requests.
type UserHandler struct {
	userService UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// RegisterRoutes registers user routes with the API group.
func (h *UserHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/users", h.List)
	g.POST("/users", h.Create)
	g.GET("/users/:id", h.Get)
	g.DELETE("/users/:id", h.Delete)
}

// List handles GET /api/v1/users?count=&page=.
// A page past the end comes back with no users and the real total.
func (h *UserHandler) List(c echo.Context) error {
	count, page, err := parsePagination(c)
	if err != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_PAGINATION", err.Error())
	}

	result, err := h.userService.ListUsers(c.Request().Context(), userapp.ListUsersQuery{
		Count: count,
		Page:  page,
	})
	if err != nil {
		return handleUserError(c, err)
	}

	users := make([]UserResponse, 0, len(result.Users))
	for _, u := range result.Users {
		users = append(users, ToUserResponse(u))
	}

	return httpserver.RespondOK(c, UserListResponse{
		Users: users,
		Total: result.Total,
		Count: result.Count,
		Page:  result.Page,
	})
}

// Create handles POST /api/v1/users.
func (h *UserHandler) Create(c echo.Context) error {
	var req CreateUserRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}

	created, err := h.userService.CreateUser(c.Request().Context(), userapp.CreateUserCommand{
		Username: req.Username,
		Roles:    req.Roles,
	})
	if err != nil {
		return handleUserError(c, err)
	}

	return httpserver.RespondCreated(c, ToUserResponse(created))
}

// Get handles GET /api/v1/users/:id.
func (h *UserHandler) Get(c echo.Context) error {
	userID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_USER_ID", "invalid user ID format")
	}

	u, err := h.userService.GetUser(c.Request().Context(), userapp.GetUserQuery{UserID: userID})
	if err != nil {
		return handleUserError(c, err)
	}

	return httpserver.RespondOK(c, ToUserResponse(u))
}

// Delete handles DELETE /api/v1/users/:id.
// Undeletable users are refused with 403.
func (h *UserHandler) Delete(c echo.Context) error {
	userID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_USER_ID", "invalid user ID format")
	}

	if err := h.userService.DeleteUser(c.Request().Context(), userapp.DeleteUserCommand{UserID: userID}); err != nil {
		return handleUserError(c, err)
	}

	return httpserver.RespondNoContent(c)
}

func handleUserError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, userapp.ErrUserNotFound):
		return httpserver.RespondErrorWithCode(c, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
	case errors.Is(err, userapp.ErrUsernameAlreadyExists):
		return httpserver.RespondErrorWithCode(
			c, http.StatusConflict, "USERNAME_EXISTS", "username is already in use")
	case errors.Is(err, userapp.ErrUndeletableUser):
		return httpserver.RespondErrorWithCode(
			c, http.StatusForbidden, "USER_UNDELETABLE", "user can not be deleted")
	case isValidationError(err):
		return respondValidationError(c, err)
	default:
		return httpserver.RespondError(c, err)
	}
}

// ToUserResponse converts a domain User to UserResponse.
func ToUserResponse(u *user.User) UserResponse {
	roles := make([]string, 0, len(u.Roles()))
	for _, r := range u.Roles() {
		roles = append(roles, string(r))
	}

	return UserResponse{
		ID:        u.ID().String(),
		Username:  u.Username(),
		Roles:     roles,
		CreatedAt: u.CreatedAt().Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt().Format(time.RFC3339),
	}
}
