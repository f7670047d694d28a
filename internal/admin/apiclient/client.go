// Package apiclient talks to the imghost HTTP API on behalf of the admin console.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lllypuk/imghost/internal/admin/userlist"
)

const (
	defaultHTTPTimeout = 15 * time.Second
	maxErrorBodySize   = 4 << 10
	maxResponseSize    = 1 << 20
	apiPrefix          = "/api/v1"
)

// ErrUnexpectedResponse is returned when a response can not be decoded.
var ErrUnexpectedResponse = errors.New("unexpected response from API")

// APIError is a non-successful API response.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api request failed with status %d", e.Status)
	}
	return fmt.Sprintf("api request failed with status %d: %s: %s", e.Status, e.Code, e.Message)
}

// Config contains configuration for Client.
type Config struct {
	// BaseURL is the server address, without the API prefix.
	BaseURL string

	// Timeout bounds every request. Ignored when HTTPClient is set.
	Timeout time.Duration

	// HTTPClient is an optional custom HTTP client.
	HTTPClient *http.Client
}

// Client implements userlist.Gateway and userlist.SpecialUsersSource over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var (
	_ userlist.Gateway            = (*Client)(nil)
	_ userlist.SpecialUsersSource = (*Client)(nil)
)

// New creates a new API client.
func New(config Config) *Client {
	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(config.BaseURL, "/") + apiPrefix,
		httpClient: httpClient,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type userDTO struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type userListDTO struct {
	Users []userDTO `json:"users"`
	Total int       `json:"total"`
}

type specialUsersDTO struct {
	UndeletableUsers []string `json:"undeletable_users"`
}

// GetUsers fetches one page of users.
func (c *Client) GetUsers(ctx context.Context, pageSize, pageIndex int) (userlist.Page, error) {
	query := url.Values{}
	query.Set("count", strconv.Itoa(pageSize))
	query.Set("page", strconv.Itoa(pageIndex))

	var list userListDTO
	if err := c.do(ctx, http.MethodGet, "/users?"+query.Encode(), &list); err != nil {
		return userlist.Page{}, fmt.Errorf("failed to get users: %w", err)
	}

	users := make([]userlist.User, 0, len(list.Users))
	for _, u := range list.Users {
		users = append(users, userlist.User{
			ID:        u.ID,
			Username:  u.Username,
			Roles:     u.Roles,
			CreatedAt: u.CreatedAt,
			UpdatedAt: u.UpdatedAt,
		})
	}
	return userlist.Page{Users: users, Total: list.Total}, nil
}

// DeleteUser deletes the user with the given id.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// GetSpecialUsers fetches the usernames the server refuses to delete.
func (c *Client) GetSpecialUsers(ctx context.Context) (userlist.SpecialUsers, error) {
	var special specialUsersDTO
	if err := c.do(ctx, http.MethodGet, "/info/special-users", &special); err != nil {
		return userlist.SpecialUsers{}, fmt.Errorf("failed to get special users: %w", err)
	}
	return userlist.SpecialUsers{UndeletableUsers: special.UndeletableUsers}, nil
}

// do performs the request and decodes the envelope data into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	failed := resp.StatusCode < 200 || resp.StatusCode >= 300
	limit := int64(maxResponseSize)
	if failed {
		limit = maxErrorBodySize
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if decodeErr := json.Unmarshal(body, &env); decodeErr != nil {
		if failed {
			return &APIError{Status: resp.StatusCode, Message: string(body)}
		}
		return fmt.Errorf("%w: %w", ErrUnexpectedResponse, decodeErr)
	}

	if failed || !env.Success {
		apiErr := &APIError{Status: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if decodeErr := json.Unmarshal(env.Data, out); decodeErr != nil {
		return fmt.Errorf("%w: %w", ErrUnexpectedResponse, decodeErr)
	}
	return nil
}
