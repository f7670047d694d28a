package user

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/lllypuk/imghost/internal/domain/errs"
	"github.com/lllypuk/imghost/internal/domain/uuid"
)

// Role names a permission group a user belongs to.
type Role string

// Known roles.
const (
	RoleUser   Role = "user"
	RoleAdmin  Role = "admin"
	RoleGuest  Role = "guest"
	RoleSystem Role = "system"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 32
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// User is an account of the image host.
type User struct {
	id        uuid.UUID
	username  string
	roles     []Role
	createdAt time.Time
	updatedAt time.Time
}

// NewUser creates a user with a fresh id. The username is lower-cased before validation.
func NewUser(username string, roles []Role) (*User, error) {
	name, err := NormalizeUsername(username)
	if err != nil {
		return nil, err
	}
	if err = validateRoles(roles); err != nil {
		return nil, err
	}

	now := time.Now()
	return &User{
		id:        uuid.NewUUID(),
		username:  name,
		roles:     slices.Clone(roles),
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct restores a user from storage without validation.
func Reconstruct(id uuid.UUID, username string, roles []Role, createdAt, updatedAt time.Time) *User {
	return &User{
		id:        id,
		username:  username,
		roles:     slices.Clone(roles),
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// NormalizeUsername lower-cases and validates a username.
func NormalizeUsername(username string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(username))
	if len(name) < minUsernameLen || len(name) > maxUsernameLen {
		return "", fmt.Errorf("%w: username must be %d-%d characters", errs.ErrInvalidInput, minUsernameLen, maxUsernameLen)
	}
	if !usernamePattern.MatchString(name) {
		return "", fmt.Errorf("%w: username may only contain a-z, 0-9, _ and -", errs.ErrInvalidInput)
	}
	return name, nil
}

// ParseRole converts a raw role name.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleUser, RoleAdmin, RoleGuest, RoleSystem:
		return r, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", errs.ErrInvalidInput, s)
	}
}

func validateRoles(roles []Role) error {
	for _, r := range roles {
		if _, err := ParseRole(string(r)); err != nil {
			return err
		}
	}
	return nil
}

// ID returns the user id
func (u *User) ID() uuid.UUID {
	return u.id
}

// Username returns the login name
func (u *User) Username() string {
	return u.username
}

// Roles returns a copy of the user's roles
func (u *User) Roles() []Role {
	return slices.Clone(u.roles)
}

// CreatedAt returns creation time
func (u *User) CreatedAt() time.Time {
	return u.createdAt
}

// UpdatedAt returns time of the last update
func (u *User) UpdatedAt() time.Time {
	return u.updatedAt
}

// HasRole reports whether the user holds r.
func (u *User) HasRole(r Role) bool {
	return slices.Contains(u.roles, r)
}

// SetRoles replaces the user's roles.
func (u *User) SetRoles(roles []Role) error {
	if err := validateRoles(roles); err != nil {
		return err
	}
	u.roles = slices.Clone(roles)
	u.updatedAt = time.Now()
	return nil
}
