// Package userlist implements the administrative user list: a paginated view
// over the user directory with debounced page changes, rollback of the pager
// when a page comes back empty, and deletion with confirmation.
package userlist

import (
	"context"
	"errors"
	"slices"
	"time"
)

// Page sizes offered by the pager and the one used on activation.
var PageSizeOptions = []int{5, 10, 25, 100}

const (
	// StartingPageSize is the page size used by Activate.
	StartingPageSize = 25

	// DefaultDebounceWindow is the quiet period before a page change is fetched.
	DefaultDebounceWindow = 500 * time.Millisecond

	// RolesTruncate is how many roles a view shows per user.
	RolesTruncate = 5
)

// Routes used by the navigation helpers.
const (
	RouteAddUser  = "/settings/users/add"
	RouteEditUser = "/settings/users/edit/"
)

// User-facing messages.
const (
	MsgFetchFailed  = "Failed to fetch users"
	MsgDeleteFailed = "Failed to delete user"
	MsgDeleted      = "User deleted"
)

// Dialog button names.
const (
	ButtonDelete = "delete"
	ButtonCancel = "cancel"
)

// ErrInvalidPageSize is returned for a page size outside PageSizeOptions.
var ErrInvalidPageSize = errors.New("page size is not one of the offered options")

// User is a row of the list. It is never modified by the controller.
type User struct {
	ID        string
	Username  string
	Roles     []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Page is one page of users in server order plus the total count.
type Page struct {
	Users []User
	Total int
}

// SpecialUsers describes users with special handling on the server.
type SpecialUsers struct {
	UndeletableUsers []string
}

// PageEvent is emitted whenever the pager moves.
type PageEvent struct {
	PageSize          int
	PageIndex         int
	PreviousPageIndex int
}

// Gateway reads and deletes users in the directory.
type Gateway interface {
	GetUsers(ctx context.Context, pageSize, pageIndex int) (Page, error)
	DeleteUser(ctx context.Context, id string) error
}

// SpecialUsersSource provides the set of undeletable usernames.
type SpecialUsersSource interface {
	GetSpecialUsers(ctx context.Context) (SpecialUsers, error)
}

// ToastKind classifies a transient notification.
type ToastKind string

// Toast kinds.
const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// DialogButton is a choice offered by a confirmation dialog.
type DialogButton struct {
	Name  string
	Text  string
	Color string
}

// Dialog is a modal confirmation request.
type Dialog struct {
	Title       string
	Description string
	Buttons     []DialogButton
}

// Notifier shows dialogs and toasts to the operator.
type Notifier interface {
	// Confirm blocks until a button is chosen and returns its name.
	Confirm(ctx context.Context, dialog Dialog) (string, error)
	Toast(kind ToastKind, message string)
}

// Navigator moves the operator to another screen.
type Navigator interface {
	Navigate(route string)
}

// IsPageSizeOption reports whether size is offered by the pager.
func IsPageSizeOption(size int) bool {
	return slices.Contains(PageSizeOptions, size)
}
