package user

import "errors"

var (
	// ErrUsernameAlreadyExists is returned when creating a user with a taken username
	ErrUsernameAlreadyExists = errors.New("username already exists")

	// ErrUserNotFound is returned when the user does not exist
	ErrUserNotFound = errors.New("user not found")

	// ErrUndeletableUser is returned when deleting one of the undeletable users
	ErrUndeletableUser = errors.New("user can not be deleted")
)
