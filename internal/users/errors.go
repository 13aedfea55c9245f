package users

import "errors"

var (
	// ErrMissingUserID is returned when an identity record has no identifier.
	ErrMissingUserID = errors.New("users: user id is required")

	// ErrUserNotFound is returned when no directory record exists for an id.
	ErrUserNotFound = errors.New("users: user not found")
)
