package errors

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserConflict    = errors.New("user conflict")
	ErrInvalidUserData = errors.New("invalid user data")

	// ErrUserNotBound is a normal state, not a failure: a user without an
	// organizational binding resolves with role grants only.
	ErrUserNotBound = errors.New("user has no organizational binding")
)
