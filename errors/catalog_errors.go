package errors

import "errors"

var (
	ErrRoleNotFound    = errors.New("role not found")
	ErrRoleConflict    = errors.New("role conflict")
	ErrInvalidRoleData = errors.New("invalid role data")

	ErrPermissionNotFound    = errors.New("permission not found")
	ErrInvalidPermissionData = errors.New("invalid permission data")

	// ErrDuplicateCapability rejects a second Permission with an already
	// registered capability code.
	ErrDuplicateCapability = errors.New("duplicate capability code")

	ErrGrantNotFound    = errors.New("grant not found")
	ErrInvalidGrantData = errors.New("invalid grant data")
)
