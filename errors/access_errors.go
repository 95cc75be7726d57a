package errors

import "errors"

var (
	// ErrUnknownModule rejects a module name the registry does not know.
	// Resolution fails closed on it rather than guessing a code.
	ErrUnknownModule = errors.New("unknown module")

	ErrUnknownCapability = errors.New("unknown capability kind")

	ErrMenuNotFound    = errors.New("menu access list not found")
	ErrMenuConflict    = errors.New("menu access list conflict")
	ErrInvalidMenuData = errors.New("invalid menu access list data")

	ErrParameterNotFound = errors.New("override parameter not found")
)
