package models

import (
	"errors"
	"fmt"
)

// Errors returned by room operations. These are user-facing outcomes and are
// never retried automatically.
var (
	// ErrRoomNotFound means the room vanished before the operation completed
	ErrRoomNotFound = errors.New("room not found")

	// ErrAccessDenied means the supplied passkey did not match the room's
	ErrAccessDenied = errors.New("access denied")

	// ErrPermissionDenied means a non-owner attempted an owner-only operation
	ErrPermissionDenied = errors.New("permission denied")
)

// ValidationError describes input rejected before any store call is made;
// no partial state is ever written for a validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is a validation failure
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
