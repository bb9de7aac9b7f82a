package domain

import "errors"

var (
	// ErrDuplicateHandler is returned when a handler id is registered twice.
	ErrDuplicateHandler = errors.New("duplicate handler id")
	// ErrUnknownAction is returned when a handler table references a missing action.
	ErrUnknownAction = errors.New("unknown action")
	// ErrContactNotFound is returned when no contact matches a name.
	ErrContactNotFound = errors.New("contact not found")
	// ErrUnsupportedPlatform is returned by executors for operations the host OS lacks.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	// ErrNotConfigured is returned by collaborators that need setup first.
	ErrNotConfigured = errors.New("not configured")
)
