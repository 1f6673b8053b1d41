package apperr

import "errors"

// Error kinds.
var (
	// ErrValidation marks malformed input, e.g. a blank required field.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicate marks a unique-constraint violation (serial number, email, department code).
	ErrDuplicate = errors.New("duplicate")

	// ErrNotFound marks a reference to an id that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState marks an operation that is illegal for the current status.
	ErrInvalidState = errors.New("invalid state")

	// ErrConflict marks a device that is concurrently allocated or not available.
	ErrConflict = errors.New("conflict")
)

// Kind names returned by Kind.
const (
	KindValidation   = "validation"
	KindDuplicate    = "duplicate"
	KindNotFound     = "not_found"
	KindInvalidState = "invalid_state"
	KindConflict     = "conflict"
)

// Kind returns the kind name of err, or "" if err carries none of the kinds.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrDuplicate):
		return KindDuplicate
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	case errors.Is(err, ErrConflict):
		return KindConflict
	default:
		return ""
	}
}
