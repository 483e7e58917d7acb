package contract

import "errors"

var (
	// ErrNotFound marks an absent entity, cart line, or vendor. It is
	// always recoverable: callers accumulate it into partial-success
	// lists instead of failing the turn.
	ErrNotFound = errors.New("not found")

	// ErrLocationRequired is terminal for the turn: exploration was
	// requested without a resolvable location. Surfaced to the user as a
	// prompt, never as an error trace.
	ErrLocationRequired = errors.New("location is required")

	// ErrUnhandled means no registered workflow accepted the request.
	ErrUnhandled = errors.New("no workflow can handle request")

	ErrValidation      = errors.New("validation failed")
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
)
