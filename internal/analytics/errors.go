package analytics

import "errors"

// Validation errors surfaced to tool callers before any backend call is made.
// These are never retried.
var (
	// ErrInvalidProperty indicates a property reference that is not a
	// positive integer, numeric string, or "properties/<digits>" string.
	ErrInvalidProperty = errors.New("invalid property reference")

	// ErrInvalidFilter indicates a malformed filter expression shape.
	ErrInvalidFilter = errors.New("invalid filter expression")

	// ErrInvalidFunnel indicates a malformed funnel configuration.
	ErrInvalidFunnel = errors.New("invalid funnel configuration")
)
