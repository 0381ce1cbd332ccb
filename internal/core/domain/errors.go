package domain

import "errors"

var (
	// ErrInvalidCoordinate is returned for NaN, infinite or out-of-range input.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrEmptySequence is returned when a point search receives no points.
	ErrEmptySequence = errors.New("empty point sequence")
	// ErrNotFound is returned for unknown routes or landmarks.
	ErrNotFound = errors.New("not found")
)

// ErrMissingEndpoint is returned when a plan request names neither a
// coordinate nor a place for its start or end.
var ErrMissingEndpoint = errors.New("start and end are required")
