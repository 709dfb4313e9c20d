package event

import "errors"

// Sentinel errors for event construction.
var (
	// ErrInvalidIdentifier is returned when a name is not a bare identifier.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrInvalidCount is returned when a named event is given a count below one.
	ErrInvalidCount = errors.New("invalid event count")

	// ErrInvalidWeights is returned when a weight table cannot drive a source.
	ErrInvalidWeights = errors.New("invalid weights")
)
