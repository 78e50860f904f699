package store

import "errors"

// Domain-specific errors for store operations.
var (
	// ErrInvalidConfig is returned when the connection URL cannot be parsed.
	ErrInvalidConfig = errors.New("store: invalid configuration")

	// ErrConnectionFailed is returned when the store is unreachable.
	ErrConnectionFailed = errors.New("store: connection failed")
)
