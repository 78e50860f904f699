package cache

import "errors"

// Domain-specific errors for cache operations.
var (
	// ErrDisabled is returned by Connect when the cache is disabled in config.
	ErrDisabled = errors.New("cache: disabled in configuration")

	// ErrConnectionFailed is returned when the initial connection fails.
	ErrConnectionFailed = errors.New("cache: connection failed")

	// ErrNoEntry is returned by Latest when no reading is cached.
	ErrNoEntry = errors.New("cache: no entry")
)
