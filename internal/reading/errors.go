package reading

import "errors"

// Domain-specific errors for reading persistence.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotRecorded is returned when an insert affects zero rows.
	// The write "succeeded" at the protocol level but stored nothing,
	// which the persister treats the same as a failed write.
	ErrNotRecorded = errors.New("reading: insert affected no rows")

	// ErrNoReadings is returned by Latest when no reading exists inside
	// the freshness window.
	ErrNoReadings = errors.New("reading: no recent readings")
)
