package caller

import (
	"errors"
	"fmt"
	"net"
	"syscall"
)

// Domain-specific errors for outbound calls.
// Use errors.Is() / errors.As() to check for these in calling code.
var (
	// ErrRefused is returned on the no-retry path when the destination is
	// not listening. With retries enabled the caller never sees it; the
	// call is re-attempted instead.
	ErrRefused = errors.New("caller: connection refused")

	// ErrMalformedBody is returned when a 2xx response body cannot be
	// decoded as the expected JSON shape.
	ErrMalformedBody = errors.New("caller: malformed response body")
)

// StatusError reports a non-2xx HTTP response. It is terminal: the remote
// side answered, so retrying would only repeat the same request.
type StatusError struct {
	StatusCode int
	URL        string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("caller: %s returned HTTP %d", e.URL, e.StatusCode)
}

// isConnectionRefused classifies an attempt failure by its underlying cause.
//
// Only a refused TCP connection qualifies: the port is closed because the
// peer process is down or restarting, which is exactly the transient state
// worth waiting out. Timeouts and DNS errors also unwrap to net errors but
// deliberately do not match.
func isConnectionRefused(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	// Some platforms surface the refusal only as an OpError "connect".
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return errors.Is(opErr.Err, syscall.ECONNREFUSED)
	}
	return false
}
