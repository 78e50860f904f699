package trace

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Header names used to carry correlation identifiers between services.
const (
	// HeaderInstance identifies the calling process instance. It is fixed
	// for the lifetime of a process.
	HeaderInstance = "Instance-Trace-ID"

	// HeaderCall identifies one logical request as it crosses services.
	// It is propagated from the inbound request, or freshly generated at
	// the edge of the federation.
	HeaderCall = "Call-Trace-ID"
)

// Trace is an immutable correlation context for one unit of work.
//
// Instance is set once at process startup; Call is created (or propagated)
// per inbound request and threaded explicitly through every downstream call.
type Trace struct {
	Instance string
	Call     string
}

// contextKey is a private type for context keys to avoid collisions.
type contextKey struct{}

// NewInstanceID returns a fresh process-instance identifier.
func NewInstanceID() string {
	return uuid.NewString()
}

// NewCallID returns a fresh per-request call identifier.
func NewCallID() string {
	return uuid.NewString()
}

// FromRequest builds a Trace for an inbound HTTP request.
//
// The call ID is taken from the request's Call-Trace-ID header when present,
// so a chain of services shares one call ID end to end; otherwise a new one
// is generated. The instance ID always belongs to this process, never the
// caller's.
func FromRequest(r *http.Request, instanceID string) Trace {
	call := r.Header.Get(HeaderCall)
	if call == "" {
		call = NewCallID()
	}
	return Trace{
		Instance: instanceID,
		Call:     call,
	}
}

// NewContext returns a copy of ctx carrying t.
func NewContext(ctx context.Context, t Trace) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// FromContext extracts the Trace from ctx.
//
// Returns:
//   - Trace: The stored trace, or the zero Trace
//   - bool: Whether a trace was present
func FromContext(ctx context.Context) (Trace, bool) {
	t, ok := ctx.Value(contextKey{}).(Trace)
	return t, ok
}

// SetHeaders writes the trace identifiers onto an outbound request.
func (t Trace) SetHeaders(h http.Header) {
	if t.Instance != "" {
		h.Set(HeaderInstance, t.Instance)
	}
	if t.Call != "" {
		h.Set(HeaderCall, t.Call)
	}
}
