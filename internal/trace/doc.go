// Package trace carries correlation identifiers across service boundaries.
//
// Every process holds one fixed instance ID; every inbound request is
// assigned (or inherits) a call ID. Both travel as HTTP headers on each
// outbound call, so one user action can be followed through the whole
// federation's logs.
//
// The Trace is threaded explicitly via context.Context; there is no
// ambient or global trace state.
package trace
