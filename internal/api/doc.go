// Package api provides the HTTP API serving sensor data to the federation.
//
// It exposes aggregated reading series, the current reading, service
// status, and a liveness ping. Every route is authenticated with the
// federation's shared access key and participates in trace-header
// propagation.
//
// The server follows the same lifecycle pattern as the other
// infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api
