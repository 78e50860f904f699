// Package caller is the retry-aware outbound HTTP client used for
// service-to-service and third-party calls.
//
// The retry policy is deliberately narrow. In an unattended home
// deployment the dominant transient failure is a peer that is restarting
// and not yet listening, which surfaces as connection refused. Those calls
// wait a fixed delay and try again, forever. Every other failure — request
// timeout, DNS error, non-2xx status, undecodable body — is handed straight
// back to the caller as a terminal error, because repeating the request
// would not change the outcome and might duplicate side effects.
//
// All calls carry the federation's shared access key plus two trace
// headers (process instance ID and per-request call ID) so a chain of
// calls can be followed across services.
package caller
