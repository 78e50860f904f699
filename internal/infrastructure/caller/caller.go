package caller

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nerrad567/hearth-core/internal/infrastructure/config"
	"github.com/nerrad567/hearth-core/internal/infrastructure/logging"
	"github.com/nerrad567/hearth-core/internal/trace"
)

// maxResponseSize bounds response bodies read into memory (10 MB).
const maxResponseSize = 10 << 20

// Client performs outbound HTTP calls to sibling services and third-party
// APIs with a retry policy tuned to one failure mode: the destination
// process is not yet listening.
//
// A call that fails with connection refused is logged, delayed, and
// re-attempted indefinitely — the deployment has no supervisor to escalate
// to, and a restarting peer will come back. Every other failure (timeout,
// DNS, non-2xx status, malformed body) is terminal and returned to the
// caller on the first attempt.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	http       *http.Client
	accessKey  string
	instanceID string
	timeout    time.Duration
	retryDelay time.Duration
	logger     *logging.Logger
}

// New creates a resilient caller.
//
// Parameters:
//   - cfg: Caller configuration (per-attempt timeout, retry delay, TLS mode)
//   - accessKey: Shared secret sent as Client-Access-Key on every call
//   - instanceID: Fixed process instance identifier for trace headers
//   - logger: Logger for retry and failure reporting
//
// Returns:
//   - *Client: Configured caller ready for use
func New(cfg config.CallerConfig, accessKey, instanceID string, logger *logging.Logger) *Client {
	transport := http.DefaultTransport
	if cfg.InsecureSkipVerify {
		// Sibling services run with self-signed certificates on the LAN.
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402
		transport = t
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if cfg.Timeout <= 0 {
		timeout = 5 * time.Second
	}
	retryDelay := time.Duration(cfg.RetryDelay) * time.Second
	if cfg.RetryDelay <= 0 {
		retryDelay = time.Minute
	}

	return &Client{
		http:       &http.Client{Transport: transport},
		accessKey:  accessKey,
		instanceID: instanceID,
		timeout:    timeout,
		retryDelay: retryDelay,
		logger:     logger,
	}
}

// CallOption adjusts the behaviour of a single call.
type CallOption func(*callOptions)

type callOptions struct {
	noRetry bool
}

// NoRetry makes the call fail synchronously on any error, including
// connection refused. Interactive request handlers use this so their own
// client gets an answer instead of an open-ended wait.
func NoRetry() CallOption {
	return func(o *callOptions) {
		o.noRetry = true
	}
}

// Get performs a GET against url and decodes the JSON response body into out.
// A nil out discards the body.
func (c *Client) Get(ctx context.Context, url string, out any, opts ...CallOption) error {
	body, err := c.Do(ctx, http.MethodGet, url, nil, opts...)
	if err != nil {
		return err
	}
	return decodeInto(body, out)
}

// Put performs a PUT with a JSON-encoded body and decodes the response into out.
//
// A retried PUT resends the same body with no idempotency key; callers whose
// PUTs are not idempotent must pass NoRetry or supply their own key.
func (c *Client) Put(ctx context.Context, url string, in, out any, opts ...CallOption) error {
	body, err := c.Do(ctx, http.MethodPut, url, in, opts...)
	if err != nil {
		return err
	}
	return decodeInto(body, out)
}

// Post performs a POST with a JSON-encoded body and decodes the response into out.
func (c *Client) Post(ctx context.Context, url string, in, out any, opts ...CallOption) error {
	body, err := c.Do(ctx, http.MethodPost, url, in, opts...)
	if err != nil {
		return err
	}
	return decodeInto(body, out)
}

// Do performs one logical call and returns the raw response body.
//
// Connection-refused failures are retried after a fixed delay, indefinitely,
// unless NoRetry is set. The wait between attempts is cancellable through
// ctx, so shutdown does not leak a sleeping call. Each attempt carries its
// own request timeout, distinct from the retry delay.
//
// Returns:
//   - []byte: Response body on a 2xx status
//   - error: ErrRefused wrapped (no-retry path), a *StatusError for non-2xx,
//     or the underlying transport error for other terminal failures
func (c *Client) Do(ctx context.Context, method, url string, in any, opts ...CallOption) ([]byte, error) {
	var options callOptions
	for _, opt := range opts {
		opt(&options)
	}

	var payload []byte
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		payload = encoded
	}

	for attempt := 0; ; attempt++ {
		body, err := c.attempt(ctx, method, url, payload)
		if err == nil {
			return body, nil
		}

		if !isConnectionRefused(err) {
			// Terminal: retrying a timeout, DNS failure, bad status or
			// malformed body would not help and could duplicate effects.
			return nil, err
		}

		if options.noRetry {
			return nil, fmt.Errorf("%w: %w", ErrRefused, err)
		}

		c.logger.Error("cannot connect, peer not listening",
			"url", url,
			"attempt", attempt,
			"retry_in", c.retryDelay.String(),
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("call abandoned: %w", ctx.Err())
		case <-time.After(c.retryDelay):
		}
	}
}

// attempt performs a single HTTP round trip with its own timeout.
func (c *Client) attempt(ctx context.Context, method, url string, payload []byte) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.accessKey != "" {
		req.Header.Set("Client-Access-Key", c.accessKey)
	}

	t, ok := trace.FromContext(ctx)
	if !ok {
		// Calls outside any inbound request (startup, schedulers) still
		// get a fresh call ID so the receiving side can correlate.
		t = trace.Trace{Instance: c.instanceID, Call: trace.NewCallID()}
	}
	t.SetHeaders(req.Header)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			URL:        url,
			Body:       body,
		}
	}

	return body, nil
}

// decodeInto unmarshals body into out, treating a nil out as "discard".
func decodeInto(body []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}
	return nil
}
