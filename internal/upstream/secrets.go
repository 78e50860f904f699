// Package upstream fetches secrets from sibling services in the federation.
//
// Device credentials are not written into config on every host; instead a
// central secrets service hands them out at startup. The fetch rides the
// resilient caller, so a secrets service that is still booting simply
// delays startup instead of failing it.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/nerrad567/hearth-core/internal/infrastructure/caller"
)

// ErrNoSecretsURL is returned when the secrets service is not configured.
var ErrNoSecretsURL = errors.New("upstream: secrets_url not configured")

// DeviceCredentials is the secrets service's answer for one device.
type DeviceCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// credentialsEnvelope is the standard federation response wrapper.
type credentialsEnvelope struct {
	Data DeviceCredentials `json:"data"`
}

// SecretsClient fetches device credentials from the secrets service.
type SecretsClient struct {
	caller  *caller.Client
	baseURL string
}

// NewSecretsClient creates a SecretsClient over the shared caller.
//
// Parameters:
//   - c: The resilient caller (carries access key and trace identity)
//   - baseURL: The secrets service base URL; empty disables the client
func NewSecretsClient(c *caller.Client, baseURL string) *SecretsClient {
	return &SecretsClient{caller: c, baseURL: baseURL}
}

// DeviceCredentials fetches the credential pair for the named device.
//
// The call retries indefinitely while the secrets service refuses
// connections, so callers should pass a context they are willing to wait
// on — at startup that is the process context itself.
//
// Parameters:
//   - ctx: Context governing the overall wait
//   - device: The device serial to look up
//
// Returns:
//   - *DeviceCredentials: The credential pair
//   - error: ErrNoSecretsURL, context cancellation, or a terminal call error
func (s *SecretsClient) DeviceCredentials(ctx context.Context, device string) (*DeviceCredentials, error) {
	if s.baseURL == "" {
		return nil, ErrNoSecretsURL
	}

	endpoint := fmt.Sprintf("%s/devices/%s/credentials", s.baseURL, url.PathEscape(device))

	var env credentialsEnvelope
	if err := s.caller.Get(ctx, endpoint, &env); err != nil {
		return nil, fmt.Errorf("fetching device credentials: %w", err)
	}

	if env.Data.Password == "" {
		return nil, fmt.Errorf("secrets service returned no credential for %q", device)
	}

	return &env.Data, nil
}
