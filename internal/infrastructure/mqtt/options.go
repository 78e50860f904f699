package mqtt

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/hearth-core/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultConnectTimeout is the maximum time to wait for initial connection.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout is the maximum time to wait for publish acknowledgment.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 250 // milliseconds

	// defaultKeepAlive is the keepalive interval for the connection. The
	// appliance drops clients it considers idle, so this stays short.
	defaultKeepAlive = 30 * time.Second

	// reconnectInitialDelay and reconnectMaxDelay bound paho's backoff.
	reconnectInitialDelay = 1 * time.Second
	reconnectMaxDelay     = 60 * time.Second

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2

	// clientIDRandomBytes is the entropy appended to the client ID. The
	// appliance rejects duplicate client IDs, and a stale session from a
	// crashed run can linger past its keepalive.
	clientIDRandomBytes = 4
)

// buildClientOptions creates paho MQTT options for the appliance broker.
//
// This configures:
//   - Broker URL from the device host and port (always tcp://, the
//     appliance firmware offers no TLS)
//   - A randomized client ID so restarts never collide with a lingering session
//   - The device serial and credential as username/password
//   - Auto-reconnect with exponential backoff
//   - Clean session mode
func buildClientOptions(cfg config.DeviceConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port))
	opts.SetClientID(randomClientID())

	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)

	// Clean session - the appliance keeps no useful state for us between runs.
	opts.SetCleanSession(true)

	// Auto-reconnect with exponential backoff. ConnectRetry also covers the
	// initial attempt, so a powered-off appliance at startup is not fatal.
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(reconnectInitialDelay)
	opts.SetMaxReconnectInterval(reconnectMaxDelay)

	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	return opts
}

// randomClientID returns "hearth_" plus hex-encoded random bytes.
func randomClientID() string {
	buf := make([]byte, clientIDRandomBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken; fall back to a
		// fixed suffix rather than refuse to start.
		return "hearth_00000000"
	}
	return "hearth_" + hex.EncodeToString(buf)
}
