package mqtt

import (
	"context"
	"strings"
	"testing"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/hearth-core/internal/infrastructure/config"
)

// newDisconnectedClient builds a Client whose paho client exists but has
// never connected. Enough for exercising validation and state paths.
func newDisconnectedClient(t *testing.T) *Client {
	t.Helper()

	cfg := config.DeviceConfig{
		TypeCode: "455",
		Host:     "192.0.2.1", // TEST-NET, never dialled in these tests
		Port:     1883,
		Username: "NN2-EU-TESTSERIAL",
	}

	opts := buildClientOptions(cfg)
	// No auto retry in tests: we never want background dialling.
	opts.SetConnectRetry(false)
	opts.SetAutoReconnect(false)

	return &Client{
		cfg:           cfg,
		options:       opts,
		client:        pahomqtt.NewClient(opts),
		subscriptions: make(map[string]subscription),
	}
}

func TestConnectRejectsEmptyHost(t *testing.T) {
	_, err := Connect(config.DeviceConfig{Username: "serial"})
	if err == nil {
		t.Fatal("expected error for empty host")
	}
}

func TestPublishValidation(t *testing.T) {
	c := newDisconnectedClient(t)

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{"empty topic", "", []byte("x"), 1, ErrInvalidTopic},
		{"invalid qos", "455/serial/command", []byte("x"), 3, ErrInvalidQoS},
		{"oversized payload", "455/serial/command", make([]byte, maxPayloadSize+1), 1, ErrPublishFailed},
		{"not connected", "455/serial/command", []byte("x"), 1, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Publish(tt.topic, tt.payload, tt.qos)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr.Error()) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubscribeValidation(t *testing.T) {
	c := newDisconnectedClient(t)
	handler := func(string, []byte) error { return nil }

	if err := c.Subscribe("", 1, handler); err != ErrInvalidTopic {
		t.Errorf("empty topic: err = %v, want ErrInvalidTopic", err)
	}
	if err := c.Subscribe("t", 3, handler); err != ErrInvalidQoS {
		t.Errorf("bad qos: err = %v, want ErrInvalidQoS", err)
	}
	if err := c.Subscribe("t", 1, nil); err == nil {
		t.Error("nil handler: expected error")
	}
}

// TestSubscribeWhileDisconnectedIsDeferred verifies a subscription made
// before the link is up is tracked for the connect handler to restore.
func TestSubscribeWhileDisconnectedIsDeferred(t *testing.T) {
	c := newDisconnectedClient(t)
	handler := func(string, []byte) error { return nil }

	if err := c.Subscribe("455/serial/status/current", 0, handler); err != nil {
		t.Fatalf("Subscribe while disconnected: %v", err)
	}
	if got := c.SubscriptionCount(); got != 1 {
		t.Errorf("SubscriptionCount = %d, want 1", got)
	}
}

func TestUnsubscribeRemovesTracking(t *testing.T) {
	c := newDisconnectedClient(t)
	handler := func(string, []byte) error { return nil }

	topic := "455/serial/status/current"
	if err := c.Subscribe(topic, 0, handler); err != nil {
		t.Fatal(err)
	}
	if err := c.Unsubscribe(topic); err != nil {
		t.Fatal(err)
	}
	if got := c.SubscriptionCount(); got != 0 {
		t.Errorf("SubscriptionCount = %d, want 0", got)
	}
}

func TestHealthCheckNotConnected(t *testing.T) {
	c := newDisconnectedClient(t)

	if err := c.HealthCheck(context.Background()); err != ErrNotConnected {
		t.Errorf("HealthCheck = %v, want ErrNotConnected", err)
	}
}

func TestHealthCheckCancelledContext(t *testing.T) {
	c := newDisconnectedClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.HealthCheck(ctx); err == nil {
		t.Error("expected context error")
	}
}

type recordingLogger struct {
	errors []string
	warns  []string
}

func (l *recordingLogger) Error(msg string, _ ...any) { l.errors = append(l.errors, msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.warns = append(l.warns, msg) }

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

// TestWrapHandlerRecoversPanic verifies a panicking handler cannot take
// down the paho router goroutine.
func TestWrapHandlerRecoversPanic(t *testing.T) {
	c := newDisconnectedClient(t)
	logger := &recordingLogger{}
	c.SetLogger(logger)

	wrapped := c.wrapHandler(func(string, []byte) error {
		panic("boom")
	})

	wrapped(nil, fakeMessage{topic: "455/serial/status/current"}) // must not panic

	if len(logger.errors) != 1 {
		t.Errorf("logged errors = %d, want 1", len(logger.errors))
	}
}

func TestWrapHandlerLogsHandlerError(t *testing.T) {
	c := newDisconnectedClient(t)
	logger := &recordingLogger{}
	c.SetLogger(logger)

	wrapped := c.wrapHandler(func(string, []byte) error {
		return ErrPublishFailed
	})

	wrapped(nil, fakeMessage{topic: "t"})

	if len(logger.warns) != 1 {
		t.Errorf("logged warnings = %d, want 1", len(logger.warns))
	}
}

func TestRandomClientID(t *testing.T) {
	a := randomClientID()
	b := randomClientID()

	if !strings.HasPrefix(a, "hearth_") {
		t.Errorf("client ID %q missing hearth_ prefix", a)
	}
	if a == b {
		t.Errorf("two client IDs collided: %q", a)
	}
	if len(a) != len("hearth_")+2*clientIDRandomBytes {
		t.Errorf("client ID %q has unexpected length", a)
	}
}

func TestCloseOnNilClient(t *testing.T) {
	c := &Client{}
	if err := c.Close(); err != nil {
		t.Errorf("Close on zero client: %v", err)
	}
}
