package mqtt

import (
	"fmt"
)

// Maximum payload size for MQTT messages. The appliance's own pushes are a
// few hundred bytes; anything approaching this limit is a bug upstream.
const maxPayloadSize = 1 << 16 // 64KB

// Publish sends a message to the specified topic on the appliance broker.
//
// Parameters:
//   - topic: The topic to publish to (normally Topics.Command())
//   - payload: The message payload (JSON, max 64KB)
//   - qos: Quality of Service level (0, 1, or 2)
//
// The appliance ignores retained messages, so there is no retained flag here.
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure
func (c *Client) Publish(topic string, payload []byte, qos byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, false, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}
