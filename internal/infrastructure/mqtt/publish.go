package mqtt

import (
	"fmt"
)

// maxPayloadSize caps outbound message bodies (1MB). Device state payloads
// are a few hundred bytes; anything larger is a bug upstream.
const maxPayloadSize = 1 << 20

// Publish sends a message to the given topic and waits for the broker ack.
//
// Parameters:
//   - topic: Destination topic (e.g. "cloudbridge/devices/lamp-01/state")
//   - payload: Message body, typically JSON, at most 1MB
//   - qos: Quality of Service level (0, 1, or 2)
//   - retained: Whether the broker keeps the message for new subscribers
//
// Retained is used for state and availability topics so late subscribers
// see the current value immediately; command topics are never retained.
//
// Returns:
//   - error: nil on success, or a wrapped sentinel describing the failure
//
// Example:
//
//	topic := mqtt.Topics{}.DeviceState("lamp-01")
//	err := client.Publish(topic, []byte(`{"power":"on"}`), 1, true)
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
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

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// PublishString publishes a string payload. Equivalent to Publish with
// []byte(payload).
func (c *Client) PublishString(topic string, payload string, qos byte, retained bool) error {
	return c.Publish(topic, []byte(payload), qos, retained)
}

// PublishRetained publishes a retained message at the configured default QoS.
// Used for state updates where new subscribers need the current value.
func (c *Client) PublishRetained(topic string, payload []byte) error {
	return c.Publish(topic, payload, byte(c.cfg.QoS), true)
}
