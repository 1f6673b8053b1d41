package mqtt

import (
	"encoding/json"
	"fmt"
)

// maxPayloadSize caps a single message at 1MB.
const maxPayloadSize = 1 << 20

// Publish sends payload to topic and waits for the broker to accept it.
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

// PublishEvent marshals event as JSON and publishes it, not retained, on
// {prefix}/events/{eventType}/{deviceID} at the configured QoS.
func (c *Client) PublishEvent(eventType, deviceID string, event any) error {
	if eventType == "" {
		return ErrInvalidTopic
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %w", ErrPublishFailed, eventType, err)
	}
	return c.Publish(c.topics.Event(eventType, deviceID), payload, byte(c.cfg.QoS), false)
}
