package mqtt

import (
	"errors"
	"strings"
	"testing"
)

// =============================================================================
// Topic Builder Tests
// =============================================================================

func TestTopics(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"device state", topics.DeviceState("lamp-01"), "cloudbridge/devices/lamp-01/state"},
		{"device set", topics.DeviceSet("lamp-01"), "cloudbridge/devices/lamp-01/set"},
		{"device availability", topics.DeviceAvailability("fan-02"), "cloudbridge/devices/fan-02/availability"},
		{"system status", topics.SystemStatus(), "cloudbridge/system/status"},
		{"all device sets", topics.AllDeviceSets(), "cloudbridge/devices/+/set"},
		{"all device states", topics.AllDeviceStates(), "cloudbridge/devices/+/state"},
		{"all topics", topics.AllTopics(), "cloudbridge/#"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestDeviceIDFromTopic(t *testing.T) {
	tests := []struct {
		name  string
		topic string
		want  string
	}{
		{"set topic", "cloudbridge/devices/lamp-01/set", "lamp-01"},
		{"state topic", "cloudbridge/devices/fan-02/state", "fan-02"},
		{"missing suffix", "cloudbridge/devices/lamp-01", ""},
		{"wrong prefix", "other/devices/lamp-01/set", ""},
		{"system topic", "cloudbridge/system/status", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeviceIDFromTopic(tt.topic); got != tt.want {
				t.Errorf("DeviceIDFromTopic(%q) = %q, want %q", tt.topic, got, tt.want)
			}
		})
	}
}

// =============================================================================
// Validation Tests (no broker required)
// =============================================================================

func newDisconnectedClient() *Client {
	return &Client{subscriptions: make(map[string]subscription)}
}

func TestPublishValidation(t *testing.T) {
	c := newDisconnectedClient()

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{"empty topic", "", []byte("x"), 1, ErrInvalidTopic},
		{"invalid qos", "cloudbridge/devices/lamp-01/state", []byte("x"), 3, ErrInvalidQoS},
		{"oversized payload", "cloudbridge/devices/lamp-01/state", make([]byte, maxPayloadSize+1), 1, ErrPublishFailed},
		{"not connected", "cloudbridge/devices/lamp-01/state", []byte("x"), 1, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Publish(tt.topic, tt.payload, tt.qos, false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Publish() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubscribeValidation(t *testing.T) {
	c := newDisconnectedClient()
	handler := func(string, []byte) error { return nil }

	if err := c.Subscribe("", 1, handler); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Subscribe() with empty topic error = %v, want ErrInvalidTopic", err)
	}
	if err := c.Subscribe("cloudbridge/devices/+/set", 5, handler); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("Subscribe() with qos 5 error = %v, want ErrInvalidQoS", err)
	}
	if err := c.Subscribe("cloudbridge/devices/+/set", 1, nil); !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("Subscribe() with nil handler error = %v, want ErrSubscribeFailed", err)
	}
	if err := c.Subscribe("cloudbridge/devices/+/set", 1, handler); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Subscribe() while disconnected error = %v, want ErrNotConnected", err)
	}

	// Failed subscriptions must not be tracked.
	if c.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", c.SubscriptionCount())
	}
}

func TestUnsubscribeValidation(t *testing.T) {
	c := newDisconnectedClient()

	if err := c.Unsubscribe(""); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Unsubscribe() with empty topic error = %v, want ErrInvalidTopic", err)
	}
	if err := c.Unsubscribe("cloudbridge/devices/+/set"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Unsubscribe() while disconnected error = %v, want ErrNotConnected", err)
	}
}

func TestCloseNil(t *testing.T) {
	c := &Client{}
	if err := c.Close(); err != nil {
		t.Errorf("Close() on nil client error = %v, want nil", err)
	}
}

// =============================================================================
// Status Payload Tests
// =============================================================================

func TestStatusPayloads(t *testing.T) {
	online := buildOnlinePayload("cloudbridge-01")
	if !strings.Contains(online, `"status":"online"`) || !strings.Contains(online, `"client_id":"cloudbridge-01"`) {
		t.Errorf("online payload missing fields: %s", online)
	}

	offline := buildOfflinePayload("cloudbridge-01")
	if !strings.Contains(offline, `"status":"offline"`) || !strings.Contains(offline, `"reason":"graceful_shutdown"`) {
		t.Errorf("offline payload missing fields: %s", offline)
	}
}
