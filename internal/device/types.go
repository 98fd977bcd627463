package device

import (
	"fmt"
	"time"

	"github.com/nerrad567/cloudbridge/internal/cloud"
)

// Device is the local view of a cloud device.
//
// It mirrors the cloud wire shape but carries a parsed timestamp and
// lives in the local cache and SQLite store.
type Device struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Type         string            `json:"type"`
	Model        string            `json:"model"`
	Location     string            `json:"location"`
	Status       string            `json:"status"`
	Capabilities []string          `json:"capabilities"`
	State        cloud.DeviceState `json:"state"`

	// LastUpdated is when the device was last seen to change, either
	// via poll or a successful command.
	LastUpdated time.Time `json:"last_updated"`
}

// FromCloud converts a cloud device description into the local model.
// The cloud's last_updated string is parsed as RFC3339; an unparseable
// or empty value falls back to the current time.
func FromCloud(info cloud.DeviceInfo) Device {
	updated, err := time.Parse(time.RFC3339, info.LastUpdated)
	if err != nil {
		updated = time.Now().UTC()
	}

	return Device{
		ID:           info.ID,
		Name:         info.Name,
		Type:         info.Type,
		Model:        info.Model,
		Location:     info.Location,
		Status:       info.Status,
		Capabilities: append([]string(nil), info.Capabilities...),
		State:        info.State.Clone(),
		LastUpdated:  updated,
	}
}

// Validate checks that the device carries the fields required for
// local storage. Returns ErrInvalidDevice with detail on failure.
func (d *Device) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidDevice)
	}
	if d.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDevice)
	}
	if d.Type == "" {
		return fmt.Errorf("%w: type is required", ErrInvalidDevice)
	}
	return nil
}

// Online reports whether the cloud last saw the device online.
func (d *Device) Online() bool {
	return d.Status == cloud.StatusOnline
}

// DeepCopy returns a copy of the device that shares no mutable data
// with the original. Callers can modify the copy freely.
func (d *Device) DeepCopy() *Device {
	out := *d
	out.Capabilities = append([]string(nil), d.Capabilities...)
	out.State = d.State.Clone()
	return &out
}

// Event types emitted by the Registry.
type EventType string

const (
	// EventAdded fires when a device appears for the first time.
	EventAdded EventType = "added"

	// EventRemoved fires when a device disappears from the cloud account.
	EventRemoved EventType = "removed"

	// EventStateChanged fires when a device's reported state changes.
	EventStateChanged EventType = "state_changed"

	// EventAvailabilityChanged fires when a device goes online or offline.
	EventAvailabilityChanged EventType = "availability_changed"
)

// Event describes an observed device change. The embedded Device is a
// deep copy; handlers may retain or modify it.
type Event struct {
	Type   EventType `json:"type"`
	Device Device    `json:"device"`

	// Source identifies what produced the change (poll, command, mqtt).
	Source string `json:"source"`
}

// Change source values.
const (
	SourcePoll    = "poll"
	SourceCommand = "command"
	SourceMQTT    = "mqtt"
)
