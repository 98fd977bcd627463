package device

import (
	"context"
	"time"

	"github.com/nerrad567/cloudbridge/internal/cloud"
)

// StateHistoryEntry represents a single device state change record.
//
// Each entry stores a full snapshot of the device state at the time the
// change was observed. This provides a local audit trail even when the
// time-series database is unavailable.
type StateHistoryEntry struct {
	// ID is the auto-incremented primary key for the history row.
	ID int64 `json:"id"`

	// DeviceID is the unique identifier of the device.
	DeviceID string `json:"device_id"`

	// State is the snapshot of the device state.
	State cloud.DeviceState `json:"state"`

	// Source identifies how the change was observed (poll, command, mqtt).
	Source string `json:"source"`

	// RecordedAt is the timestamp of the state change (UTC).
	RecordedAt time.Time `json:"recorded_at"`
}

// StateHistoryRepository stores and retrieves device state change history.
//
// Implementations must be thread-safe and use UTC timestamps.
type StateHistoryRepository interface {
	// RecordStateChange records a device state change.
	RecordStateChange(ctx context.Context, deviceID string, state cloud.DeviceState, source string) error

	// GetHistory returns recent state change history for the device,
	// ordered newest first. Implementations may clamp the limit.
	GetHistory(ctx context.Context, deviceID string, limit int) ([]StateHistoryEntry, error)
}
