// Package device holds the local view of cloud devices.
//
// The cloud API is the source of truth; this package caches the last
// known state of every device so the local control API can answer
// immediately and so other systems can be notified when state changes.
//
// It provides:
//   - Device: the local device model, mirroring the cloud wire shape
//   - Repository: SQLite persistence for the device cache
//   - Registry: thread-safe in-memory cache with change notifications
//   - StateHistoryRepository: append-only record of observed changes
//
// The Registry is reconciled against poll results by the bridge via
// Sync, and updated directly by ApplyState after a successful command.
// Subscribers (MQTT publisher, WebSocket hub, telemetry) receive an
// Event for every observed change.
package device
