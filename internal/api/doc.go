// Package api implements the local control API for cloudbridge.
//
// This package provides:
//   - REST endpoints for device reads, state writes, and history queries
//   - WebSocket hub broadcasting registry events to connected clients
//   - API key authentication on everything except the health probe
//   - Middleware stack (request ID, logging, recovery, body size limit)
//
// # Architecture
//
// The API server sits between the control processor and the cloud bridge.
// Reads are served straight from the in-memory device registry; writes are
// forwarded to the bridge, which performs the cloud round-trip before the
// local cache is updated. Registry events (poll changes, command results,
// MQTT set requests) are broadcast to WebSocket subscribers as they happen.
//
// # Security
//
// Every route except GET /api/v1/health requires the installation's API key,
// supplied in the X-API-Key header. WebSocket clients that cannot set headers
// may pass the key as an api_key query parameter instead. The key is compared
// in constant time.
//
// # Graceful Degradation
//
// The server operates without a bridge. Reads, history, and WebSocket
// connections keep working; only state writes fail with 503.
package api
