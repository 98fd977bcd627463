// Package bridge orchestrates the cloud polling loop.
//
// The Bridge owns the driver's main loop: it authenticates against the
// cloud with credentials from the settings store, polls the device list
// at a fixed interval, reconciles the device registry, and forwards
// inbound set requests (HTTP API or MQTT) to the cloud.
//
// Observed changes fan out through registry events to:
//   - MQTT (retained state topics, availability transitions)
//   - the state history table
//   - InfluxDB telemetry
//
// Session tokens are refreshed ahead of expiry; a failed poll is logged
// and retried on the next tick rather than stopping the loop.
package bridge
