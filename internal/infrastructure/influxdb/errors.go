package influxdb

import "errors"

// Sentinel errors for telemetry operations, matchable with errors.Is().
var (
	// ErrNotConnected indicates no active InfluxDB connection.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed indicates the initial connection attempt failed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrWriteFailed indicates a synchronous write failed. Batched writes
	// report failures through the error callback instead.
	ErrWriteFailed = errors.New("influxdb: write failed")

	// ErrDisabled indicates the InfluxDB integration is switched off in
	// the service configuration.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
