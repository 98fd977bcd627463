// Package influxdb provides InfluxDB connectivity for cloudbridge.
//
// It wraps the official influxdb-client-go v2 library with patterns for
// connection management, metric writing, and health monitoring.
//
// # Purpose
//
// This package handles time-series telemetry for:
//   - Device state metrics (brightness, colour temperature, speed)
//   - Device availability (online/offline transitions)
//   - Poll cycle statistics
//
// The integration is optional; when disabled in config the bridge runs
// without telemetry.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteDeviceMetric("lamp-01", "brightness", 75)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are delivered via
// the SetOnError callback. Connection and health check errors are
// returned directly.
package influxdb
