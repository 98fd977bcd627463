package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteDeviceMetric writes a single device measurement to InfluxDB.
//
// This is the primary method for recording device telemetry data.
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - deviceID: Unique identifier for the device (e.g., "lamp-01")
//   - measurement: The metric name (e.g., "brightness", "color_temperature")
//   - value: The numeric value to record
//
// Example:
//
//	client.WriteDeviceMetric("lamp-01", "brightness", 75)
func (c *Client) WriteDeviceMetric(deviceID string, measurement string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_metrics",
		map[string]string{
			"device_id":   deviceID,
			"measurement": measurement,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteDeviceAvailability records an online/offline transition for a
// device. Stored as 1 (online) or 0 (offline) so dashboards can graph
// uptime.
func (c *Client) WriteDeviceAvailability(deviceID string, online bool) {
	if !c.IsConnected() {
		return
	}

	value := 0
	if online {
		value = 1
	}

	point := write.NewPoint(
		"device_availability",
		map[string]string{
			"device_id": deviceID,
		},
		map[string]interface{}{
			"online": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePollCycle records the outcome of a cloud poll cycle: how long it
// took, how many devices were returned, and how many changed state.
func (c *Client) WritePollCycle(duration time.Duration, deviceCount int, changedCount int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"poll_cycle",
		nil,
		map[string]interface{}{
			"duration_ms":   float64(duration.Milliseconds()),
			"device_count":  deviceCount,
			"changed_count": changedCount,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
