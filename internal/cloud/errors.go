package cloud

import "errors"

// Domain errors for the cloud package.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrRequestFailed is returned when a device call receives a
	// non-success status from the cloud.
	ErrRequestFailed = errors.New("cloud: request failed")

	// ErrDeviceNotFound is returned when the cloud reports 404 for a
	// device ID.
	ErrDeviceNotFound = errors.New("cloud: device not found")
)
