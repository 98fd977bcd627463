package device

import "errors"

// Domain-specific errors for device operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotFound is returned when a device does not exist locally.
	ErrNotFound = errors.New("device: not found")

	// ErrInvalidDevice is returned when a device fails validation.
	ErrInvalidDevice = errors.New("device: invalid device")
)
