package settings

import "errors"

// Domain errors for the settings package.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrLoad is returned when the settings file exists but cannot be
	// parsed. A missing file is not an error: first run starts empty.
	ErrLoad = errors.New("settings: load failed")

	// ErrSave is returned when the settings file cannot be written.
	ErrSave = errors.New("settings: save failed")
)
