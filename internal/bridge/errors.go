package bridge

import "errors"

var (
	// ErrMissingCredentials is returned when the settings store has no
	// username or password for the cloud account.
	ErrMissingCredentials = errors.New("bridge: cloud credentials not configured")

	// ErrInvalidCommand is returned when a set request carries no
	// recognisable state fields.
	ErrInvalidCommand = errors.New("bridge: invalid command payload")
)
