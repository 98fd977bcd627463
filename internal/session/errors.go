package session

import "errors"

// Domain errors for the session package.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrAuth is returned when the credential exchange fails: transport
	// error, non-success status, or a response without a token.
	ErrAuth = errors.New("session: authentication failed")

	// ErrNotAuthenticated is returned when an operation requires a
	// session but no token has been cached yet (or it was cleared).
	ErrNotAuthenticated = errors.New("session: not authenticated")

	// ErrTokenExpired is returned when the cached token's expiry has
	// passed. The caller should re-authenticate.
	ErrTokenExpired = errors.New("session: token expired")
)
