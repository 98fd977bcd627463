// Package session manages the authenticated session against the cloud
// device API.
//
// The cloud issues an opaque bearer token with a lifetime. This package
// performs the credential exchange, caches the (token, expiry) pair, and
// answers the two questions every device call asks first: "am I still
// authenticated?" and "should I refresh soon?". Refresh is flagged 300
// seconds before expiry so callers can re-authenticate ahead of failures.
//
// Thread Safety:
//   - All methods are safe for concurrent use. The cached pair is only
//     read or replaced under a single mutex, so a reader never observes
//     a token from one authentication with the expiry of another.
//   - The network exchange runs outside the lock. Concurrent Authenticate
//     calls therefore race on completion order with last-write-wins; the
//     driver has a single cloud account, so the racing tokens are
//     interchangeable in practice.
//
// There is no retry logic here. A failed exchange surfaces immediately;
// the bridge's poll cadence is the retry policy.
package session
