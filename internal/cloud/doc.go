// Package cloud implements the HTTP client for the cloud device API.
//
// Every call attaches the cached bearer token from the session manager
// and the fixed User-Agent the cloud expects. The client performs no
// retries and no connection pooling beyond net/http defaults: a failed
// call surfaces immediately and the bridge's poll cadence decides when
// to try again.
//
// Wire shapes (DeviceInfo, DeviceState) are defined by the cloud and
// must round-trip with their exact field names.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
package cloud
