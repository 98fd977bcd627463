// Package settings implements the per-installation settings store for
// cloudbridge.
//
// Unlike the service configuration (internal/infrastructure/config), which
// describes how the daemon itself runs, the settings store holds values
// provisioned per installation: the cloud account host, port, username and
// password. It persists as a single flat JSON object and supports
// value-level encryption for secrets via the secrets package.
//
// On disk, a plain entry is a bare JSON scalar and an encrypted entry is
// the nested shape {"isEncrypted": true, "value": "<blob>"}. Existing
// installations depend on this exact shape; it must round-trip unchanged.
//
// Thread Safety:
//   - A Store is NOT safe for concurrent use. Callers own serialisation;
//     in practice the store is loaded once at startup and saved from a
//     single goroutine.
//
// Usage:
//
//	store := settings.New(key)
//	if err := store.Load("data/settings.json"); err != nil {
//	    log.Fatal(err)
//	}
//	if err := store.Set("password", "hunter2", true); err != nil {
//	    log.Fatal(err)
//	}
//	if err := store.Save("data/settings.json"); err != nil {
//	    log.Fatal(err)
//	}
package settings
