package secrets

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
)

// Key and file constants.
const (
	// KeySize is the symmetric key length in bytes (AES-256).
	KeySize = 32

	// keyFilePermissions restricts the key file to the owning user.
	keyFilePermissions = 0600

	// keyDirPermissions is the permission mode for the key directory.
	keyDirPermissions = 0750
)

// EnsureKey loads the symmetric key from path, generating it on first run.
//
// If the file exists it must contain exactly KeySize bytes; any other
// length fails with ErrKeyCorrupt. If the file is absent, a fresh key is
// generated from crypto/rand and written with owner-only permissions
// (best effort on platforms without POSIX modes).
//
// Parameters:
//   - path: Filesystem path of the key file
//
// Returns:
//   - []byte: The 32-byte symmetric key
//   - error: ErrKeyCorrupt on wrong length, or the underlying I/O error
func EnsureKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path) //nolint:gosec // G304: path comes from service config
	if err == nil {
		if len(key) != KeySize {
			return nil, fmt.Errorf("%w: expected %d bytes, found %d", ErrKeyCorrupt, KeySize, len(key))
		}
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading key file: %w", err)
	}

	// First run: generate and persist a new key.
	key = make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), keyDirPermissions); err != nil {
		return nil, fmt.Errorf("creating key directory: %w", err)
	}
	if err := os.WriteFile(path, key, keyFilePermissions); err != nil {
		return nil, fmt.Errorf("writing key file: %w", err)
	}

	return key, nil
}
