package secrets

import "errors"

// Domain errors for the secrets package.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrKeyCorrupt is returned when the key file exists but does not
	// contain exactly 32 bytes. The key is never silently regenerated in
	// this case: doing so would make every previously encrypted value
	// unrecoverable.
	ErrKeyCorrupt = errors.New("secrets: key file corrupt")

	// ErrEncrypt is returned when a value cannot be encrypted.
	ErrEncrypt = errors.New("secrets: encryption failed")

	// ErrDecrypt is returned when a blob cannot be decrypted: malformed
	// base64, truncated input, misaligned ciphertext, or invalid padding.
	ErrDecrypt = errors.New("secrets: decryption failed")
)
