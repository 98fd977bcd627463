// Package secrets provides credential protection for cloudbridge.
//
// It covers two concerns:
//   - Key management: a single 256-bit symmetric key generated on first run
//     and persisted to a dedicated key file alongside the settings store.
//   - Value encryption: AES-256-CBC with PKCS7 padding over individual
//     string values, so secrets (cloud passwords, API keys) are never
//     written to disk in the clear.
//
// Security Considerations:
//   - The key file is written with 0600 permissions and is never logged,
//     transmitted, or exposed outside this package's callers.
//   - Each Encrypt call uses a fresh random IV; identical plaintexts
//     produce different blobs.
//   - The scheme carries no integrity tag. A tampered blob may decrypt to
//     incorrect plaintext without detection. This matches the installed
//     base of existing settings files; see DESIGN.md before changing it.
//
// Usage:
//
//	key, err := secrets.EnsureKey("data/secret.key")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	blob, err := secrets.Encrypt("hunter2", key)
package secrets
