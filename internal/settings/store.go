package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nerrad567/cloudbridge/internal/secrets"
)

// File permission constants.
const (
	filePermissions = 0600
	dirPermissions  = 0750
)

// encryptedKeyField and encryptedValueField name the JSON fields of the
// on-disk encrypted-entry shape. Existing installations depend on the
// exact spelling.
const (
	encryptedKeyField   = "isEncrypted"
	encryptedValueField = "value"
)

// requiredKeys must be present and non-blank for a usable installation.
var requiredKeys = []string{"host", "port", "username"}

// Store is a flat key/value settings store with optional per-entry
// encryption and JSON persistence.
type Store struct {
	key     []byte
	entries map[string]Value
}

// New creates an empty Store. The key is used to encrypt and decrypt
// entries stored with encrypt=true; it comes from secrets.EnsureKey.
func New(key []byte) *Store {
	return &Store{
		key:     key,
		entries: make(map[string]Value),
	}
}

// Set stores a value under key.
//
// With encrypt=false the value keeps its type: string, int and bool map
// to the matching variant, anything else is stored as its string
// rendering. With encrypt=true the value is rendered to a string and
// encrypted before it enters the store, so plaintext secrets never sit
// in memory longer than the call.
//
// Returns:
//   - error: secrets.ErrEncrypt when encryption fails, nil otherwise
func (s *Store) Set(key string, value any, encrypt bool) error {
	if encrypt {
		blob, err := secrets.Encrypt(render(value), s.key)
		if err != nil {
			return err
		}
		s.entries[key] = encryptedValue(blob)
		return nil
	}

	switch v := value.(type) {
	case string:
		s.entries[key] = stringValue(v)
	case int:
		s.entries[key] = intValue(v)
	case bool:
		s.entries[key] = boolValue(v)
	default:
		s.entries[key] = stringValue(render(value))
	}
	return nil
}

// Get returns the logical value stored under key, or def if absent.
// Encrypted entries are transparently decrypted.
//
// Returns:
//   - any: string, int or bool for plain entries; string for encrypted
//   - error: secrets.ErrDecrypt when an encrypted entry cannot be read
func (s *Store) Get(key string, def any) (any, error) {
	v, ok := s.entries[key]
	if !ok {
		return def, nil
	}
	if v.Kind() == KindEncrypted {
		plaintext, err := secrets.Decrypt(v.s, s.key)
		if err != nil {
			return def, err
		}
		return plaintext, nil
	}
	return v.jsonScalar(), nil
}

// GetString returns the value under key as a string, or def when the
// key is absent or the entry cannot be decrypted. It never fails.
func (s *Store) GetString(key, def string) string {
	v, ok := s.entries[key]
	if !ok {
		return def
	}
	if v.Kind() == KindEncrypted {
		plaintext, err := secrets.Decrypt(v.s, s.key)
		if err != nil {
			return def
		}
		return plaintext
	}
	return v.asString()
}

// GetInt returns the value under key as an int. Strings are parsed
// best-effort; anything unparseable falls back to def. It never fails.
func (s *Store) GetInt(key string, def int) int {
	v, ok := s.entries[key]
	if !ok {
		return def
	}

	switch v.Kind() {
	case KindInt:
		return v.i
	case KindString, KindEncrypted:
		if n, err := strconv.Atoi(strings.TrimSpace(s.GetString(key, ""))); err == nil {
			return n
		}
	case KindBool:
		// No sensible integer reading of a boolean.
	}
	return def
}

// GetBool returns the value under key as a bool. Strings are parsed
// with strconv.ParseBool, integers read 0/1; anything else falls back
// to def. It never fails.
func (s *Store) GetBool(key string, def bool) bool {
	v, ok := s.entries[key]
	if !ok {
		return def
	}

	switch v.Kind() {
	case KindBool:
		return v.b
	case KindString, KindEncrypted:
		if b, err := strconv.ParseBool(strings.TrimSpace(s.GetString(key, ""))); err == nil {
			return b
		}
	case KindInt:
		if v.i == 0 || v.i == 1 {
			return v.i == 1
		}
	}
	return def
}

// IsEncrypted reports whether the entry under key is stored encrypted.
func (s *Store) IsEncrypted(key string) bool {
	v, ok := s.entries[key]
	return ok && v.Kind() == KindEncrypted
}

// Has reports whether key is present in the store.
func (s *Store) Has(key string) bool {
	_, ok := s.entries[key]
	return ok
}

// Delete removes key from the store. Deleting an absent key is a no-op.
func (s *Store) Delete(key string) {
	delete(s.entries, key)
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Load replaces the store contents with the JSON object at path.
//
// A missing file is not an error: first run begins with an empty store
// and the first Save creates the file. Encrypted entries are recognised
// by the {"isEncrypted": true, "value": ...} shape and kept as blobs;
// decryption happens lazily on read.
//
// Returns:
//   - error: ErrLoad on malformed JSON or an unreadable file
func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from service config
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}

	entries := make(map[string]Value, len(raw))
	for k, v := range raw {
		if nested, ok := v.(map[string]any); ok {
			blob, err := decodeEncryptedShape(nested)
			if err != nil {
				return fmt.Errorf("%w: entry %q: %w", ErrLoad, k, err)
			}
			entries[k] = encryptedValue(blob)
			continue
		}
		entries[k] = fromJSON(v)
	}

	s.entries = entries
	return nil
}

// Save serialises the full store to path as a single JSON object,
// creating parent directories as needed. The file is overwritten in
// place; there is no atomic rename, so an interrupted write can leave
// a corrupt file (known limitation).
//
// Returns:
//   - error: ErrSave on any I/O failure
func (s *Store) Save(path string) error {
	out := make(map[string]any, len(s.entries))
	for k, v := range s.entries {
		if v.Kind() == KindEncrypted {
			out[k] = map[string]any{
				encryptedKeyField:   true,
				encryptedValueField: v.s,
			}
			continue
		}
		out[k] = v.jsonScalar()
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	if err := os.WriteFile(path, data, filePermissions); err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}

	return nil
}

// Validate reports whether the store holds a usable installation:
// host, port and username present and non-blank, with port parsing as
// an integer in [1,65535].
//
// It returns a health signal rather than an error so callers decide how
// to react. A fresh installation legitimately starts invalid until
// provisioning completes.
func (s *Store) Validate() bool {
	for _, key := range requiredKeys {
		if strings.TrimSpace(s.GetString(key, "")) == "" {
			return false
		}
	}

	port := s.GetInt("port", 0)
	return port >= 1 && port <= 65535
}

// decodeEncryptedShape extracts the blob from an on-disk encrypted
// entry. Any other nested object is malformed: the settings file is one
// level deep by contract.
func decodeEncryptedShape(nested map[string]any) (string, error) {
	flagged, _ := nested[encryptedKeyField].(bool)
	if !flagged {
		return "", fmt.Errorf("unexpected nested value")
	}
	blob, ok := nested[encryptedValueField].(string)
	if !ok {
		return "", fmt.Errorf("encrypted entry missing %q", encryptedValueField)
	}
	return blob, nil
}

// render converts an arbitrary value to its string form for encryption
// or fallback storage.
func render(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
