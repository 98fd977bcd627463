package secrets

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureKey_GeneratesOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "secret.key")

	key, err := EnsureKey(path)
	if err != nil {
		t.Fatalf("EnsureKey() error = %v", err)
	}
	if len(key) != KeySize {
		t.Errorf("key length = %d, want %d", len(key), KeySize)
	}

	// The key must be persisted, not just returned.
	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading key file: %v", err)
	}
	if !bytes.Equal(onDisk, key) {
		t.Error("persisted key differs from returned key")
	}
}

func TestEnsureKey_StableAcrossCalls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.key")

	first, err := EnsureKey(path)
	if err != nil {
		t.Fatalf("first EnsureKey() error = %v", err)
	}

	second, err := EnsureKey(path)
	if err != nil {
		t.Fatalf("second EnsureKey() error = %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("EnsureKey() should return byte-identical keys while the file exists")
	}
}

func TestEnsureKey_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.key")

	// A 10-byte key file indicates corruption and must not be
	// silently regenerated.
	if err := os.WriteFile(path, []byte("short-key!"), 0600); err != nil {
		t.Fatalf("writing corrupt key: %v", err)
	}

	_, err := EnsureKey(path)
	if !errors.Is(err, ErrKeyCorrupt) {
		t.Errorf("EnsureKey() error = %v, want ErrKeyCorrupt", err)
	}
}

func TestEnsureKey_FilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.key")

	if _, err := EnsureKey(path); err != nil {
		t.Fatalf("EnsureKey() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat key file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("key file permissions = %o, want 0600", perm)
	}
}
