package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/cloudbridge/internal/infrastructure/config"
	"github.com/nerrad567/cloudbridge/internal/secrets"
	"github.com/nerrad567/cloudbridge/internal/settings"
)

// TestRun_InvalidConfig verifies run fails with an invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	originalEnv := os.Getenv("CLOUDBRIDGE_CONFIG")
	defer os.Setenv("CLOUDBRIDGE_CONFIG", originalEnv) //nolint:errcheck // test cleanup

	os.Setenv("CLOUDBRIDGE_CONFIG", "/nonexistent/path/config.yaml") //nolint:errcheck // test setup

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

func TestGetConfigPath(t *testing.T) {
	originalEnv := os.Getenv("CLOUDBRIDGE_CONFIG")
	defer os.Setenv("CLOUDBRIDGE_CONFIG", originalEnv) //nolint:errcheck // test cleanup

	os.Unsetenv("CLOUDBRIDGE_CONFIG") //nolint:errcheck // test setup
	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}

	os.Setenv("CLOUDBRIDGE_CONFIG", "/tmp/override.yaml") //nolint:errcheck // test setup
	if got := getConfigPath(); got != "/tmp/override.yaml" {
		t.Errorf("getConfigPath() = %q, want /tmp/override.yaml", got)
	}
}

func TestCloudBaseURL(t *testing.T) {
	key, err := secrets.EnsureKey(filepath.Join(t.TempDir(), "settings.key"))
	if err != nil {
		t.Fatalf("EnsureKey() error = %v", err)
	}

	newStore := func(t *testing.T, entries map[string]any) *settings.Store {
		t.Helper()
		store := settings.New(key)
		for k, v := range entries {
			if err := store.Set(k, v, false); err != nil {
				t.Fatalf("Set(%q) error = %v", k, err)
			}
		}
		return store
	}

	t.Run("https default", func(t *testing.T) {
		store := newStore(t, map[string]any{"host": "cloud.example.com", "port": 8443})
		got, err := cloudBaseURL(config.CloudConfig{TLSOnly: true}, store)
		if err != nil {
			t.Fatalf("cloudBaseURL() error = %v", err)
		}
		if got != "https://cloud.example.com:8443" {
			t.Errorf("base URL = %q", got)
		}
	})

	t.Run("default port", func(t *testing.T) {
		store := newStore(t, map[string]any{"host": "cloud.example.com"})
		got, err := cloudBaseURL(config.CloudConfig{TLSOnly: true}, store)
		if err != nil {
			t.Fatalf("cloudBaseURL() error = %v", err)
		}
		if got != "https://cloud.example.com:443" {
			t.Errorf("base URL = %q", got)
		}
	})

	t.Run("missing host", func(t *testing.T) {
		store := newStore(t, map[string]any{"port": 443})
		if _, err := cloudBaseURL(config.CloudConfig{TLSOnly: true}, store); err == nil {
			t.Error("cloudBaseURL() without host should fail")
		}
	})

	t.Run("plain http rejected when tls_only", func(t *testing.T) {
		store := newStore(t, map[string]any{"host": "cloud.example.com", "tls": false})
		if _, err := cloudBaseURL(config.CloudConfig{TLSOnly: true}, store); err == nil {
			t.Error("cloudBaseURL() should reject plain HTTP when tls_only is set")
		}
	})

	t.Run("plain http allowed when permitted", func(t *testing.T) {
		store := newStore(t, map[string]any{"host": "10.0.0.5", "port": 8080, "tls": false})
		got, err := cloudBaseURL(config.CloudConfig{TLSOnly: false}, store)
		if err != nil {
			t.Fatalf("cloudBaseURL() error = %v", err)
		}
		if got != "http://10.0.0.5:8080" {
			t.Errorf("base URL = %q", got)
		}
	})
}
