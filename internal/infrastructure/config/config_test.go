package config

import (
	"os"
	"path/filepath"
	"testing"
)

// validAPIKey meets the 16-character minimum requirement.
const validAPIKey = "local-api-key-0123456789"

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.API.APIKey = validAPIKey
	return cfg
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
cloud:
  settings_path: "/tmp/settings.json"
  key_path: "/tmp/secret.key"
  user_agent: "cloudbridge/test"
  poll_interval: 15
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  enabled: true
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
api:
  host: "127.0.0.1"
  port: 8093
  api_key: "local-api-key-0123456789"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Cloud.SettingsPath != "/tmp/settings.json" {
		t.Errorf("Cloud.SettingsPath = %q, want %q", cfg.Cloud.SettingsPath, "/tmp/settings.json")
	}
	if cfg.Cloud.PollInterval != 15 {
		t.Errorf("Cloud.PollInterval = %d, want 15", cfg.Cloud.PollInterval)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if !cfg.MQTT.Enabled {
		t.Error("MQTT.Enabled = false, want true")
	}

	// Defaults survive for unspecified sections.
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want default info", cfg.Logging.Level)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
database:
  path: "/tmp/test.db"
api:
  port: 8093
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// No API key anywhere: must be rejected.
	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for missing api key, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing settings path",
			mutate:  func(c *Config) { c.Cloud.SettingsPath = "" },
			wantErr: true,
		},
		{
			name:    "missing key path",
			mutate:  func(c *Config) { c.Cloud.KeyPath = "" },
			wantErr: true,
		},
		{
			name:    "poll interval zero",
			mutate:  func(c *Config) { c.Cloud.PollInterval = 0 },
			wantErr: true,
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "invalid port low",
			mutate:  func(c *Config) { c.API.Port = 0 },
			wantErr: true,
		},
		{
			name:    "invalid port high",
			mutate:  func(c *Config) { c.API.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "missing API key",
			mutate:  func(c *Config) { c.API.APIKey = "" },
			wantErr: true,
		},
		{
			name:    "API key too short",
			mutate:  func(c *Config) { c.API.APIKey = "short" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		Cloud: CloudConfig{PollInterval: 15, RequestTimeout: 20},
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
	}

	if got := cfg.Cloud.GetPollInterval().Seconds(); got != 15 {
		t.Errorf("GetPollInterval() = %v, want 15", got)
	}
	if got := cfg.Cloud.GetRequestTimeout().Seconds(); got != 20 {
		t.Errorf("GetRequestTimeout() = %v, want 20", got)
	}
	if got := cfg.API.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}
	if got := cfg.API.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}
	if got := cfg.API.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("CLOUDBRIDGE_DATABASE_PATH", "/custom/path.db")
	t.Setenv("CLOUDBRIDGE_MQTT_HOST", "broker.lan")
	t.Setenv("CLOUDBRIDGE_API_KEY", "env-api-key-0123456789")
	t.Setenv("CLOUDBRIDGE_CLOUD_POLL_INTERVAL", "7")

	cfg := defaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q, want env override", cfg.Database.Path)
	}
	if cfg.MQTT.Broker.Host != "broker.lan" {
		t.Errorf("MQTT.Broker.Host = %q, want env override", cfg.MQTT.Broker.Host)
	}
	if cfg.API.APIKey != "env-api-key-0123456789" {
		t.Errorf("API.APIKey = %q, want env override", cfg.API.APIKey)
	}
	if cfg.Cloud.PollInterval != 7 {
		t.Errorf("Cloud.PollInterval = %d, want 7", cfg.Cloud.PollInterval)
	}
}
