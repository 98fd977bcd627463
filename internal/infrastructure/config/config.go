package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for cloudbridge.
// All configuration is loaded from YAML and can be overridden by
// environment variables.
//
// Note the split with internal/settings: this file describes how the
// daemon runs (paths, cadences, local endpoints); the settings store
// holds per-installation values, including encrypted credentials.
type Config struct {
	Cloud    CloudConfig    `yaml:"cloud"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	API      APIConfig      `yaml:"api"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// CloudConfig contains cloud integration settings.
//
// The cloud account itself (host, port, username, password) lives in the
// settings store; here we keep only the driver-side knobs.
type CloudConfig struct {
	// SettingsPath is the JSON settings store for this installation.
	SettingsPath string `yaml:"settings_path"`

	// KeyPath is the symmetric key file protecting encrypted settings.
	// Stored adjacent to the settings file by convention.
	KeyPath string `yaml:"key_path"`

	// UserAgent is the fixed User-Agent string the cloud expects.
	UserAgent string `yaml:"user_agent"`

	// PollInterval is the device sync cadence in seconds.
	PollInterval int `yaml:"poll_interval"`

	// RequestTimeout bounds each cloud request in seconds.
	RequestTimeout int `yaml:"request_timeout"`

	// TLSOnly rejects plain-HTTP cloud endpoints when true.
	// Disable only for test rigs pointing at local fixtures.
	TLSOnly bool `yaml:"tls_only"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
// The broker is optional; with Enabled false the bridge runs without
// the automation-bus integration.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB telemetry settings (optional).
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// APIConfig contains the local control API settings. This is the
// surface the control processor talks to.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	APIKey   string           `yaml:"api_key"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	WS       WebSocketConfig  `yaml:"websocket"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// WebSocketConfig contains the event feed settings.
type WebSocketConfig struct {
	Path         string `yaml:"path"`
	PingInterval int    `yaml:"ping_interval"`
	PongTimeout  int    `yaml:"pong_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment
// variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: CLOUDBRIDGE_SECTION_KEY
// For example: CLOUDBRIDGE_DATABASE_PATH, CLOUDBRIDGE_API_KEY
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the CLI
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Cloud: CloudConfig{
			SettingsPath:   "./data/settings.json",
			KeyPath:        "./data/secret.key",
			UserAgent:      "cloudbridge/1.0",
			PollInterval:   30,
			RequestTimeout: 30,
			TLSOnly:        true,
		},
		Database: DatabaseConfig{
			Path:        "./data/cloudbridge.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "cloudbridge",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8093,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
			WS: WebSocketConfig{
				Path:         "/ws",
				PingInterval: 30,
				PongTimeout:  10,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables follow the pattern:
// CLOUDBRIDGE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Cloud
	if v := os.Getenv("CLOUDBRIDGE_CLOUD_SETTINGS_PATH"); v != "" {
		cfg.Cloud.SettingsPath = v
	}
	if v := os.Getenv("CLOUDBRIDGE_CLOUD_KEY_PATH"); v != "" {
		cfg.Cloud.KeyPath = v
	}
	if v := os.Getenv("CLOUDBRIDGE_CLOUD_POLL_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cloud.PollInterval = n
		}
	}

	// Database
	if v := os.Getenv("CLOUDBRIDGE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("CLOUDBRIDGE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("CLOUDBRIDGE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("CLOUDBRIDGE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("CLOUDBRIDGE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// API key (IMPORTANT: prefer the environment over the file)
	if v := os.Getenv("CLOUDBRIDGE_API_KEY"); v != "" {
		cfg.API.APIKey = v
	}
}

// Validate checks the configuration for errors and security issues.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Cloud validation
	if c.Cloud.SettingsPath == "" {
		errs = append(errs, "cloud.settings_path is required")
	}
	if c.Cloud.KeyPath == "" {
		errs = append(errs, "cloud.key_path is required")
	}
	if c.Cloud.PollInterval < 1 {
		errs = append(errs, "cloud.poll_interval must be at least 1 second")
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// API validation. The control processor authenticates with a static
	// key; an empty or short key would leave device control open to
	// anything on the local network.
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}
	const minAPIKeyLength = 16
	if c.API.APIKey == "" {
		errs = append(errs, "api.api_key is required (set CLOUDBRIDGE_API_KEY environment variable)")
	} else if len(c.API.APIKey) < minAPIKeyLength {
		errs = append(errs, "api.api_key must be at least 16 characters")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetPollInterval returns the cloud poll cadence as a Duration.
func (c CloudConfig) GetPollInterval() time.Duration {
	return time.Duration(c.PollInterval) * time.Second
}

// GetRequestTimeout returns the cloud request timeout as a Duration.
func (c CloudConfig) GetRequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c APIConfig) GetReadTimeout() time.Duration {
	return time.Duration(c.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c APIConfig) GetWriteTimeout() time.Duration {
	return time.Duration(c.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c APIConfig) GetIdleTimeout() time.Duration {
	return time.Duration(c.Timeouts.Idle) * time.Second
}
