// cloudbridge - cloud device integration driver
//
// This is the main entry point for the cloudbridge service. It mirrors a
// cloud device API into a local registry and exposes it to the control
// processor over a local REST/WebSocket API, with optional MQTT and
// InfluxDB integrations.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/cloudbridge/migrations"

	"github.com/nerrad567/cloudbridge/internal/api"
	"github.com/nerrad567/cloudbridge/internal/bridge"
	"github.com/nerrad567/cloudbridge/internal/cloud"
	"github.com/nerrad567/cloudbridge/internal/device"
	"github.com/nerrad567/cloudbridge/internal/infrastructure/config"
	"github.com/nerrad567/cloudbridge/internal/infrastructure/database"
	"github.com/nerrad567/cloudbridge/internal/infrastructure/influxdb"
	"github.com/nerrad567/cloudbridge/internal/infrastructure/logging"
	"github.com/nerrad567/cloudbridge/internal/infrastructure/mqtt"
	"github.com/nerrad567/cloudbridge/internal/secrets"
	"github.com/nerrad567/cloudbridge/internal/session"
	"github.com/nerrad567/cloudbridge/internal/settings"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// defaultCloudPort is assumed when the settings store has no port.
const defaultCloudPort = 443

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting cloudbridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Load the settings key and the installation settings store.
	// The store holds the cloud account (host, port, username, password);
	// the password stays encrypted at rest.
	key, err := secrets.EnsureKey(cfg.Cloud.KeyPath)
	if err != nil {
		return fmt.Errorf("loading settings key: %w", err)
	}
	store := settings.New(key)
	if err := store.Load(cfg.Cloud.SettingsPath); err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if !store.Validate() {
		return fmt.Errorf("settings incomplete: provision host, port and username in %s", cfg.Cloud.SettingsPath)
	}
	log.Info("settings loaded", "path", cfg.Cloud.SettingsPath)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Initialise device registry
	deviceRepo := device.NewSQLiteRepository(db.DB)
	historyRepo := device.NewSQLiteStateHistoryRepository(db.DB)
	registry := device.NewRegistry(deviceRepo)
	registry.SetLogger(log)

	if loadErr := registry.Load(ctx); loadErr != nil {
		return fmt.Errorf("loading device registry: %w", loadErr)
	}
	log.Info("device registry initialised", "devices", registry.Count())

	// Build the cloud session and client from the settings store
	baseURL, err := cloudBaseURL(cfg.Cloud, store)
	if err != nil {
		return err
	}

	sess := session.New(baseURL+"/v1/auth/login", cfg.Cloud.UserAgent, nil)
	sess.SetLogger(log)

	cloudClient, err := cloud.New(cloud.Config{
		BaseURL:   baseURL,
		UserAgent: cfg.Cloud.UserAgent,
		Timeout:   cfg.Cloud.GetRequestTimeout(),
	}, sess)
	if err != nil {
		return fmt.Errorf("creating cloud client: %w", err)
	}
	log.Info("cloud client initialised", "base_url", baseURL)

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Create the bridge and start the poll loop
	br, err := bridge.New(bridge.Options{
		Config:   cfg.Cloud,
		Client:   cloudClient,
		Session:  sess,
		Settings: store,
		Registry: registry,
		History:  historyRepo,
		MQTT:     mqttClient,
		Influx:   influxClient,
		Logger:   log,
	})
	if err != nil {
		return fmt.Errorf("creating bridge: %w", err)
	}

	go func() {
		if runErr := br.Run(ctx); runErr != nil {
			log.Error("bridge stopped", "error", runErr)
		}
	}()
	log.Info("bridge started", "poll_interval", cfg.Cloud.GetPollInterval())

	// Start the local control API
	server, err := api.New(api.Deps{
		Config:   cfg.API,
		Logger:   log,
		Registry: registry,
		Bridge:   br,
		History:  historyRepo,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)
	// 4. Database

	log.Info("cloudbridge stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses CLOUDBRIDGE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("CLOUDBRIDGE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// cloudBaseURL builds the cloud API root from the settings store.
//
// The account host and port live in settings (provisioned per
// installation); the scheme is https unless the store explicitly sets
// tls=false, which is only honoured when the config allows plain HTTP.
func cloudBaseURL(cfg config.CloudConfig, store *settings.Store) (string, error) {
	host := store.GetString("host", "")
	if host == "" {
		return "", fmt.Errorf("cloud host not configured")
	}

	scheme := "https"
	if !store.GetBool("tls", true) {
		if cfg.TLSOnly {
			return "", fmt.Errorf("plain-HTTP cloud endpoint rejected: tls_only is enabled")
		}
		scheme = "http"
	}

	port := store.GetInt("port", defaultCloudPort)
	return fmt.Sprintf("%s://%s:%d", scheme, host, port), nil
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
