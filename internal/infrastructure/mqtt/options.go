package mqtt

import (
	"crypto/tls"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/nerrad567/cloudbridge/internal/infrastructure/config"
)

const (
	// defaultConnectTimeout bounds the initial broker handshake.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout bounds the wait for a publish acknowledgment.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is how long pending operations get to
	// drain on disconnect, in milliseconds.
	defaultDisconnectQuiesce = 1000

	// defaultKeepAlive is the connection keepalive interval.
	defaultKeepAlive = 60 * time.Second

	// maxQoS is the highest QoS level the broker protocol defines.
	maxQoS = 2

	// tlsMinVersion applies when the broker connection uses TLS.
	tlsMinVersion = tls.VersionTLS12
)

// buildClientOptions maps the mqtt section of config.yaml onto paho
// client options: broker URL and scheme, client identity, optional
// credentials, clean-session mode, and auto-reconnect with the
// configured backoff bounds.
func buildClientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port))

	// An empty client_id gets a random suffix so two instances never
	// collide on the broker.
	clientID := cfg.Broker.ClientID
	if clientID == "" {
		clientID = "cloudbridge-" + uuid.NewString()[:8]
	}
	opts.SetClientID(clientID)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	// Start fresh on every connect; subscriptions are restored from the
	// client's own tracking map rather than broker session state.
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(time.Duration(cfg.Reconnect.InitialDelay) * time.Second)
	opts.SetMaxReconnectInterval(time.Duration(cfg.Reconnect.MaxDelay) * time.Second)

	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tlsMinVersion})
	}

	return opts
}

// configureLWT registers the Last Will and Testament the broker
// publishes if the bridge drops off without a clean disconnect, letting
// subscribers distinguish a crash from a graceful shutdown.
//
// Topic cloudbridge/system/status, QoS 1, retained so late subscribers
// still see the last known status.
func configureLWT(opts *pahomqtt.ClientOptions, clientID string) {
	willPayload := fmt.Sprintf(
		`{"status":"offline","client_id":"%s","reason":"unexpected_disconnect","timestamp":"%s"}`,
		clientID,
		time.Now().UTC().Format(time.RFC3339),
	)
	opts.SetWill(Topics{}.SystemStatus(), willPayload, 1, true)
}

// buildOnlinePayload creates the JSON payload for online status messages.
func buildOnlinePayload(clientID string) string {
	return fmt.Sprintf(
		`{"status":"online","client_id":"%s","timestamp":"%s"}`,
		clientID,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// buildOfflinePayload creates the JSON payload for graceful offline status.
func buildOfflinePayload(clientID string) string {
	return fmt.Sprintf(
		`{"status":"offline","client_id":"%s","reason":"graceful_shutdown","timestamp":"%s"}`,
		clientID,
		time.Now().UTC().Format(time.RFC3339),
	)
}
