package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/cloudbridge/internal/cloud"
	"github.com/nerrad567/cloudbridge/internal/device"
	"github.com/nerrad567/cloudbridge/internal/infrastructure/config"
	"github.com/nerrad567/cloudbridge/internal/infrastructure/influxdb"
	"github.com/nerrad567/cloudbridge/internal/infrastructure/mqtt"
	"github.com/nerrad567/cloudbridge/internal/session"
	"github.com/nerrad567/cloudbridge/internal/settings"
)

// Settings keys for the cloud account credentials.
const (
	settingUsername = "username"
	settingPassword = "password"
)

// eventTimeout bounds the background work done per device event
// (history insert, MQTT publish).
const eventTimeout = 5 * time.Second

// Logger defines the logging interface used by the Bridge.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Options carries the dependencies for a Bridge.
//
// MQTT and Influx are optional; a nil value disables that integration.
type Options struct {
	Config   config.CloudConfig
	Client   *cloud.Client
	Session  *session.Manager
	Settings *settings.Store
	Registry *device.Registry
	History  device.StateHistoryRepository
	MQTT     *mqtt.Client
	Influx   *influxdb.Client
	Logger   Logger
}

// Bridge runs the poll loop that keeps the local device view in sync
// with the cloud, and forwards commands in the other direction.
type Bridge struct {
	cfg      config.CloudConfig
	client   *cloud.Client
	session  *session.Manager
	settings *settings.Store
	registry *device.Registry
	history  device.StateHistoryRepository
	mqtt     *mqtt.Client
	influx   *influxdb.Client
	logger   Logger

	// mu guards the poll bookkeeping and serialises access to the
	// settings store, which is not thread-safe.
	mu          sync.Mutex
	lastPoll    time.Time
	lastPollErr error
}

// New creates a Bridge and wires it to registry events and, when
// configured, the MQTT command topic.
func New(opts Options) (*Bridge, error) {
	switch {
	case opts.Client == nil:
		return nil, fmt.Errorf("bridge: cloud client is required")
	case opts.Session == nil:
		return nil, fmt.Errorf("bridge: session manager is required")
	case opts.Settings == nil:
		return nil, fmt.Errorf("bridge: settings store is required")
	case opts.Registry == nil:
		return nil, fmt.Errorf("bridge: device registry is required")
	case opts.History == nil:
		return nil, fmt.Errorf("bridge: state history repository is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	b := &Bridge{
		cfg:      opts.Config,
		client:   opts.Client,
		session:  opts.Session,
		settings: opts.Settings,
		registry: opts.Registry,
		history:  opts.History,
		mqtt:     opts.MQTT,
		influx:   opts.Influx,
		logger:   logger,
	}

	b.registry.Subscribe(b.handleEvent)

	if b.mqtt != nil {
		topic := mqtt.Topics{}.AllDeviceSets()
		if err := b.mqtt.Subscribe(topic, byte(1), b.handleSetRequest); err != nil {
			return nil, fmt.Errorf("subscribing to %s: %w", topic, err)
		}
	}

	return b, nil
}

// Run executes the poll loop until the context is cancelled.
//
// An initial authentication and poll happen immediately; afterwards the
// loop ticks at the configured interval. Poll failures are logged and
// retried on the next tick.
func (b *Bridge) Run(ctx context.Context) error {
	b.logger.Info("bridge starting", "poll_interval", b.cfg.GetPollInterval().String())

	b.tick(ctx)

	ticker := time.NewTicker(b.cfg.GetPollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("bridge stopping")
			return nil
		case <-ticker.C:
			b.tick(ctx)
		}
	}
}

// tick refreshes the session if needed and runs one poll cycle.
func (b *Bridge) tick(ctx context.Context) {
	if _, ok := b.session.Token(); !ok || b.session.NeedsRefresh() {
		if err := b.authenticate(ctx); err != nil {
			b.recordPoll(err)
			b.logger.Error("authentication failed", "error", err)
			return
		}
	}

	if err := b.pollOnce(ctx); err != nil {
		b.recordPoll(err)
		b.logger.Error("poll failed", "error", err)
		return
	}
	b.recordPoll(nil)
}

// authenticate logs in with the credentials from the settings store.
func (b *Bridge) authenticate(ctx context.Context) error {
	b.mu.Lock()
	username := b.settings.GetString(settingUsername, "")
	password := b.settings.GetString(settingPassword, "")
	b.mu.Unlock()

	if username == "" || password == "" {
		return ErrMissingCredentials
	}

	if _, err := b.session.Authenticate(ctx, username, password); err != nil {
		return err
	}
	b.logger.Info("authenticated with cloud")
	return nil
}

// pollOnce fetches the full device list and reconciles the registry.
func (b *Bridge) pollOnce(ctx context.Context) error {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, b.cfg.GetRequestTimeout())
	defer cancel()

	devices, err := b.client.ListDevices(reqCtx)
	if err != nil {
		return err
	}

	changed, err := b.registry.Sync(ctx, devices)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)
	b.logger.Debug("poll complete",
		"devices", len(devices),
		"changed", changed,
		"duration_ms", elapsed.Milliseconds(),
	)

	if b.influx != nil {
		b.influx.WritePollCycle(elapsed, len(devices), changed)
	}
	return nil
}

// Command forwards a state change to the cloud and applies the result
// locally. The returned state is the cloud's view after the write.
//
// Source identifies the origin of the command (api, mqtt) and is
// recorded in the state history.
func (b *Bridge) Command(ctx context.Context, deviceID string, state cloud.DeviceState, source string) (cloud.DeviceState, error) {
	if state.Equal(cloud.DeviceState{}) {
		return cloud.DeviceState{}, ErrInvalidCommand
	}

	reqCtx, cancel := context.WithTimeout(ctx, b.cfg.GetRequestTimeout())
	defer cancel()

	applied, err := b.client.SetDeviceState(reqCtx, deviceID, state)
	if err != nil {
		return cloud.DeviceState{}, err
	}

	if err := b.registry.ApplyState(ctx, deviceID, *applied, source); err != nil {
		// The cloud accepted the write; a stale local cache corrects
		// itself on the next poll.
		b.logger.Warn("applying state locally failed", "device_id", deviceID, "error", err)
	}

	return *applied, nil
}

// handleSetRequest processes an inbound MQTT set request.
func (b *Bridge) handleSetRequest(topic string, payload []byte) error {
	deviceID := mqtt.DeviceIDFromTopic(topic)
	if deviceID == "" {
		return fmt.Errorf("unrecognised set topic %q", topic)
	}

	var state cloud.DeviceState
	if err := json.Unmarshal(payload, &state); err != nil {
		return fmt.Errorf("decoding set payload for %s: %w", deviceID, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.GetRequestTimeout())
	defer cancel()

	if _, err := b.Command(ctx, deviceID, state, device.SourceMQTT); err != nil {
		return fmt.Errorf("forwarding set for %s: %w", deviceID, err)
	}
	return nil
}

// handleEvent fans a registry event out to history, MQTT, and telemetry.
func (b *Bridge) handleEvent(ev device.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	switch ev.Type {
	case device.EventAdded, device.EventStateChanged:
		if err := b.history.RecordStateChange(ctx, ev.Device.ID, ev.Device.State, ev.Source); err != nil {
			b.logger.Warn("recording state history failed", "device_id", ev.Device.ID, "error", err)
		}
		b.publishState(ev.Device)
		b.writeTelemetry(ev.Device)

	case device.EventAvailabilityChanged:
		b.publishAvailability(ev.Device)
		if b.influx != nil {
			b.influx.WriteDeviceAvailability(ev.Device.ID, ev.Device.Online())
		}

	case device.EventRemoved:
		// Clear the retained state so stale values don't linger.
		if b.mqtt != nil {
			topic := mqtt.Topics{}.DeviceState(ev.Device.ID)
			if err := b.mqtt.Publish(topic, nil, byte(1), true); err != nil {
				b.logger.Warn("clearing retained state failed", "device_id", ev.Device.ID, "error", err)
			}
		}
	}
}

// publishState publishes the device state to its retained MQTT topic.
func (b *Bridge) publishState(d device.Device) {
	if b.mqtt == nil {
		return
	}

	payload, err := json.Marshal(d.State)
	if err != nil {
		b.logger.Error("marshalling device state failed", "device_id", d.ID, "error", err)
		return
	}

	topic := mqtt.Topics{}.DeviceState(d.ID)
	if err := b.mqtt.PublishRetained(topic, payload); err != nil {
		b.logger.Warn("publishing device state failed", "device_id", d.ID, "error", err)
	}
}

// publishAvailability publishes an online/offline transition.
func (b *Bridge) publishAvailability(d device.Device) {
	if b.mqtt == nil {
		return
	}

	status := cloud.StatusOffline
	if d.Online() {
		status = cloud.StatusOnline
	}

	topic := mqtt.Topics{}.DeviceAvailability(d.ID)
	if err := b.mqtt.PublishRetained(topic, []byte(status)); err != nil {
		b.logger.Warn("publishing availability failed", "device_id", d.ID, "error", err)
	}
}

// writeTelemetry records numeric state fields in InfluxDB.
func (b *Bridge) writeTelemetry(d device.Device) {
	if b.influx == nil {
		return
	}

	if d.State.Brightness != nil {
		b.influx.WriteDeviceMetric(d.ID, "brightness", float64(*d.State.Brightness))
	}
	if d.State.ColorTemperature != nil {
		b.influx.WriteDeviceMetric(d.ID, "color_temperature", float64(*d.State.ColorTemperature))
	}
	if d.State.Hue != nil {
		b.influx.WriteDeviceMetric(d.ID, "hue", *d.State.Hue)
	}
	if d.State.Saturation != nil {
		b.influx.WriteDeviceMetric(d.ID, "saturation", *d.State.Saturation)
	}
}

// recordPoll updates the poll bookkeeping exposed via Status.
func (b *Bridge) recordPoll(err error) {
	b.mu.Lock()
	b.lastPoll = time.Now().UTC()
	b.lastPollErr = err
	b.mu.Unlock()
}

// Status is a snapshot of bridge health for the status endpoint.
type Status struct {
	Authenticated  bool      `json:"authenticated"`
	TokenExpiresAt time.Time `json:"token_expires_at,omitzero"`
	DeviceCount    int       `json:"device_count"`
	LastPoll       time.Time `json:"last_poll,omitzero"`
	LastPollError  string    `json:"last_poll_error,omitempty"`
	MQTTConnected  bool      `json:"mqtt_connected"`
}

// Status reports the current bridge health.
func (b *Bridge) Status() Status {
	s := Status{
		DeviceCount: b.registry.Count(),
	}

	if err := b.session.ValidateAuthenticated(); err == nil {
		s.Authenticated = true
	}
	if token, ok := b.session.Token(); ok {
		s.TokenExpiresAt = token.ExpiresAt
	}
	if b.mqtt != nil {
		s.MQTTConnected = b.mqtt.IsConnected()
	}

	b.mu.Lock()
	s.LastPoll = b.lastPoll
	if b.lastPollErr != nil {
		s.LastPollError = b.lastPollErr.Error()
	}
	b.mu.Unlock()

	return s
}

// IsUnknownDevice reports whether err means the device does not exist,
// either in the cloud or in the local cache.
func IsUnknownDevice(err error) bool {
	return errors.Is(err, cloud.ErrDeviceNotFound) || errors.Is(err, device.ErrNotFound)
}
