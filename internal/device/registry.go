package device

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/cloudbridge/internal/cloud"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
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

// Registry provides the thread-safe in-memory view of all known
// devices, backed by a Repository for persistence across restarts.
//
// The cache is populated on startup via Load() and reconciled against
// each poll result via Sync(). Subscribers are notified of every
// observed change.
//
// All public methods are thread-safe. Subscriber callbacks run
// synchronously on the calling goroutine and must not block.
type Registry struct {
	repo    Repository
	cache   map[string]*Device
	cacheMu sync.RWMutex

	subscribers []func(Event)
	subMu       sync.RWMutex

	logger Logger
}

// NewRegistry creates a new device registry.
// The repository is used for persistence; the registry adds caching.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:   repo,
		cache:  make(map[string]*Device),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Subscribe registers a callback invoked for every device change.
// Callbacks run synchronously; slow handlers delay event delivery.
func (r *Registry) Subscribe(fn func(Event)) {
	r.subMu.Lock()
	r.subscribers = append(r.subscribers, fn)
	r.subMu.Unlock()
}

// notify delivers an event to all subscribers.
func (r *Registry) notify(ev Event) {
	r.subMu.RLock()
	subs := r.subscribers
	r.subMu.RUnlock()

	for _, fn := range subs {
		fn(ev)
	}
}

// Load populates the cache from the repository.
// This should be called once on application startup, before the first
// poll, so the control API can serve the last known view immediately.
func (r *Registry) Load(ctx context.Context) error {
	devices, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading devices: %w", err)
	}

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	r.cache = make(map[string]*Device, len(devices))
	for i := range devices {
		d := devices[i]
		r.cache[d.ID] = d.DeepCopy()
	}

	r.logger.Info("device cache loaded", "count", len(devices))
	return nil
}

// Get retrieves a device by ID.
// Returns ErrNotFound if the device does not exist.
// The returned device is a deep copy; callers can safely modify it.
func (r *Registry) Get(id string) (*Device, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	cached, ok := r.cache[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cached.DeepCopy(), nil
}

// List retrieves all devices.
// The returned devices are deep copies; callers can safely modify them.
func (r *Registry) List() []Device {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	devices := make([]Device, 0, len(r.cache))
	for _, d := range r.cache {
		devices = append(devices, *d.DeepCopy())
	}
	return devices
}

// Count returns the number of cached devices.
func (r *Registry) Count() int {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()
	return len(r.cache)
}

// Sync reconciles the registry against a full poll result.
//
// New devices are added, changed devices updated, and devices missing
// from the poll removed. Every change is persisted, and subscribers
// receive one event per change. Returns the number of changes applied.
func (r *Registry) Sync(ctx context.Context, infos []cloud.DeviceInfo) (int, error) {
	seen := make(map[string]bool, len(infos))
	var events []Event

	r.cacheMu.Lock()
	for _, info := range infos {
		incoming := FromCloud(info)
		seen[incoming.ID] = true

		existing, ok := r.cache[incoming.ID]
		switch {
		case !ok:
			if err := r.repo.Upsert(ctx, &incoming); err != nil {
				r.cacheMu.Unlock()
				return len(events), fmt.Errorf("adding device %s: %w", incoming.ID, err)
			}
			r.cache[incoming.ID] = incoming.DeepCopy()
			events = append(events, Event{Type: EventAdded, Device: incoming, Source: SourcePoll})

		case !existing.State.Equal(incoming.State) || existing.Status != incoming.Status || existing.Name != incoming.Name:
			statusChanged := existing.Status != incoming.Status

			if err := r.repo.Upsert(ctx, &incoming); err != nil {
				r.cacheMu.Unlock()
				return len(events), fmt.Errorf("updating device %s: %w", incoming.ID, err)
			}
			stateChanged := !existing.State.Equal(incoming.State)
			r.cache[incoming.ID] = incoming.DeepCopy()

			if stateChanged {
				events = append(events, Event{Type: EventStateChanged, Device: incoming, Source: SourcePoll})
			}
			if statusChanged {
				events = append(events, Event{Type: EventAvailabilityChanged, Device: incoming, Source: SourcePoll})
			}
		}
	}

	// Devices no longer present in the cloud account.
	for id, existing := range r.cache {
		if seen[id] {
			continue
		}
		if err := r.repo.Delete(ctx, id); err != nil {
			r.cacheMu.Unlock()
			return len(events), fmt.Errorf("removing device %s: %w", id, err)
		}
		events = append(events, Event{Type: EventRemoved, Device: *existing.DeepCopy(), Source: SourcePoll})
		delete(r.cache, id)
	}
	r.cacheMu.Unlock()

	for _, ev := range events {
		r.logger.Debug("device change", "type", string(ev.Type), "id", ev.Device.ID)
		r.notify(ev)
	}

	return len(events), nil
}

// ApplyState records a state change produced by a successful command.
//
// The applied state comes from the cloud's PUT response and replaces
// the cached state wholesale. Subscribers are notified with the given
// source (command, mqtt).
func (r *Registry) ApplyState(ctx context.Context, id string, state cloud.DeviceState, source string) error {
	now := time.Now().UTC()

	r.cacheMu.Lock()
	cached, ok := r.cache[id]
	if !ok {
		r.cacheMu.Unlock()
		return ErrNotFound
	}

	updated := cached.DeepCopy()
	updated.State = state.Clone()
	updated.LastUpdated = now

	if err := r.repo.UpdateState(ctx, id, state, updated.Status, now); err != nil {
		r.cacheMu.Unlock()
		return err
	}
	r.cache[id] = updated
	event := Event{Type: EventStateChanged, Device: *updated.DeepCopy(), Source: source}
	r.cacheMu.Unlock()

	r.logger.Debug("device state applied", "id", id, "source", source)
	r.notify(event)
	return nil
}
