package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/cloudbridge/internal/bridge"
	"github.com/nerrad567/cloudbridge/internal/cloud"
	"github.com/nerrad567/cloudbridge/internal/device"
)

// handleListDevices returns all devices in the registry.
//
// Query parameters:
//   - type: filter by device type (switch, dimmer, fan)
//   - status: filter by availability (online, offline)
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices := s.registry.List()

	if typeFilter := r.URL.Query().Get("type"); typeFilter != "" {
		devices = filterDevices(devices, func(d device.Device) bool {
			return d.Type == typeFilter
		})
	}

	if statusFilter := r.URL.Query().Get("status"); statusFilter != "" {
		devices = filterDevices(devices, func(d device.Device) bool {
			return d.Status == statusFilter
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
}

// handleGetDevice returns a single device by ID.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dev, err := s.registry.Get(id)
	if err != nil {
		if errors.Is(err, device.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		writeInternalError(w, "failed to get device")
		return
	}

	writeJSON(w, http.StatusOK, dev)
}

// handleGetDeviceState returns the last known state for a device.
func (s *Server) handleGetDeviceState(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dev, err := s.registry.Get(id)
	if err != nil {
		if errors.Is(err, device.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		writeInternalError(w, "failed to get device")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"device_id":    dev.ID,
		"state":        dev.State,
		"status":       dev.Status,
		"last_updated": dev.LastUpdated,
	})
}

// handleSetDeviceState forwards a state write to the cloud via the bridge.
// The response carries the state the cloud reports after applying the write,
// which may differ from the request (clamped levels, rejected fields).
func (s *Server) handleSetDeviceState(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if s.bridge == nil {
		writeUnavailable(w, "bridge unavailable")
		return
	}

	var state cloud.DeviceState
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	applied, err := s.bridge.Command(r.Context(), id, state, device.SourceCommand)
	if err != nil {
		switch {
		case errors.Is(err, bridge.ErrInvalidCommand):
			writeBadRequest(w, "state must set at least one field")
		case bridge.IsUnknownDevice(err):
			writeNotFound(w, "device not found")
		default:
			s.logger.Warn("device command failed", "device_id", id, "error", err)
			writeUpstreamError(w, "cloud write failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"device_id": id,
		"state":     applied,
	})
}

// handleGetDeviceHistory returns recorded state changes for a device,
// newest first.
//
// Query parameters:
//   - limit: maximum entries to return (default 50, capped at 200)
func (s *Server) handleGetDeviceHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := s.registry.Get(id); err != nil {
		if errors.Is(err, device.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		writeInternalError(w, "failed to get device")
		return
	}

	if s.history == nil {
		writeUnavailable(w, "state history unavailable")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeBadRequest(w, "invalid limit")
			return
		}
		limit = parsed
	}

	entries, err := s.history.GetHistory(r.Context(), id, limit)
	if err != nil {
		writeInternalError(w, "failed to load device history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"device_id": id,
		"entries":   entries,
		"count":     len(entries),
	})
}

// filterDevices returns the devices matching the predicate.
func filterDevices(devices []device.Device, keep func(device.Device) bool) []device.Device {
	filtered := make([]device.Device, 0, len(devices))
	for _, d := range devices {
		if keep(d) {
			filtered = append(filtered, d)
		}
	}
	return filtered
}
