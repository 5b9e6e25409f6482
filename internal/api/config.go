package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"extwing/pkg/config"
	"extwing/pkg/store"
)

// ConfigHandler reads and writes the simulator settings kept in the state store.
// The simulator client is built at startup, so writes apply on the next start.
type ConfigHandler struct {
	store   store.StateStore
	cfgProv config.Provider
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(st store.StateStore, cfg config.Provider) *ConfigHandler {
	if st == nil {
		return nil
	}
	return &ConfigHandler{store: st, cfgProv: cfg}
}

// ConfigResponse represents the config API response.
type ConfigResponse struct {
	SimSource          string   `json:"sim_source"`
	TelemetryLoop      string   `json:"telemetry_loop"`
	MockStartLat       float64  `json:"mock_start_lat"`
	MockStartLon       float64  `json:"mock_start_lon"`
	MockStartHeading   *float64 `json:"mock_start_heading"`
	MockDurationParked string   `json:"mock_duration_parked"`
	MockDurationTaxi   string   `json:"mock_duration_taxi"`
	MockDurationCruise string   `json:"mock_duration_cruise"`
}

// ConfigRequest represents a partial update; absent fields are left alone.
type ConfigRequest struct {
	SimSource          string   `json:"sim_source,omitempty"`
	TelemetryLoop      string   `json:"telemetry_loop,omitempty"`
	MockStartLat       *float64 `json:"mock_start_lat,omitempty"`
	MockStartLon       *float64 `json:"mock_start_lon,omitempty"`
	MockStartHeading   *float64 `json:"mock_start_heading,omitempty"`
	MockDurationParked string   `json:"mock_duration_parked,omitempty"`
	MockDurationTaxi   string   `json:"mock_duration_taxi,omitempty"`
	MockDurationCruise string   `json:"mock_duration_cruise,omitempty"`
}

var errUnknownSimSource = errors.New("unsupported sim_source")

// HandleGetConfig returns the effective simulator settings.
func (h *ConfigHandler) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.getConfigResponse(r.Context()))
}

func (h *ConfigHandler) getConfigResponse(ctx context.Context) ConfigResponse {
	return ConfigResponse{
		SimSource:          h.cfgProv.SimProvider(ctx),
		TelemetryLoop:      h.cfgProv.TelemetryLoop(ctx).String(),
		MockStartLat:       h.cfgProv.MockStartLat(ctx),
		MockStartLon:       h.cfgProv.MockStartLon(ctx),
		MockStartHeading:   h.cfgProv.MockStartHeading(ctx),
		MockDurationParked: h.cfgProv.MockDurationParked(ctx).String(),
		MockDurationTaxi:   h.cfgProv.MockDurationTaxi(ctx).String(),
		MockDurationCruise: h.cfgProv.MockDurationCruise(ctx).String(),
	}
}

// HandleSetConfig validates the whole request before writing any key.
func (h *ConfigHandler) HandleSetConfig(w http.ResponseWriter, r *http.Request) {
	defer func() { _ = r.Body.Close() }()

	var req ConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	updates, err := collectUpdates(&req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	for _, u := range updates {
		if err := h.store.SetState(ctx, u.key, u.val); err != nil {
			slog.Error("Failed to save state", "key", u.key, "error", err)
			http.Error(w, "failed to save config", http.StatusInternalServerError)
			return
		}
		slog.Debug("Config updated", u.key, u.val)
	}

	h.HandleGetConfig(w, r)
}

type stateUpdate struct {
	key string
	val string
}

func collectUpdates(req *ConfigRequest) ([]stateUpdate, error) {
	var out []stateUpdate

	if req.SimSource != "" {
		if req.SimSource != "mock" {
			return nil, fmt.Errorf("%w: %q", errUnknownSimSource, req.SimSource)
		}
		out = append(out, stateUpdate{config.KeySimSource, req.SimSource})
	}

	floats := []struct {
		key string
		val *float64
		min float64
		max float64
	}{
		{config.KeyMockLat, req.MockStartLat, -90, 90},
		{config.KeyMockLon, req.MockStartLon, -180, 180},
		{config.KeyMockHeading, req.MockStartHeading, 0, 360},
	}
	for _, f := range floats {
		if f.val == nil {
			continue
		}
		if *f.val < f.min || *f.val > f.max {
			return nil, fmt.Errorf("%s must be within [%v, %v]", f.key, f.min, f.max)
		}
		out = append(out, stateUpdate{f.key, strconv.FormatFloat(*f.val, 'f', -1, 64)})
	}

	durations := []struct {
		key string
		val string
	}{
		{config.KeyTelemetryLoop, req.TelemetryLoop},
		{config.KeyMockDurParked, req.MockDurationParked},
		{config.KeyMockDurTaxi, req.MockDurationTaxi},
		{config.KeyMockDurCruise, req.MockDurationCruise},
	}
	for _, d := range durations {
		if d.val == "" {
			continue
		}
		dur, err := config.ParseDuration(d.val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.key, err)
		}
		if dur <= 0 {
			return nil, fmt.Errorf("%s must be positive", d.key)
		}
		out = append(out, stateUpdate{d.key, d.val})
	}

	return out, nil
}
