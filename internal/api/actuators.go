package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"extwing/pkg/actuator"
	"extwing/pkg/vessel"
)

// ActuatorHandler exposes the vessel snapshot and the host commands.
type ActuatorHandler struct {
	vessel *vessel.Vessel
}

func NewActuatorHandler(v *vessel.Vessel) *ActuatorHandler {
	return &ActuatorHandler{vessel: v}
}

// AutoRequest is the body of POST /api/actuators/{name}/auto.
// A missing extend_speed keeps the current threshold.
type AutoRequest struct {
	Enabled     bool     `json:"enabled"`
	ExtendSpeed *float64 `json:"extend_speed,omitempty"`
}

type commandResponse struct {
	Actuator string `json:"actuator"`
	Queued   string `json:"queued"`
}

// HandleStatus returns the last published snapshot.
// GET /api/status
func (h *ActuatorHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.vessel.Snapshot())
}

// HandlePart returns the snapshot section of one part.
// GET /api/actuators/{name}
func (h *ActuatorHandler) HandlePart(w http.ResponseWriter, r *http.Request) {
	snap := h.vessel.Snapshot()
	p, ok := snap.Part(r.PathValue("name"))
	if !ok {
		http.Error(w, "unknown actuator", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleAction queues extend, retract, toggle or toggle_auto.
// POST /api/actuators/{name}/{action}
func (h *ActuatorHandler) HandleAction(w http.ResponseWriter, r *http.Request) {
	name, action := r.PathValue("name"), r.PathValue("action")
	if err := h.vessel.Apply(name, action); err != nil {
		writeCommandError(w, err)
		return
	}
	slog.Debug("API: actuator action queued", "actuator", name, "action", action)
	writeJSON(w, http.StatusAccepted, commandResponse{Actuator: name, Queued: action})
}

// HandleAuto sets the auto-extend mode and threshold.
// POST /api/actuators/{name}/auto
func (h *ActuatorHandler) HandleAuto(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req AutoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var speed float64
	if req.ExtendSpeed != nil {
		speed = *req.ExtendSpeed
	} else {
		snap := h.vessel.Snapshot()
		p, ok := snap.Part(name)
		if !ok {
			http.Error(w, "unknown actuator", http.StatusNotFound)
			return
		}
		speed = p.ExtendSpeed
	}

	if err := h.vessel.SetAutoExtend(name, req.Enabled, speed); err != nil {
		writeCommandError(w, err)
		return
	}
	slog.Debug("API: auto-extend change queued", "actuator", name, "enabled", req.Enabled, "speed", speed)
	writeJSON(w, http.StatusAccepted, commandResponse{Actuator: name, Queued: "auto"})
}

func writeCommandError(w http.ResponseWriter, err error) {
	var ce *actuator.ConfigError
	switch {
	case errors.Is(err, vessel.ErrUnknownActuator):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, actuator.ErrUnknownAction), errors.As(err, &ce):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
