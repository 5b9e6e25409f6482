package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"extwing/pkg/model"
	"extwing/pkg/store"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// EventsHandler serves the persisted actuator event log.
type EventsHandler struct {
	store store.EventStore
}

// NewEventsHandler returns nil without a store so the route is skipped.
func NewEventsHandler(st store.EventStore) *EventsHandler {
	if st == nil {
		return nil
	}
	return &EventsHandler{store: st}
}

// HandleEvents returns recent events, newest first. With ?actuator= the
// events of that part since ?since= (RFC3339, default one hour) are returned
// oldest first.
// GET /api/events
func (h *EventsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		events []*model.ActuatorEvent
		err    error
	)
	if name := q.Get("actuator"); name != "" {
		since := time.Now().Add(-time.Hour)
		if s := q.Get("since"); s != "" {
			since, err = time.Parse(time.RFC3339, s)
			if err != nil {
				http.Error(w, "invalid since", http.StatusBadRequest)
				return
			}
		}
		events, err = h.store.GetEventsSince(r.Context(), name, since)
	} else {
		limit := defaultEventLimit
		if s := q.Get("limit"); s != "" {
			limit, err = strconv.Atoi(s)
			if err != nil || limit <= 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
		}
		if limit > maxEventLimit {
			limit = maxEventLimit
		}
		events, err = h.store.GetRecentEvents(r.Context(), limit)
	}
	if err != nil {
		slog.Error("EventsHandler: failed to load events", "error", err)
		http.Error(w, "failed to load events", http.StatusInternalServerError)
		return
	}

	if events == nil {
		events = []*model.ActuatorEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}
