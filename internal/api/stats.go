package api

import (
	"net/http"
	"runtime"
	"sort"
	"sync"
	"time"

	"extwing/pkg/tracker"
)

type StatsHandler struct {
	tracker *tracker.Tracker
	started time.Time

	mu     sync.Mutex
	maxMem uint64
}

func NewStatsHandler(t *tracker.Tracker) *StatsHandler {
	return &StatsHandler{tracker: t, started: time.Now()}
}

type ActuatorStatsDTO struct {
	Name             string `json:"name"`
	Extends          int64  `json:"extends"`
	Retracts         int64  `json:"retracts"`
	Reversals        int64  `json:"reversals"`
	AutoEdges        int64  `json:"auto_edges"`
	TransientSamples int64  `json:"transient_samples"`
}

type DiagnosticsDTO struct {
	UptimeSec   int64  `json:"uptime_sec"`
	Goroutines  int    `json:"goroutines"`
	MemoryMB    uint64 `json:"memory_mb"`
	MemoryMaxMB uint64 `json:"memory_max_mb"`
}

type StatsResponse struct {
	Diagnostics DiagnosticsDTO     `json:"diagnostics"`
	Actuators   []ActuatorStatsDTO `json:"actuators"`
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snapshot := h.tracker.Snapshot()

	resp := StatsResponse{
		Diagnostics: h.gatherDiagnostics(),
		Actuators:   make([]ActuatorStatsDTO, 0, len(snapshot)),
	}
	for name, s := range snapshot {
		resp.Actuators = append(resp.Actuators, ActuatorStatsDTO{
			Name:             name,
			Extends:          s.Extends,
			Retracts:         s.Retracts,
			Reversals:        s.Reversals,
			AutoEdges:        s.AutoEdges,
			TransientSamples: s.TransientSamples,
		})
	}
	sort.Slice(resp.Actuators, func(i, j int) bool {
		return resp.Actuators[i].Name < resp.Actuators[j].Name
	})

	writeJSON(w, http.StatusOK, resp)
}

func (h *StatsHandler) gatherDiagnostics() DiagnosticsDTO {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	h.mu.Lock()
	if m.Sys > h.maxMem {
		h.maxMem = m.Sys
	}
	peak := h.maxMem
	h.mu.Unlock()

	return DiagnosticsDTO{
		UptimeSec:   int64(time.Since(h.started).Seconds()),
		Goroutines:  runtime.NumGoroutine(),
		MemoryMB:    bToMb(m.Sys),
		MemoryMaxMB: bToMb(peak),
	}
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
