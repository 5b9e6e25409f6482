package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"extwing/pkg/version"
)

// NewServer creates and configures the HTTP server.
// Optional handlers may be nil; their routes are then not registered.
func NewServer(addr string, acts *ActuatorHandler, stats *StatsHandler, events *EventsHandler, cfg *ConfigHandler, stream *StreamHandler, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	// 1. Health Endpoint
	mux.HandleFunc("GET /health", handleHealth)

	// 1b. Version Endpoint
	mux.HandleFunc("GET /api/version", handleVersion)

	// 2. Vessel Status & Commands
	mux.HandleFunc("GET /api/status", acts.HandleStatus)
	mux.HandleFunc("GET /api/actuators/{name}", acts.HandlePart)
	mux.HandleFunc("POST /api/actuators/{name}/auto", acts.HandleAuto)
	mux.HandleFunc("POST /api/actuators/{name}/{action}", acts.HandleAction)

	// 3. Stats Endpoint
	if stats != nil {
		mux.Handle("GET /api/stats", stats)
	}

	// 4. Event Log
	if events != nil {
		mux.HandleFunc("GET /api/events", events.HandleEvents)
	}
	mux.HandleFunc("GET /api/log/latest", handleLatestLog)
	mux.HandleFunc("GET /api/log/event", handleLatestEvent)

	// 5. Simulator Settings
	if cfg != nil {
		mux.HandleFunc("GET /api/config", cfg.HandleGetConfig)
		mux.HandleFunc("PUT /api/config", cfg.HandleSetConfig)
	}

	// 6. Live Snapshot Stream
	if stream != nil {
		mux.Handle("GET /api/ws", stream)
	}

	// 7. Shutdown Endpoint
	mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Graceful shutdown initiated via API")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Shutting down...")); err != nil {
			slog.Error("Failed to write shutdown response", "error", err)
		}
		// Call shutdown in a goroutine to allow response to flush
		go func() {
			time.Sleep(100 * time.Millisecond)
			if shutdown != nil {
				shutdown()
			}
		}()
	})

	return &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the snapshot stream is long-lived
		IdleTimeout: 60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}
