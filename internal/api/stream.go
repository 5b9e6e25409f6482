package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"extwing/pkg/vessel"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Local dashboard only
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamHandler pushes every published vessel snapshot over a websocket.
// Clients that fall behind only receive the latest snapshot.
type StreamHandler struct {
	vessel *vessel.Vessel
}

func NewStreamHandler(v *vessel.Vessel) *StreamHandler {
	return &StreamHandler{vessel: v}
}

// ServeHTTP upgrades the connection and streams snapshots until the client
// goes away.
// GET /api/ws
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Stream: upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	snaps, unsubscribe := h.vessel.Subscribe()
	defer unsubscribe()

	// The reader only handles control frames; it ends when the peer closes.
	closed := make(chan struct{})
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	slog.Debug("Stream: client connected", "remote", r.RemoteAddr)

	// Current state first so the client does not wait for the next tick
	if err := writeSnapshot(conn, h.vessel.Snapshot()); err != nil {
		return
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			slog.Debug("Stream: client disconnected", "remote", r.RemoteAddr)
			return
		case <-r.Context().Done():
			return
		case s := <-snaps:
			if err := writeSnapshot(conn, s); err != nil {
				slog.Debug("Stream: write failed", "error", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func writeSnapshot(conn *websocket.Conn, s vessel.Snapshot) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(s)
}
