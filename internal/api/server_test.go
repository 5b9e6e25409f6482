package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"extwing/pkg/actuator"
	"extwing/pkg/model"
	"extwing/pkg/vessel"
)

type stubEvents struct {
	recent    []*model.ActuatorEvent
	since     []*model.ActuatorEvent
	err       error
	lastLimit int
	lastName  string
}

func (s *stubEvents) SaveEvent(ctx context.Context, e *model.ActuatorEvent) error { return nil }

func (s *stubEvents) GetRecentEvents(ctx context.Context, limit int) ([]*model.ActuatorEvent, error) {
	s.lastLimit = limit
	return s.recent, s.err
}

func (s *stubEvents) GetEventsSince(ctx context.Context, a string, since time.Time) ([]*model.ActuatorEvent, error) {
	s.lastName = a
	return s.since, s.err
}

func newTestVessel(t *testing.T) *vessel.Vessel {
	t.Helper()
	left, err := actuator.NewController("wing_left", actuator.DefaultConfig(actuator.KindControl, 1.0))
	require.NoError(t, err)
	canard, err := actuator.NewController("canard", actuator.DefaultConfig(actuator.KindRigid, 0.5))
	require.NoError(t, err)
	v, err := vessel.New([]vessel.Part{
		{Name: "wing_left", Controller: left},
		{Name: "canard", Controller: canard},
	}, nil)
	require.NoError(t, err)
	return v
}

func newTestServer(t *testing.T, ev *stubEvents) (*vessel.Vessel, http.Handler) {
	t.Helper()
	v := newTestVessel(t)
	srv := NewServer("127.0.0.1:0",
		NewActuatorHandler(v),
		NewStatsHandler(v.Tracker()),
		NewEventsHandler(ev),
		nil,
		NewStreamHandler(v),
		func() {})
	return v, srv.Handler
}

func TestServer_Routes(t *testing.T) {
	_, h := newTestServer(t, &stubEvents{})

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{"Health", "GET", "/health", "", http.StatusOK, "OK"},
		{"Version", "GET", "/api/version", "", http.StatusOK, `"version"`},
		{"Status", "GET", "/api/status", "", http.StatusOK, `"status":"none"`},
		{"Part", "GET", "/api/actuators/canard", "", http.StatusOK, `"kind":"rigid"`},
		{"PartUnknown", "GET", "/api/actuators/rudder", "", http.StatusNotFound, "unknown actuator"},
		{"Extend", "POST", "/api/actuators/wing_left/extend", "", http.StatusAccepted, `"queued":"extend"`},
		{"ToggleAuto", "POST", "/api/actuators/canard/toggle_auto", "", http.StatusAccepted, `"queued":"toggle_auto"`},
		{"ActionUnknownPart", "POST", "/api/actuators/rudder/extend", "", http.StatusNotFound, "unknown actuator"},
		{"ActionUnknown", "POST", "/api/actuators/wing_left/deploy", "", http.StatusBadRequest, "unknown action"},
		{"ActionWrongMethod", "GET", "/api/actuators/wing_left/extend", "", http.StatusMethodNotAllowed, ""},
		{"Auto", "POST", "/api/actuators/wing_left/auto", `{"enabled":true,"extend_speed":120}`, http.StatusAccepted, `"queued":"auto"`},
		{"AutoKeepSpeed", "POST", "/api/actuators/wing_left/auto", `{"enabled":false}`, http.StatusAccepted, ""},
		{"AutoOutOfRange", "POST", "/api/actuators/wing_left/auto", `{"enabled":true,"extend_speed":400}`, http.StatusBadRequest, "extend_speed"},
		{"AutoBadBody", "POST", "/api/actuators/wing_left/auto", `{`, http.StatusBadRequest, "invalid request body"},
		{"AutoUnknownPart", "POST", "/api/actuators/rudder/auto", `{"enabled":true}`, http.StatusNotFound, ""},
		{"Stats", "GET", "/api/stats", "", http.StatusOK, `"name":"canard"`},
		{"LatestLog", "GET", "/api/log/latest", "", http.StatusOK, `"log"`},
		{"LatestEvent", "GET", "/api/log/event", "", http.StatusOK, `"event"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestServer_CommandTakesEffectOnTick(t *testing.T) {
	v, h := newTestServer(t, &stubEvents{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("POST", "/api/actuators/wing_left/extend", http.NoBody))
	require.Equal(t, http.StatusAccepted, w.Code)

	before := v.Snapshot()
	p, _ := before.Part("wing_left")
	assert.False(t, p.Commanded, "queued until the next tick")

	v.Tick(context.Background(), 100*time.Millisecond, 0)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/status", http.NoBody))
	var snap vessel.Snapshot
	require.NoError(t, json.NewDecoder(w.Body).Decode(&snap))
	p, ok := snap.Part("wing_left")
	require.True(t, ok)
	assert.True(t, p.Commanded)
	assert.Equal(t, actuator.PhaseExtending, p.Phase)
	assert.Equal(t, actuator.StatusPartial, snap.Status)
}

func TestEventsHandler(t *testing.T) {
	ev := &stubEvents{
		recent: []*model.ActuatorEvent{{ID: 2, Actuator: "canard", Type: model.EventExtended}},
		since:  []*model.ActuatorEvent{{ID: 1, Actuator: "wing_left", Type: model.EventReversed}},
	}
	h := NewEventsHandler(ev)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantBody   string
		check      func(*testing.T)
	}{
		{"Recent", "", http.StatusOK, `"type":"extended"`, func(t *testing.T) { assert.Equal(t, defaultEventLimit, ev.lastLimit) }},
		{"Limit", "?limit=5", http.StatusOK, "", func(t *testing.T) { assert.Equal(t, 5, ev.lastLimit) }},
		{"LimitCapped", "?limit=100000", http.StatusOK, "", func(t *testing.T) { assert.Equal(t, maxEventLimit, ev.lastLimit) }},
		{"LimitInvalid", "?limit=-1", http.StatusBadRequest, "", nil},
		{"ByActuator", "?actuator=wing_left&since=2026-01-01T00:00:00Z", http.StatusOK, `"type":"reversed"`, func(t *testing.T) { assert.Equal(t, "wing_left", ev.lastName) }},
		{"SinceInvalid", "?actuator=wing_left&since=yesterday", http.StatusBadRequest, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.HandleEvents(w, httptest.NewRequest("GET", "/api/events"+tt.query, http.NoBody))
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
			if tt.check != nil {
				tt.check(t)
			}
		})
	}

	t.Run("EmptyIsArray", func(t *testing.T) {
		h := NewEventsHandler(&stubEvents{})
		w := httptest.NewRecorder()
		h.HandleEvents(w, httptest.NewRequest("GET", "/api/events", http.NoBody))
		assert.JSONEq(t, "[]", w.Body.String())
	})

	t.Run("StoreError", func(t *testing.T) {
		h := NewEventsHandler(&stubEvents{err: errors.New("locked")})
		w := httptest.NewRecorder()
		h.HandleEvents(w, httptest.NewRequest("GET", "/api/events", http.NoBody))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	assert.Nil(t, NewEventsHandler(nil))
}

func TestStreamHandler(t *testing.T) {
	v, h := newTestServer(t, &stubEvents{})
	ts := httptest.NewServer(h)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first vessel.Snapshot
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, uint64(0), first.Tick)
	assert.Len(t, first.Parts, 2)

	// Ticks published after the handshake reach the client; keep ticking until
	// the subscription is observed.
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			case <-time.After(10 * time.Millisecond):
				v.Tick(context.Background(), 100*time.Millisecond, 42)
			}
		}
	}()

	var next vessel.Snapshot
	require.NoError(t, conn.ReadJSON(&next))
	assert.Greater(t, next.Tick, uint64(0))
	assert.InDelta(t, 42, next.Speed, 1e-9)
}
