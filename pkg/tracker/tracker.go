package tracker

import (
	"sync"
	"sync/atomic"
)

// Tracker tracks activity statistics per actuator.
type Tracker struct {
	mu    sync.RWMutex
	stats map[string]*ActuatorStats
}

// ActuatorStats holds counters for a specific actuator.
// Fields are accessed atomically.
type ActuatorStats struct {
	Extends          int64
	Retracts         int64
	Reversals        int64
	AutoEdges        int64
	TransientSamples int64
}

// New creates a new Tracker.
func New() *Tracker {
	return &Tracker{
		stats: make(map[string]*ActuatorStats),
	}
}

// getStats returns the stats object for an actuator, creating it if needed.
func (t *Tracker) getStats(name string) *ActuatorStats {
	t.mu.RLock()
	s, ok := t.stats[name]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// Double check
	if s, ok = t.stats[name]; ok {
		return s
	}
	s = &ActuatorStats{}
	t.stats[name] = s
	return s
}

// Register makes an actuator visible in snapshots before it has any activity.
func (t *Tracker) Register(name string) {
	t.getStats(name)
}

// TrackExtend counts a completed extension.
func (t *Tracker) TrackExtend(name string) {
	atomic.AddInt64(&t.getStats(name).Extends, 1)
}

func (t *Tracker) TrackRetract(name string) {
	atomic.AddInt64(&t.getStats(name).Retracts, 1)
}

func (t *Tracker) TrackReversal(name string) {
	atomic.AddInt64(&t.getStats(name).Reversals, 1)
}

func (t *Tracker) TrackAutoEdge(name string) {
	atomic.AddInt64(&t.getStats(name).AutoEdges, 1)
}

func (t *Tracker) TrackTransient(name string) {
	atomic.AddInt64(&t.getStats(name).TransientSamples, 1)
}

// Snapshot returns a copy of the current stats.
func (t *Tracker) Snapshot() map[string]ActuatorStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make(map[string]ActuatorStats, len(t.stats))
	for k, v := range t.stats {
		result[k] = ActuatorStats{
			Extends:          atomic.LoadInt64(&v.Extends),
			Retracts:         atomic.LoadInt64(&v.Retracts),
			Reversals:        atomic.LoadInt64(&v.Reversals),
			AutoEdges:        atomic.LoadInt64(&v.AutoEdges),
			TransientSamples: atomic.LoadInt64(&v.TransientSamples),
		}
	}
	return result
}
