package actuator

import "math"

// MaxExtendSpeed is the upper bound of the auto-extend threshold in m/s.
const MaxExtendSpeed = 300.0

// SpeedSample is the speed pair the trigger compares against its threshold.
type SpeedSample struct {
	Current  float64
	Previous float64
}

// Decision is the outcome of one trigger evaluation.
// At most one of the two flags is set.
type Decision struct {
	Extend  bool
	Retract bool
}

// Fired reports whether the decision carries an edge.
func (d Decision) Fired() bool {
	return d.Extend || d.Retract
}

type edge int

const (
	edgeNone edge = iota
	edgeExtend
	edgeRetract
)

// HysteresisTrigger turns a stream of speed samples into extend/retract edges.
// The band between the previous and current sample is compared against the
// threshold, so a single noisy reading never flips the decision on its own.
type HysteresisTrigger struct {
	previous float64
	last     edge
}

// NewHysteresisTrigger creates a trigger with no speed history.
func NewHysteresisTrigger() *HysteresisTrigger {
	return &HysteresisTrigger{previous: math.NaN()}
}

// Reset forgets the speed history and the last edge.
func (h *HysteresisTrigger) Reset() {
	h.previous = math.NaN()
	h.last = edgeNone
}

// Seed marks the trigger as if the given edge had already fired.
// Used when the commanded state is known before the first sample.
func (h *HysteresisTrigger) Seed(extended bool) {
	if extended {
		h.last = edgeExtend
	} else {
		h.last = edgeRetract
	}
}

// Previous returns the stored sample, NaN before the first valid one.
func (h *HysteresisTrigger) Previous() float64 {
	return h.previous
}

// Observe feeds one speed reading. The first valid reading only primes the
// history. NaN or infinite readings are ignored and leave the history as is;
// ok is false in that case.
func (h *HysteresisTrigger) Observe(speed, threshold float64) (d Decision, ok bool) {
	if math.IsNaN(speed) || math.IsInf(speed, 0) {
		return Decision{}, false
	}
	if math.IsNaN(h.previous) {
		h.previous = speed
		return Decision{}, true
	}

	d = h.Evaluate(SpeedSample{Current: speed, Previous: h.previous}, threshold)

	// previous moves only after the decision for this tick exists
	h.previous = speed
	return d, true
}

// Evaluate applies the band rule to a sample and records the edge it fires.
// extend: threshold < max(sample), retract: threshold > min(sample). When the
// band straddles the threshold the direction of travel decides. An edge that
// already fired last time is suppressed.
func (h *HysteresisTrigger) Evaluate(s SpeedSample, threshold float64) Decision {
	if s.Current == s.Previous {
		return Decision{}
	}

	lo := math.Min(s.Current, s.Previous)
	hi := math.Max(s.Current, s.Previous)

	extend := threshold < hi
	retract := threshold > lo
	if extend && retract {
		rising := s.Current > s.Previous
		extend = rising
		retract = !rising
	}

	switch {
	case extend && h.last != edgeExtend:
		h.last = edgeExtend
		return Decision{Extend: true}
	case retract && h.last != edgeRetract:
		h.last = edgeRetract
		return Decision{Retract: true}
	}
	return Decision{}
}

// ValidThreshold reports whether v is an accepted auto-extend speed.
func ValidThreshold(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= MaxExtendSpeed
}
