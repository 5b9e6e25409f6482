package actuator

import "time"

// RampState is a read-only view of a ramp.
type RampState struct {
	StartValue    float64
	TargetValue   float64
	Elapsed       time.Duration
	TotalDuration time.Duration
	Active        bool
}

// Ramp moves a scalar from a start value to a target value over a fixed
// duration. It is advanced by the caller with elapsed simulated time and never
// blocks.
type Ramp struct {
	start   float64
	target  float64
	value   float64
	elapsed time.Duration
	total   time.Duration
	active  bool
}

// NewRamp creates an idle ramp resting at value.
func NewRamp(total time.Duration, value float64) (*Ramp, error) {
	if total <= 0 {
		return nil, &ConfigError{Field: "transition_time", Err: ErrInvalidDuration}
	}
	return &Ramp{
		start:  value,
		target: value,
		value:  value,
		total:  total,
	}, nil
}

// Retarget starts a fresh ramp from the current value toward target.
// An in-flight ramp is replaced, not queued.
func (r *Ramp) Retarget(target float64) {
	r.start = r.value
	r.target = target
	r.elapsed = 0
	r.active = r.start != r.target
}

// Advance moves the ramp forward by dt and returns the current value.
// complete is true once the target is reached; an idle ramp is complete.
func (r *Ramp) Advance(dt time.Duration) (value float64, complete bool) {
	if !r.active {
		return r.value, true
	}
	if dt > 0 {
		r.elapsed += dt
	}

	f := r.Fraction()
	if f >= 1 {
		r.value = r.target
		r.active = false
		return r.value, true
	}
	r.value = lerp(r.start, r.target, f)
	return r.value, false
}

// Fraction returns elapsed/total clamped to [0, 1].
func (r *Ramp) Fraction() float64 {
	if !r.active {
		return 1
	}
	return clamp01(r.elapsed.Seconds() / r.total.Seconds())
}

func (r *Ramp) Value() float64 { return r.value }

func (r *Ramp) Active() bool { return r.active }

func (r *Ramp) Duration() time.Duration { return r.total }

// State returns a snapshot of the ramp parameters.
func (r *Ramp) State() RampState {
	return RampState{
		StartValue:    r.start,
		TargetValue:   r.target,
		Elapsed:       r.elapsed,
		TotalDuration: r.total,
		Active:        r.active,
	}
}

func lerp(a, b, f float64) float64 {
	return a + (b-a)*f
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
