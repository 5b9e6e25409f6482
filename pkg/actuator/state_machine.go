package actuator

import (
	"fmt"
	"time"
)

// Phase is the extension phase of an actuator.
type Phase int

const (
	PhaseRetracted Phase = iota
	PhaseExtending
	PhaseExtended
	PhaseRetracting
)

func (p Phase) String() string {
	switch p {
	case PhaseRetracted:
		return "retracted"
	case PhaseExtending:
		return "extending"
	case PhaseExtended:
		return "extended"
	case PhaseRetracting:
		return "retracting"
	}
	return "unknown"
}

// MarshalText lets the phase travel as a string in JSON.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	for _, c := range []Phase{PhaseRetracted, PhaseExtending, PhaseExtended, PhaseRetracting} {
		if c.String() == string(b) {
			*p = c
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}

// Moving reports whether the phase has a ramp in flight.
func (p Phase) Moving() bool {
	return p == PhaseExtending || p == PhaseRetracting
}

// ActuatorState is the observable state of one actuator.
type ActuatorState struct {
	Phase               Phase
	CommandedExtended   bool
	ActualExtended      bool
	Transitioning       bool
	LiftMultiplier      float64
	BaseLiftCoefficient float64
	Ramp                RampState
}

// EffectiveLiftCoefficient is the value the host writes to its lifting surface.
func (s ActuatorState) EffectiveLiftCoefficient() float64 {
	return s.BaseLiftCoefficient * (1 + s.LiftMultiplier)
}

// StateMachine tracks commanded vs reached extension and owns the single ramp
// that moves the lift multiplier between 0 and maxAdd.
// While the ramp moves, actual holds the end it is leaving, so actual equals
// commanded exactly when nothing is in flight.
type StateMachine struct {
	phase     Phase
	commanded bool
	actual    bool
	maxAdd    float64
	baseLift  float64
	ramp      *Ramp
}

// NewStateMachine creates a machine resting in the given state.
// baseLift is captured here and never changes afterwards.
func NewStateMachine(maxAdd, baseLift float64, duration time.Duration, extended bool) (*StateMachine, error) {
	if maxAdd < 0 || maxAdd > 1 {
		return nil, &ConfigError{Field: "lift_add", Err: ErrInvalidLiftAdd}
	}

	initial := 0.0
	phase := PhaseRetracted
	if extended {
		initial = maxAdd
		phase = PhaseExtended
	}

	ramp, err := NewRamp(duration, initial)
	if err != nil {
		return nil, err
	}

	return &StateMachine{
		phase:     phase,
		commanded: extended,
		actual:    extended,
		maxAdd:    maxAdd,
		baseLift:  baseLift,
		ramp:      ramp,
	}, nil
}

// Command records the desired state. The phase follows on the next Step.
// Repeating the current command is a no-op.
func (m *StateMachine) Command(extended bool) {
	m.commanded = extended
}

// Commanded returns the desired state.
func (m *StateMachine) Commanded() bool {
	return m.commanded
}

// Phase returns the current phase.
func (m *StateMachine) Phase() Phase {
	return m.phase
}

// Step reconciles the phase with the commanded state and advances the ramp.
// A command against a moving ramp reverses it from the current value.
func (m *StateMachine) Step(dt time.Duration) Phase {
	switch {
	case m.commanded && (m.phase == PhaseRetracted || m.phase == PhaseRetracting):
		m.phase = PhaseExtending
		m.actual = false
		m.ramp.Retarget(m.maxAdd)
	case !m.commanded && (m.phase == PhaseExtended || m.phase == PhaseExtending):
		m.phase = PhaseRetracting
		m.actual = true
		m.ramp.Retarget(0)
	}

	if !m.phase.Moving() {
		return m.phase
	}

	if _, done := m.ramp.Advance(dt); done {
		if m.phase == PhaseExtending {
			m.phase = PhaseExtended
			m.actual = true
		} else {
			m.phase = PhaseRetracted
			m.actual = false
		}
	}
	return m.phase
}

// State returns a snapshot of the machine.
func (m *StateMachine) State() ActuatorState {
	return ActuatorState{
		Phase:               m.phase,
		CommandedExtended:   m.commanded,
		ActualExtended:      m.actual,
		Transitioning:       m.phase.Moving(),
		LiftMultiplier:      m.ramp.Value(),
		BaseLiftCoefficient: m.baseLift,
		Ramp:                m.ramp.State(),
	}
}

// MaxAdd returns the lift multiplier reached when fully extended.
func (m *StateMachine) MaxAdd() float64 {
	return m.maxAdd
}
