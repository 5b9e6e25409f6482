package sim

import (
	"strings"
)

const (
	StageOnGround = "on_the_ground"
	StageParked   = "parked"
	StageTaxi     = "taxi"
	StageTakeOff  = "take-off"
	StageAirborne = "airborne"
	StageClimb    = "climb"
	StageCruise   = "cruise"
	StageDescend  = "descend"
	StageLanded   = "landed"
)

// Ground speed bands in m/s.
const (
	stationarySpeed = 0.5
	taxiMinSpeed    = 2.5
	taxiMaxSpeed    = 13.0
	rollSpeed       = 20.0
	trendSpeed      = 0.5
	climbRate       = 1.5
	levelRate       = 1.0
)

// StageMachine tracks the flight phase across telemetry ticks.
// A new stage must be detected on two consecutive ticks before it is adopted.
type StageMachine struct {
	current         string
	candidate       string
	confirmations   int
	wasAirborne     bool
	lastGroundSpeed float64
	isAccelerating  bool
	isDecelerating  bool
}

// NewStageMachine creates a stage machine in an uninitialized state.
func NewStageMachine() *StageMachine {
	return &StageMachine{}
}

// Update evaluates telemetry and returns the current stage.
func (m *StageMachine) Update(t *Telemetry) string {
	gs := t.GroundSpeed()

	if m.current != "" {
		m.isAccelerating = gs > m.lastGroundSpeed+trendSpeed
		m.isDecelerating = gs < m.lastGroundSpeed-trendSpeed
	}
	m.lastGroundSpeed = gs

	// First tick: no hysteresis
	if m.current == "" {
		if t.IsOnGround {
			m.current = StageOnGround
		} else {
			m.current = StageAirborne
			m.wasAirborne = true
		}
		return m.current
	}

	candidate := m.detectCandidate(t, gs)

	switch {
	case candidate == m.current:
		m.candidate = ""
		m.confirmations = 0
	case candidate == m.candidate:
		m.confirmations++
		if m.confirmations >= 1 {
			m.current = candidate
			m.candidate = ""
			m.confirmations = 0
		}
	default:
		m.candidate = candidate
		m.confirmations = 0
	}

	if !t.IsOnGround {
		m.wasAirborne = true
	}
	switch m.current {
	case StageTaxi, StageParked:
		m.wasAirborne = false
	}

	return m.current
}

func (m *StageMachine) Current() string {
	return m.current
}

func (m *StageMachine) detectCandidate(t *Telemetry, gs float64) string {
	if t.IsOnGround {
		return m.detectGroundCandidate(t, gs)
	}
	return m.detectAirborneCandidate(t)
}

func (m *StageMachine) detectGroundCandidate(t *Telemetry, gs float64) string {
	if m.wasAirborne && (m.isDecelerating || gs < rollSpeed) {
		return StageLanded
	}
	if gs > rollSpeed && m.isAccelerating {
		return StageTakeOff
	}
	if gs < stationarySpeed && !t.EngineOn {
		return StageParked
	}
	if t.EngineOn && gs >= taxiMinSpeed && gs <= taxiMaxSpeed {
		return StageTaxi
	}

	switch m.current {
	case StageParked, StageTaxi, StageTakeOff, StageLanded:
		return m.current
	}
	return StageOnGround
}

func (m *StageMachine) detectAirborneCandidate(t *Telemetry) string {
	switch {
	case t.VerticalSpeed > climbRate:
		return StageClimb
	case t.VerticalSpeed < -climbRate:
		return StageDescend
	case t.VerticalSpeed > -levelRate && t.VerticalSpeed < levelRate:
		return StageCruise
	}

	switch m.current {
	case StageAirborne, StageClimb, StageCruise, StageDescend, StageTakeOff:
		return m.current
	}
	return StageAirborne
}

// FormatStage returns a human-readable title for the stage.
func FormatStage(s string) string {
	if s == "" {
		return "Unknown"
	}
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' })
	for i, w := range words {
		words[i] = capitalizeHyphenated(w)
	}
	return strings.Join(words, " ")
}

func capitalizeHyphenated(w string) string {
	parts := strings.Split(w, "-")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "-")
}
