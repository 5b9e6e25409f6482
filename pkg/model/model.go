package model

import (
	"time"
)

// EventType classifies an actuator event.
type EventType string

const (
	EventExtendStarted  EventType = "extend_started"
	EventRetractStarted EventType = "retract_started"
	EventReversed       EventType = "reversed"
	EventExtended       EventType = "extended"
	EventRetracted      EventType = "retracted"
	EventAutoToggled    EventType = "auto_toggled"
	EventTransientInput EventType = "transient_input"
)

// ActuatorEvent records a notable change on one part of a vessel.
type ActuatorEvent struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	VesselID  string    `json:"vessel_id"`
	Actuator  string    `json:"actuator"`
	Type      EventType `json:"type"`
	Detail    string    `json:"detail,omitempty"`

	// Snapshot at the time of the event
	LiftMultiplier float64 `json:"lift_multiplier"`
	Speed          float64 `json:"speed"` // m/s, 0 when the sample was unusable
}

// Terminal reports whether the event marks the end of a transition.
func (e *ActuatorEvent) Terminal() bool {
	return e.Type == EventExtended || e.Type == EventRetracted
}
