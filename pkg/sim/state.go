// Package sim provides simulator client interfaces and types.
package sim

// State represents the connection and activity state of the simulator.
type State string

const (
	// StateDisconnected indicates no connection to the simulator.
	StateDisconnected State = "disconnected"
	// StateInactive indicates connected but not simulating (menu/pause).
	StateInactive State = "inactive"
	// StateActive indicates connected and simulating.
	StateActive State = "active"
)

// Ticking reports whether the host loop should advance actuators in this state.
func (s State) Ticking() bool {
	return s == StateActive
}
