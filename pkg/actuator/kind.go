package actuator

import (
	"fmt"
	"strings"
)

// Kind distinguishes control surfaces from rigid lifting surfaces.
type Kind int

const (
	KindRigid Kind = iota
	KindControl
)

// Default additional lift fractions when fully extended.
const (
	DefaultControlLiftAdd = 0.75
	DefaultRigidLiftAdd   = 0.20
)

func (k Kind) String() string {
	if k == KindControl {
		return "control"
	}
	return "rigid"
}

// DefaultLiftAdd returns the stock lift add for the kind.
func (k Kind) DefaultLiftAdd() float64 {
	if k == KindControl {
		return DefaultControlLiftAdd
	}
	return DefaultRigidLiftAdd
}

// ParseKind accepts "control" or "rigid" (case-insensitive).
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "control", "control_surface":
		return KindControl, nil
	case "rigid", "rigid_surface", "":
		return KindRigid, nil
	}
	return KindRigid, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Action is a host command event (manual toggle or action group).
type Action string

const (
	ActionExtend     Action = "extend"
	ActionRetract    Action = "retract"
	ActionToggle     Action = "toggle"
	ActionToggleAuto Action = "toggle_auto"
)

// ParseAction validates an action name.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionExtend, ActionRetract, ActionToggle, ActionToggleAuto:
		return a, nil
	case "toggleauto", "toggle-auto":
		return ActionToggleAuto, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}
