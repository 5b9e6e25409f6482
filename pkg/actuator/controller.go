// Package actuator implements the extension state and lift interpolation engine
// of a retractable wing: a timed lift ramp, a speed hysteresis trigger and the
// vessel-wide aggregate status. Everything here is synchronous and advanced by
// the host through Controller.Tick.
package actuator

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Defaults for a freshly configured actuator.
const (
	DefaultTransitionTime = 4 * time.Second
	DefaultExtendSpeed    = 100.0

	// MinTickDelta and DefaultMaxTickDelta bound the delta time a single tick may
	// apply, so a host stall cannot complete a ramp in one step.
	MinTickDelta        = time.Millisecond
	DefaultMaxTickDelta = 500 * time.Millisecond
)

// Config holds the construction parameters of one actuator.
type Config struct {
	Kind                Kind
	BaseLiftCoefficient float64
	// LiftAdd is the additional lift fraction when extended. Zero selects the
	// default for Kind.
	LiftAdd        float64
	TransitionTime time.Duration
	// MaxTickDelta caps the delta applied per tick. Zero selects DefaultMaxTickDelta.
	MaxTickDelta time.Duration
	Extended     bool
	AutoExtend   bool
	ExtendSpeed  float64
}

// DefaultConfig returns the stock configuration for a surface kind.
func DefaultConfig(kind Kind, baseLift float64) Config {
	return Config{
		Kind:                kind,
		BaseLiftCoefficient: baseLift,
		LiftAdd:             kind.DefaultLiftAdd(),
		TransitionTime:      DefaultTransitionTime,
		MaxTickDelta:        DefaultMaxTickDelta,
		ExtendSpeed:         DefaultExtendSpeed,
	}
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if c.TransitionTime <= 0 {
		return &ConfigError{Field: "transition_time", Err: ErrInvalidDuration}
	}
	if c.MaxTickDelta < 0 {
		return &ConfigError{Field: "max_tick_delta", Err: ErrInvalidDuration}
	}
	if !ValidThreshold(c.ExtendSpeed) {
		return &ConfigError{Field: "extend_speed", Err: ErrThresholdOutOfRange}
	}
	if c.LiftAdd < 0 || c.LiftAdd > 1 {
		return &ConfigError{Field: "lift_add", Err: ErrInvalidLiftAdd}
	}
	return nil
}

// TickResult is what the host reads back after each tick.
type TickResult struct {
	EffectiveLiftCoefficient float64
	Transitioning            bool
	AggregateStatus          AggregateStatus

	Phase          Phase
	LiftMultiplier float64
	// Decision is the auto-extend edge fired this tick, if any.
	Decision Decision
	// TransientInput is set when auto mode received an unusable speed sample.
	TransientInput bool
}

// Controller is the per-part composition root: one state machine and one
// hysteresis trigger behind the single Tick entry point.
type Controller struct {
	name      string
	kind      Kind
	sm        *StateMachine
	trigger   *HysteresisTrigger
	auto      bool
	threshold float64
	maxDelta  time.Duration
	logger    *slog.Logger
}

// NewController validates cfg and builds a controller for the named part.
func NewController(name string, cfg Config) (*Controller, error) {
	if cfg.LiftAdd == 0 {
		cfg.LiftAdd = cfg.Kind.DefaultLiftAdd()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("actuator %q: %w", name, err)
	}

	sm, err := NewStateMachine(cfg.LiftAdd, cfg.BaseLiftCoefficient, cfg.TransitionTime, cfg.Extended)
	if err != nil {
		return nil, fmt.Errorf("actuator %q: %w", name, err)
	}

	maxDelta := cfg.MaxTickDelta
	if maxDelta == 0 {
		maxDelta = DefaultMaxTickDelta
	}

	trigger := NewHysteresisTrigger()
	trigger.Seed(cfg.Extended)

	return &Controller{
		name:      name,
		kind:      cfg.Kind,
		sm:        sm,
		trigger:   trigger,
		auto:      cfg.AutoExtend,
		threshold: cfg.ExtendSpeed,
		maxDelta:  maxDelta,
		logger:    slog.Default().With("actuator", name),
	}, nil
}

// SetLogger replaces the logger used for phase changes.
func (c *Controller) SetLogger(l *slog.Logger) {
	if l != nil {
		c.logger = l.With("actuator", c.name)
	}
}

func (c *Controller) Name() string { return c.name }

func (c *Controller) Kind() Kind { return c.kind }

// SetCommand sets the commanded state directly, bypassing the trigger.
func (c *Controller) SetCommand(extended bool) {
	c.sm.Command(extended)
}

// Toggle flips the commanded state.
func (c *Controller) Toggle() {
	c.sm.Command(!c.sm.Commanded())
}

// Extended returns the commanded flag, which is what siblings aggregate over.
func (c *Controller) Extended() bool {
	return c.sm.Commanded()
}

// AutoExtend returns the auto mode flag and its threshold.
func (c *Controller) AutoExtend() (enabled bool, threshold float64) {
	return c.auto, c.threshold
}

// SetAutoExtend enables or disables automatic mode. Enabling clears the speed
// history and arms the edge opposite to the commanded state, so the first
// crossing away from it fires.
func (c *Controller) SetAutoExtend(enabled bool, threshold float64) error {
	if !ValidThreshold(threshold) {
		return &ConfigError{Field: "extend_speed", Err: ErrThresholdOutOfRange}
	}
	if enabled && !c.auto {
		c.trigger.Reset()
		c.trigger.Seed(c.sm.Commanded())
	}
	c.auto = enabled
	c.threshold = threshold
	return nil
}

// Apply executes a host action event.
func (c *Controller) Apply(a Action) error {
	switch a {
	case ActionExtend:
		c.SetCommand(true)
	case ActionRetract:
		c.SetCommand(false)
	case ActionToggle:
		c.Toggle()
	case ActionToggleAuto:
		return c.SetAutoExtend(!c.auto, c.threshold)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a)
	}
	return nil
}

// Tick advances the actuator by dt. speed is only consulted in auto mode;
// siblings are the extended flags of every actuator on the vessel.
func (c *Controller) Tick(dt time.Duration, speed float64, siblings []bool) TickResult {
	dt = c.clampDelta(dt)

	var res TickResult
	if c.auto {
		d, ok := c.trigger.Observe(speed, c.threshold)
		if !ok {
			res.TransientInput = true
		}
		switch {
		case d.Extend:
			c.sm.Command(true)
		case d.Retract:
			c.sm.Command(false)
		}
		res.Decision = d
	}

	before := c.sm.Phase()
	after := c.sm.Step(dt)
	if before != after {
		c.logger.Debug("Actuator: phase change", "from", before, "to", after)
	}

	st := c.sm.State()
	res.EffectiveLiftCoefficient = st.EffectiveLiftCoefficient()
	res.Transitioning = st.Transitioning
	res.Phase = st.Phase
	res.LiftMultiplier = st.LiftMultiplier
	res.AggregateStatus = Aggregate(siblings)
	return res
}

// State returns a snapshot of the underlying state machine.
func (c *Controller) State() ActuatorState {
	return c.sm.State()
}

// Describe returns the part info lines shown before launch.
func (c *Controller) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Additional Lift: %.0f%%\n", c.sm.MaxAdd()*100)
	fmt.Fprintf(&b, "Auto-Extend: Up to %.0f m/s\n", MaxExtendSpeed)
	return b.String()
}

func (c *Controller) clampDelta(dt time.Duration) time.Duration {
	if dt < MinTickDelta {
		return MinTickDelta
	}
	if dt > c.maxDelta {
		return c.maxDelta
	}
	return dt
}
