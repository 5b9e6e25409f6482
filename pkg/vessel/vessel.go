// Package vessel hosts a set of extendable parts: it owns the tick loop that
// feeds them speed, fans their lift out to surfaces and indicators, and turns
// their phase changes into events.
package vessel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"extwing/pkg/actuator"
	"extwing/pkg/config"
	"extwing/pkg/logging"
	"extwing/pkg/model"
	"extwing/pkg/store"
	"extwing/pkg/tracker"
)

// ErrUnknownActuator is returned for host commands naming a part the vessel does not have.
var ErrUnknownActuator = errors.New("unknown actuator")

// StatePersister saves host-visible actuator fields across restarts.
type StatePersister interface {
	SetActuatorState(ctx context.Context, name string, st config.ActuatorState) error
}

type command struct {
	part   int
	action actuator.Action
	auto   *autoSetting
}

type autoSetting struct {
	enabled bool
	speed   float64
}

type partState struct {
	Part
	phase     actuator.Phase
	transient bool
	persisted config.ActuatorState
	indicator bool
	color     Color
}

// Vessel ticks every part with one shared sibling snapshot.
type Vessel struct {
	ID uuid.UUID

	parts []*partState
	index map[string]int

	tracker *tracker.Tracker
	events  store.EventStore
	persist StatePersister
	logger  *slog.Logger

	tickMu sync.Mutex
	ticks  uint64
	status actuator.AggregateStatus

	pendingMu sync.Mutex
	pending   []command

	snapMu sync.RWMutex
	snap   Snapshot

	subsMu sync.Mutex
	subs   map[int]chan Snapshot
	nextID int
}

// New creates a vessel from already built parts.
func New(parts []Part, tr *tracker.Tracker) (*Vessel, error) {
	if len(parts) == 0 {
		return nil, errors.New("vessel: no parts")
	}
	if tr == nil {
		tr = tracker.New()
	}

	v := &Vessel{
		ID:      uuid.New(),
		index:   make(map[string]int, len(parts)),
		tracker: tr,
		logger:  slog.Default(),
		subs:    make(map[int]chan Snapshot),
	}
	for i, p := range parts {
		if p.Controller == nil {
			return nil, fmt.Errorf("vessel: part %q has no controller", p.Name)
		}
		if _, dup := v.index[p.Name]; dup {
			return nil, fmt.Errorf("vessel: duplicate part %q", p.Name)
		}
		auto, speed := p.Controller.AutoExtend()
		v.index[p.Name] = i
		v.parts = append(v.parts, &partState{
			Part:  p,
			phase: p.Controller.State().Phase,
			persisted: config.ActuatorState{
				Extended:    p.Controller.Extended(),
				AutoExtend:  auto,
				ExtendSpeed: speed,
			},
		})
		tr.Register(p.Name)
	}
	v.status = actuator.Aggregate(v.flags())
	v.snap = v.buildSnapshot(nil, math.NaN())
	return v, nil
}

// FromConfig builds a vessel from the configured parts with persisted host
// fields applied. Surfaces and indicators are in-memory recorders.
func FromConfig(ctx context.Context, p config.Provider, tr *tracker.Tracker) (*Vessel, error) {
	cfg := p.AppConfig()
	var parts []Part
	for _, a := range p.Actuators(ctx) {
		cc, err := cfg.ControllerConfig(a)
		if err != nil {
			return nil, fmt.Errorf("actuator %q: %w", a.Name, err)
		}
		ctrl, err := actuator.NewController(a.Name, cc)
		if err != nil {
			return nil, err
		}
		parts = append(parts, Part{
			Name:       a.Name,
			Controller: ctrl,
			Surface:    &MemorySurface{},
			Indicator:  &MemoryIndicator{},
		})
	}

	v, err := New(parts, tr)
	if err != nil {
		return nil, err
	}
	v.SetPersister(p)
	return v, nil
}

// SetEventStore sets where actuator events are saved.
func (v *Vessel) SetEventStore(s store.EventStore) { v.events = s }

// SetPersister sets where changed host fields are saved.
func (v *Vessel) SetPersister(p StatePersister) { v.persist = p }

// SetLogger replaces the vessel logger and hands it to every controller.
func (v *Vessel) SetLogger(l *slog.Logger) {
	if l == nil {
		return
	}
	v.logger = l
	for _, ps := range v.parts {
		ps.Controller.SetLogger(l)
	}
}

func (v *Vessel) Tracker() *tracker.Tracker { return v.tracker }

// Names returns the part names in vessel order.
func (v *Vessel) Names() []string {
	names := make([]string, len(v.parts))
	for i, ps := range v.parts {
		names[i] = ps.Name
	}
	return names
}

// Apply queues a host action for the named part. It is safe to call from any
// goroutine; the action takes effect on the next tick.
func (v *Vessel) Apply(name, action string) error {
	i, ok := v.index[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownActuator, name)
	}
	a, err := actuator.ParseAction(action)
	if err != nil {
		return err
	}
	v.enqueue(command{part: i, action: a})
	return nil
}

// SetAutoExtend queues a change of the auto mode and threshold of a part.
func (v *Vessel) SetAutoExtend(name string, enabled bool, speed float64) error {
	i, ok := v.index[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownActuator, name)
	}
	if !actuator.ValidThreshold(speed) {
		return &actuator.ConfigError{Field: "extend_speed", Err: actuator.ErrThresholdOutOfRange}
	}
	v.enqueue(command{part: i, auto: &autoSetting{enabled: enabled, speed: speed}})
	return nil
}

func (v *Vessel) enqueue(c command) {
	v.pendingMu.Lock()
	v.pending = append(v.pending, c)
	v.pendingMu.Unlock()
}

func (v *Vessel) drain() []command {
	v.pendingMu.Lock()
	defer v.pendingMu.Unlock()
	cmds := v.pending
	v.pending = nil
	return cmds
}

// Snapshot returns the state published by the last tick.
func (v *Vessel) Snapshot() Snapshot {
	v.snapMu.RLock()
	defer v.snapMu.RUnlock()
	return v.snap
}

// Subscribe returns a channel receiving every published snapshot. Slow readers
// only see the latest one. The returned func unsubscribes.
func (v *Vessel) Subscribe() (<-chan Snapshot, func()) {
	v.subsMu.Lock()
	defer v.subsMu.Unlock()
	id := v.nextID
	v.nextID++
	ch := make(chan Snapshot, 1)
	v.subs[id] = ch
	return ch, func() {
		v.subsMu.Lock()
		defer v.subsMu.Unlock()
		delete(v.subs, id)
	}
}

func (v *Vessel) publish(s Snapshot) {
	v.snapMu.Lock()
	v.snap = s
	v.snapMu.Unlock()

	v.subsMu.Lock()
	defer v.subsMu.Unlock()
	for _, ch := range v.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}

// Tick advances every part by dt at the given surface speed (m/s, NaN when
// unavailable) and publishes the resulting snapshot.
func (v *Vessel) Tick(ctx context.Context, dt time.Duration, speed float64) Snapshot {
	return v.tick(ctx, dt, speed, nil)
}

func (v *Vessel) tick(ctx context.Context, dt time.Duration, speed float64, tel *telemetryInfo) Snapshot {
	v.tickMu.Lock()
	defer v.tickMu.Unlock()

	for _, c := range v.drain() {
		v.execute(ctx, c, speed)
	}

	// One sibling snapshot for the whole tick, self included
	flags := v.flags()
	v.status = actuator.Aggregate(flags)

	for _, ps := range v.parts {
		res := ps.Controller.Tick(dt, speed, flags)

		if ps.Surface != nil {
			ps.Surface.SetLiftCoefficient(res.EffectiveLiftCoefficient)
		}
		ps.indicator, ps.color = IndicatorFor(res.AggregateStatus)
		if ps.Indicator != nil {
			ps.Indicator.Set(ps.indicator, ps.color)
		}

		if res.Decision.Fired() {
			v.tracker.TrackAutoEdge(ps.Name)
			logging.Trace(v.logger, "Vessel: auto edge", "actuator", ps.Name, "extend", res.Decision.Extend, "speed", speed)
		}
		v.handleTransient(ctx, ps, res.TransientInput)

		for _, typ := range phaseEvents(ps.phase, res.Phase) {
			v.record(ctx, ps, typ, "", res.LiftMultiplier, speed)
		}
		ps.phase = res.Phase

		v.persistIfChanged(ctx, ps)
	}

	v.ticks++
	s := v.buildSnapshot(tel, speed)
	v.publish(s)
	return s
}

func (v *Vessel) execute(ctx context.Context, c command, speed float64) {
	ps := v.parts[c.part]
	ctrl := ps.Controller

	if c.auto != nil {
		wasAuto, _ := ctrl.AutoExtend()
		if err := ctrl.SetAutoExtend(c.auto.enabled, c.auto.speed); err != nil {
			v.logger.Warn("Vessel: rejected auto-extend change", "actuator", ps.Name, "error", err)
			return
		}
		if wasAuto != c.auto.enabled {
			v.record(ctx, ps, model.EventAutoToggled, onOff(c.auto.enabled), ctrl.State().LiftMultiplier, speed)
		}
		return
	}

	if err := ctrl.Apply(c.action); err != nil {
		v.logger.Warn("Vessel: rejected action", "actuator", ps.Name, "action", c.action, "error", err)
		return
	}
	if c.action == actuator.ActionToggleAuto {
		enabled, _ := ctrl.AutoExtend()
		v.record(ctx, ps, model.EventAutoToggled, onOff(enabled), ctrl.State().LiftMultiplier, speed)
	}
}

func (v *Vessel) handleTransient(ctx context.Context, ps *partState, transient bool) {
	if !transient {
		ps.transient = false
		return
	}
	v.tracker.TrackTransient(ps.Name)
	// Only the first sample of a dropout run becomes an event
	if !ps.transient {
		v.record(ctx, ps, model.EventTransientInput, "speed unavailable", ps.Controller.State().LiftMultiplier, math.NaN())
	}
	ps.transient = true
}

func (v *Vessel) record(ctx context.Context, ps *partState, typ model.EventType, detail string, lift, speed float64) {
	switch typ {
	case model.EventExtended:
		v.tracker.TrackExtend(ps.Name)
	case model.EventRetracted:
		v.tracker.TrackRetract(ps.Name)
	case model.EventReversed:
		v.tracker.TrackReversal(ps.Name)
	}

	if math.IsNaN(speed) || math.IsInf(speed, 0) {
		speed = 0
	}
	ev := &model.ActuatorEvent{
		Timestamp:      time.Now(),
		VesselID:       v.ID.String(),
		Actuator:       ps.Name,
		Type:           typ,
		Detail:         detail,
		LiftMultiplier: lift,
		Speed:          speed,
	}

	v.logger.Info("Vessel: actuator event", "actuator", ps.Name, "type", typ, "lift", lift)
	logging.LogEvent(ev)
	if v.events != nil {
		if err := v.events.SaveEvent(ctx, ev); err != nil {
			v.logger.Error("Vessel: failed to save event", "actuator", ps.Name, "error", err)
		}
	}
}

func (v *Vessel) persistIfChanged(ctx context.Context, ps *partState) {
	auto, speed := ps.Controller.AutoExtend()
	cur := config.ActuatorState{
		Extended:    ps.Controller.Extended(),
		AutoExtend:  auto,
		ExtendSpeed: speed,
	}
	if cur == ps.persisted {
		return
	}
	if v.persist != nil {
		if err := v.persist.SetActuatorState(ctx, ps.Name, cur); err != nil {
			// Retried on the next tick
			v.logger.Error("Vessel: failed to persist actuator state", "actuator", ps.Name, "error", err)
			return
		}
	}
	ps.persisted = cur
}

// phaseEvents lists the events implied by moving from prev to next in one tick.
func phaseEvents(prev, next actuator.Phase) []model.EventType {
	if prev == next {
		return nil
	}
	switch next {
	case actuator.PhaseExtending:
		if prev == actuator.PhaseRetracting {
			return []model.EventType{model.EventReversed}
		}
		return []model.EventType{model.EventExtendStarted}
	case actuator.PhaseRetracting:
		if prev == actuator.PhaseExtending {
			return []model.EventType{model.EventReversed}
		}
		return []model.EventType{model.EventRetractStarted}
	case actuator.PhaseExtended:
		switch prev {
		case actuator.PhaseRetracting:
			return []model.EventType{model.EventReversed, model.EventExtended}
		case actuator.PhaseRetracted:
			return []model.EventType{model.EventExtendStarted, model.EventExtended}
		}
		return []model.EventType{model.EventExtended}
	case actuator.PhaseRetracted:
		switch prev {
		case actuator.PhaseExtending:
			return []model.EventType{model.EventReversed, model.EventRetracted}
		case actuator.PhaseExtended:
			return []model.EventType{model.EventRetractStarted, model.EventRetracted}
		}
		return []model.EventType{model.EventRetracted}
	}
	return nil
}

func (v *Vessel) buildSnapshot(tel *telemetryInfo, speed float64) Snapshot {
	s := Snapshot{
		VesselID:  v.ID.String(),
		Tick:      v.ticks,
		UpdatedAt: time.Now(),
		Status:    v.status,
		Parts:     make([]PartSnapshot, 0, len(v.parts)),
	}
	if !math.IsNaN(speed) && !math.IsInf(speed, 0) {
		s.Speed = speed
		s.SpeedOK = true
	}
	if tel != nil {
		s.SimTime = tel.simTime
		s.Stage = tel.stage
		s.Lat = tel.lat
		s.Lon = tel.lon
	}

	for _, ps := range v.parts {
		st := ps.Controller.State()
		auto, threshold := ps.Controller.AutoExtend()
		s.Parts = append(s.Parts, PartSnapshot{
			Name:          ps.Name,
			Kind:          ps.Controller.Kind().String(),
			Phase:         st.Phase,
			Commanded:     st.CommandedExtended,
			Extended:      st.ActualExtended,
			Transitioning: st.Transitioning,
			LiftFraction:  st.LiftMultiplier,
			EffectiveLift: st.EffectiveLiftCoefficient(),
			RampProgress:  rampProgress(st.Ramp),
			AutoExtend:    auto,
			ExtendSpeed:   threshold,
			IndicatorOn:   ps.indicator,
			Indicator:     ps.color,
			Info:          ps.Controller.Describe(),
		})
	}
	return s
}

func (v *Vessel) flags() []bool {
	flags := make([]bool, len(v.parts))
	for i, ps := range v.parts {
		flags[i] = ps.Controller.Extended()
	}
	return flags
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
