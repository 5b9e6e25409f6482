package config

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"extwing/pkg/actuator"
	"extwing/pkg/store"
)

// Provider defines the interface for accessing unified configuration.
type Provider interface {
	// General
	SimProvider(ctx context.Context) string
	TelemetryLoop(ctx context.Context) time.Duration

	// Mock Sim
	MockStartLat(ctx context.Context) float64
	MockStartLon(ctx context.Context) float64
	MockStartHeading(ctx context.Context) *float64
	MockDurationParked(ctx context.Context) time.Duration
	MockDurationTaxi(ctx context.Context) time.Duration
	MockDurationCruise(ctx context.Context) time.Duration

	// Actuators
	Actuators(ctx context.Context) []ActuatorConfig
	Extended(ctx context.Context, name string) bool
	AutoExtend(ctx context.Context, name string) bool
	ExtendSpeed(ctx context.Context, name string) float64
	SetActuatorState(ctx context.Context, name string, st ActuatorState) error

	// Raw access (for components that need deep access)
	AppConfig() *Config
}

// ActuatorState is the host-visible part of an actuator that survives restarts.
type ActuatorState struct {
	Extended    bool
	AutoExtend  bool
	ExtendSpeed float64
}

// UnifiedProvider implements Provider by bridging static Config and persistent Store.
type UnifiedProvider struct {
	base  *Config
	store store.StateStore
}

// NewProvider creates a new UnifiedProvider.
func NewProvider(base *Config, st store.StateStore) *UnifiedProvider {
	return &UnifiedProvider{
		base:  base,
		store: st,
	}
}

func (p *UnifiedProvider) AppConfig() *Config { return p.base }

// --- Implementations ---

func (p *UnifiedProvider) SimProvider(ctx context.Context) string {
	fallback := p.base.Sim.Provider
	if fallback == "" {
		fallback = "mock"
	}
	return p.getString(ctx, KeySimSource, fallback)
}

func (p *UnifiedProvider) TelemetryLoop(ctx context.Context) time.Duration {
	return p.getDuration(ctx, KeyTelemetryLoop, time.Duration(p.base.Ticker.TelemetryLoop))
}

func (p *UnifiedProvider) MockStartLat(ctx context.Context) float64 {
	return p.getFloat64(ctx, KeyMockLat, p.base.Sim.Mock.StartLat)
}

func (p *UnifiedProvider) MockStartLon(ctx context.Context) float64 {
	return p.getFloat64(ctx, KeyMockLon, p.base.Sim.Mock.StartLon)
}

func (p *UnifiedProvider) MockStartHeading(ctx context.Context) *float64 {
	if p.store == nil {
		return p.base.Sim.Mock.StartHeading
	}
	val, ok := p.store.GetState(ctx, KeyMockHeading)
	if !ok || val == "" {
		return p.base.Sim.Mock.StartHeading
	}
	var h float64
	if _, err := fmt.Sscanf(val, "%f", &h); err != nil {
		return p.base.Sim.Mock.StartHeading
	}
	return &h
}

func (p *UnifiedProvider) MockDurationParked(ctx context.Context) time.Duration {
	return p.getDuration(ctx, KeyMockDurParked, time.Duration(p.base.Sim.Mock.DurationParked))
}

func (p *UnifiedProvider) MockDurationTaxi(ctx context.Context) time.Duration {
	return p.getDuration(ctx, KeyMockDurTaxi, time.Duration(p.base.Sim.Mock.DurationTaxi))
}

func (p *UnifiedProvider) MockDurationCruise(ctx context.Context) time.Duration {
	return p.getDuration(ctx, KeyMockDurCruise, time.Duration(p.base.Sim.Mock.DurationCruise))
}

// Actuators returns the configured parts with persisted host fields applied.
func (p *UnifiedProvider) Actuators(ctx context.Context) []ActuatorConfig {
	out := make([]ActuatorConfig, len(p.base.Actuators))
	for i, a := range p.base.Actuators {
		a.Extended = p.Extended(ctx, a.Name)
		a.AutoExtend = p.AutoExtend(ctx, a.Name)
		a.ExtendSpeed = Speed(p.ExtendSpeed(ctx, a.Name))
		out[i] = a
	}
	return out
}

func (p *UnifiedProvider) Extended(ctx context.Context, name string) bool {
	var fallback bool
	if a, ok := p.actuator(name); ok {
		fallback = a.Extended
	}
	return p.getBool(ctx, ActuatorKey(name, FieldExtended), fallback)
}

func (p *UnifiedProvider) AutoExtend(ctx context.Context, name string) bool {
	var fallback bool
	if a, ok := p.actuator(name); ok {
		fallback = a.AutoExtend
	}
	return p.getBool(ctx, ActuatorKey(name, FieldAutoExtend), fallback)
}

func (p *UnifiedProvider) ExtendSpeed(ctx context.Context, name string) float64 {
	fallback := actuator.DefaultExtendSpeed
	if a, ok := p.actuator(name); ok {
		fallback = float64(a.ExtendSpeed)
	}
	v := p.getFloat64(ctx, ActuatorKey(name, FieldExtendSpeed), fallback)
	if !actuator.ValidThreshold(v) {
		return fallback
	}
	return v
}

// SetActuatorState persists the host fields of one actuator.
func (p *UnifiedProvider) SetActuatorState(ctx context.Context, name string, st ActuatorState) error {
	if p.store == nil {
		return nil
	}
	fields := []struct {
		field string
		val   string
	}{
		{FieldExtended, strconv.FormatBool(st.Extended)},
		{FieldAutoExtend, strconv.FormatBool(st.AutoExtend)},
		{FieldExtendSpeed, strconv.FormatFloat(st.ExtendSpeed, 'f', -1, 64)},
	}
	for _, f := range fields {
		if err := p.store.SetState(ctx, ActuatorKey(name, f.field), f.val); err != nil {
			return fmt.Errorf("failed to persist %s for %s: %w", f.field, name, err)
		}
	}
	return nil
}

func (p *UnifiedProvider) actuator(name string) (ActuatorConfig, bool) {
	for _, a := range p.base.Actuators {
		if a.Name == name {
			return a, true
		}
	}
	return ActuatorConfig{}, false
}

// --- Helpers ---

func (p *UnifiedProvider) getString(ctx context.Context, key, fallback string) string {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			return val
		}
	}
	return fallback
}

func (p *UnifiedProvider) getFloat64(ctx context.Context, key string, fallback float64) float64 {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				return f
			}
		}
	}
	return fallback
}

func (p *UnifiedProvider) getBool(ctx context.Context, key string, fallback bool) bool {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			return val == "true"
		}
	}
	return fallback
}

func (p *UnifiedProvider) getDuration(ctx context.Context, key string, fallback time.Duration) time.Duration {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			if dur, err := ParseDuration(val); err == nil {
				return dur
			}
		}
	}
	return fallback
}
