package config

import (
	"context"
	"strings"
	"testing"
	"time"
)

// MockStateStore implements store.StateStore for testing.
type MockStateStore struct {
	data map[string]string
}

func NewMockStateStore() *MockStateStore {
	return &MockStateStore{data: make(map[string]string)}
}

func (m *MockStateStore) GetState(ctx context.Context, key string) (string, bool) {
	val, ok := m.data[key]
	return val, ok
}

func (m *MockStateStore) SetState(ctx context.Context, key, val string) error {
	m.data[key] = val
	return nil
}

func (m *MockStateStore) DeleteState(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *MockStateStore) ListStateKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func TestUnifiedProvider(t *testing.T) {
	ctx := context.Background()
	baseCfg := DefaultConfig()
	baseCfg.Sim.Provider = "test-sim"
	baseCfg.Ticker.TelemetryLoop = Duration(250 * time.Millisecond)
	baseCfg.Sim.Mock.StartLat = 45.0
	baseCfg.Sim.Mock.StartLon = 5.0
	h := 90.0
	baseCfg.Sim.Mock.StartHeading = &h
	baseCfg.Sim.Mock.DurationParked = Duration(60 * time.Second)
	baseCfg.Sim.Mock.DurationTaxi = Duration(30 * time.Second)
	baseCfg.Sim.Mock.DurationCruise = Duration(15 * time.Second)
	baseCfg.Actuators = []ActuatorConfig{
		{Name: "wing_left", Kind: "control", BaseLiftCoefficient: 1, ExtendSpeed: 120, AutoExtend: true},
		{Name: "canard", Kind: "rigid", BaseLiftCoefficient: 0.5, ExtendSpeed: 100, Extended: true},
	}

	store := NewMockStateStore()
	p := NewProvider(baseCfg, store)

	t.Run("Defaults_And_Fallbacks", func(t *testing.T) {
		if p.SimProvider(ctx) != "test-sim" {
			t.Errorf("expected test-sim, got %s", p.SimProvider(ctx))
		}
		if p.TelemetryLoop(ctx) != 250*time.Millisecond {
			t.Errorf("expected 250ms, got %v", p.TelemetryLoop(ctx))
		}
		if p.MockStartLat(ctx) != 45.0 {
			t.Errorf("expected 45.0, got %f", p.MockStartLat(ctx))
		}
		if p.MockStartLon(ctx) != 5.0 {
			t.Errorf("expected 5.0, got %f", p.MockStartLon(ctx))
		}
		if *p.MockStartHeading(ctx) != 90.0 {
			t.Errorf("expected 90.0, got %f", *p.MockStartHeading(ctx))
		}
		if p.MockDurationParked(ctx) != 60*time.Second {
			t.Errorf("expected 60s, got %v", p.MockDurationParked(ctx))
		}
		if p.MockDurationTaxi(ctx) != 30*time.Second {
			t.Errorf("expected 30s, got %v", p.MockDurationTaxi(ctx))
		}
		if p.MockDurationCruise(ctx) != 15*time.Second {
			t.Errorf("expected 15s, got %v", p.MockDurationCruise(ctx))
		}
		if !p.AutoExtend(ctx, "wing_left") {
			t.Error("expected wing_left auto extend from yaml")
		}
		if p.ExtendSpeed(ctx, "wing_left") != 120 {
			t.Errorf("expected 120, got %f", p.ExtendSpeed(ctx, "wing_left"))
		}
		if !p.Extended(ctx, "canard") {
			t.Error("expected canard extended from yaml")
		}
		if p.ExtendSpeed(ctx, "unknown") != 100 {
			t.Errorf("expected default 100 for unknown part, got %f", p.ExtendSpeed(ctx, "unknown"))
		}
		if p.AppConfig() != baseCfg {
			t.Error("expected baseCfg")
		}
	})

	t.Run("Store_Overrides", func(t *testing.T) {
		_ = store.SetState(ctx, KeySimSource, "mock")
		_ = store.SetState(ctx, KeyTelemetryLoop, "1s")
		_ = store.SetState(ctx, KeyMockLat, "50.0")
		_ = store.SetState(ctx, KeyMockHeading, "180")
		_ = store.SetState(ctx, KeyMockDurCruise, "2m")

		if p.SimProvider(ctx) != "mock" {
			t.Errorf("expected mock, got %s", p.SimProvider(ctx))
		}
		if p.TelemetryLoop(ctx) != time.Second {
			t.Errorf("expected 1s, got %v", p.TelemetryLoop(ctx))
		}
		if p.MockStartLat(ctx) != 50.0 {
			t.Errorf("expected 50.0, got %f", p.MockStartLat(ctx))
		}
		if *p.MockStartHeading(ctx) != 180.0 {
			t.Errorf("expected 180.0, got %f", *p.MockStartHeading(ctx))
		}
		if p.MockDurationCruise(ctx) != 2*time.Minute {
			t.Errorf("expected 2m, got %v", p.MockDurationCruise(ctx))
		}
	})

	t.Run("Actuator_State_Roundtrip", func(t *testing.T) {
		err := p.SetActuatorState(ctx, "wing_left", ActuatorState{Extended: true, AutoExtend: false, ExtendSpeed: 150.5})
		if err != nil {
			t.Fatalf("SetActuatorState: %v", err)
		}
		if store.data["actuator.wing_left.extend_speed"] != "150.5" {
			t.Errorf("unexpected stored speed %q", store.data["actuator.wing_left.extend_speed"])
		}

		if !p.Extended(ctx, "wing_left") {
			t.Error("expected persisted extended")
		}
		if p.AutoExtend(ctx, "wing_left") {
			t.Error("expected persisted auto extend off")
		}
		if p.ExtendSpeed(ctx, "wing_left") != 150.5 {
			t.Errorf("expected 150.5, got %f", p.ExtendSpeed(ctx, "wing_left"))
		}

		parts := p.Actuators(ctx)
		if len(parts) != 2 {
			t.Fatalf("expected 2 actuators, got %d", len(parts))
		}
		if !parts[0].Extended || parts[0].AutoExtend || parts[0].ExtendSpeed != 150.5 {
			t.Errorf("wing_left overrides not applied: %+v", parts[0])
		}
		if baseCfg.Actuators[0].ExtendSpeed != 120 {
			t.Error("Actuators must not mutate the base config")
		}
	})

	t.Run("Invalid_Persisted_Speed_Falls_Back", func(t *testing.T) {
		_ = store.SetState(ctx, ActuatorKey("canard", FieldExtendSpeed), "999")
		if p.ExtendSpeed(ctx, "canard") != 100 {
			t.Errorf("expected fallback 100, got %f", p.ExtendSpeed(ctx, "canard"))
		}
	})
}

func TestUnifiedProvider_NilStore(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(DefaultConfig(), nil)

	if p.SimProvider(ctx) != "mock" {
		t.Errorf("expected mock, got %s", p.SimProvider(ctx))
	}
	if err := p.SetActuatorState(ctx, "wing_left", ActuatorState{Extended: true}); err != nil {
		t.Errorf("SetActuatorState without store: %v", err)
	}
	if p.Extended(ctx, "wing_left") {
		t.Error("expected yaml default without store")
	}
	if p.MockStartHeading(ctx) != nil {
		t.Error("expected nil heading by default")
	}
}
