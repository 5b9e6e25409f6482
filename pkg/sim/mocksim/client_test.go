package mocksim

import (
	"context"
	"math"
	"testing"
	"time"

	"extwing/pkg/sim"
)

const step = time.Duration(tickRateMs) * time.Millisecond

func testConfig() Config {
	heading := 90.0
	return Config{
		DurationParked: 1 * time.Second,
		DurationTaxi:   1 * time.Second,
		DurationCruise: 1 * time.Second,
		CruiseSpeed:    120,
		RotateSpeed:    60,
		StartHeading:   &heading,
	}
}

func waitForReq(t *testing.T, check func() bool, timeout time.Duration, msg string) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if check() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("Timeout waiting for: %s", msg)
}

func TestProfileCrossesThresholdBothWays(t *testing.T) {
	m := New(testConfig())
	ctx := context.Background()

	var wentFast, cameBack, landed bool
	for i := 0; i < 3000; i++ {
		m.Step(step)
		tel, _ := m.GetTelemetry(ctx)
		speed := tel.SurfaceSpeed()
		if speed > 100 {
			wentFast = true
		}
		if wentFast && speed < 100 {
			cameBack = true
		}
		if cameBack && m.Stage() == StageParked {
			landed = true
			break
		}
	}

	if !wentFast {
		t.Error("vehicle never exceeded 100 m/s")
	}
	if !cameBack {
		t.Error("vehicle never slowed below 100 m/s")
	}
	if !landed {
		t.Error("profile did not loop back to parked")
	}
}

func TestStageSequence(t *testing.T) {
	m := New(testConfig())

	var seen []string
	for i := 0; i < 3000; i++ {
		m.Step(step)
		s := m.Stage()
		if len(seen) == 0 || seen[len(seen)-1] != s {
			seen = append(seen, s)
		}
		if len(seen) > 1 && s == StageParked {
			break
		}
	}

	want := []string{StageParked, StageTaxiing, StageRoll, StageClimb, StageCruise, StageDescent, StageRollout, StageTaxiBack, StageParked}
	if len(seen) != len(want) {
		t.Fatalf("stages = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("stage[%d] = %s, want %s", i, seen[i], want[i])
		}
	}
}

func TestSimTimeAndPosition(t *testing.T) {
	m := New(testConfig())
	ctx := context.Background()

	start, _ := m.GetTelemetry(ctx)
	for i := 0; i < 30; i++ {
		m.Step(step)
	}
	tel, _ := m.GetTelemetry(ctx)

	if tel.SimTime != 3*time.Second {
		t.Errorf("SimTime = %v, want 3s", tel.SimTime)
	}
	if tel.Position.Lon() <= start.Position.Lon() {
		t.Errorf("expected eastward movement, got %v -> %v", start.Position, tel.Position)
	}
	if d := m.DistanceTravelled(); d <= 0 {
		t.Errorf("DistanceTravelled = %v, want > 0", d)
	}
	if !tel.IsOnGround {
		t.Error("expected vehicle on ground during taxi")
	}
}

func TestStepIgnoresNonPositiveDelta(t *testing.T) {
	m := New(testConfig())
	m.Step(0)
	m.Step(-time.Second)

	tel, _ := m.GetTelemetry(context.Background())
	if tel.SimTime != 0 {
		t.Errorf("SimTime = %v, want 0", tel.SimTime)
	}
}

func TestDropouts(t *testing.T) {
	cfg := testConfig()
	cfg.DropoutEvery = 5
	m := New(cfg)
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		m.Step(step)
		tel, _ := m.GetTelemetry(ctx)
		isNaN := math.IsNaN(tel.SurfaceSpeed())
		if want := i%5 == 0; isNaN != want {
			t.Errorf("step %d: NaN speed = %v, want %v", i, isNaN, want)
		}
	}
}

func TestPhysicsLoop(t *testing.T) {
	client := NewClient(testConfig())
	defer client.Close()

	ctx := context.Background()
	if client.GetState() != sim.StateActive {
		t.Errorf("GetState = %v, want active", client.GetState())
	}

	waitForReq(t, func() bool {
		tel, _ := client.GetTelemetry(ctx)
		return tel.SimTime > 0
	}, 2*time.Second, "simulated time advancing")

	waitForReq(t, func() bool {
		tel, _ := client.GetTelemetry(ctx)
		return tel.EngineOn && tel.GroundSpeed() > 0
	}, 3*time.Second, "Taxi State")
}

func TestCloseIsIdempotent(t *testing.T) {
	client := NewClient(testConfig())
	if err := client.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
