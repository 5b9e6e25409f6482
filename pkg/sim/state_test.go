package sim

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestState_Ticking(t *testing.T) {
	tests := []struct {
		state State
		want  bool
	}{
		{StateActive, true},
		{StateInactive, false},
		{StateDisconnected, false},
		{State(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.Ticking(); got != tt.want {
				t.Errorf("%q.Ticking() = %v, want %v", tt.state, got, tt.want)
			}
		})
	}
}

func TestTelemetry_SurfaceSpeed(t *testing.T) {
	tests := []struct {
		name    string
		v       mgl64.Vec3
		want    float64
		wantNaN bool
	}{
		{"At rest", mgl64.Vec3{}, 0, false},
		{"Level flight", mgl64.Vec3{30, 40, 0}, 50, false},
		{"Climbing", mgl64.Vec3{0, 3, 4}, 5, false},
		{"NaN component", mgl64.Vec3{math.NaN(), 1, 0}, 0, true},
		{"Inf component", mgl64.Vec3{0, math.Inf(1), 0}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tel := Telemetry{SurfaceVelocity: tt.v}
			got := tel.SurfaceSpeed()
			if tt.wantNaN {
				if !math.IsNaN(got) {
					t.Errorf("got %v, want NaN", got)
				}
				return
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVelocityFrom(t *testing.T) {
	v := VelocityFrom(100, 90, -5)
	if math.Abs(v.X()-100) > 1e-9 || math.Abs(v.Y()) > 1e-9 || v.Z() != -5 {
		t.Errorf("east heading: got %v", v)
	}

	tel := Telemetry{SurfaceVelocity: VelocityFrom(60, 0, 8)}
	if math.Abs(tel.GroundSpeed()-60) > 1e-9 {
		t.Errorf("GroundSpeed: got %v, want 60", tel.GroundSpeed())
	}
}
