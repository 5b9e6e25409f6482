package sim

import (
	"testing"
	"time"
)

func ground(speed float64, engine bool) Telemetry {
	return Telemetry{IsOnGround: true, EngineOn: engine, SurfaceVelocity: VelocityFrom(speed, 0, 0)}
}

func air(speed, vs float64) Telemetry {
	return Telemetry{IsOnGround: false, EngineOn: true, VerticalSpeed: vs, SurfaceVelocity: VelocityFrom(speed, 0, vs)}
}

func TestStageMachine(t *testing.T) {
	tests := []struct {
		name     string
		sequence []Telemetry
		expected string
	}{
		{
			name:     "Start Mid-Air (Initial)",
			sequence: []Telemetry{air(150, 0)},
			expected: StageAirborne,
		},
		{
			name:     "Start Mid-Air (Confirm Cruise)",
			sequence: []Telemetry{air(150, 0), air(150, 0), air(150, 0)},
			expected: StageCruise,
		},
		{
			name:     "Start On Ground (Confirm Parked)",
			sequence: []Telemetry{ground(0, false), ground(0, false), ground(0, false)},
			expected: StageParked,
		},
		{
			name: "Taxi",
			sequence: []Telemetry{
				ground(0, false),
				ground(8, true),
				ground(8, true),
			},
			expected: StageTaxi,
		},
		{
			name: "Take-off roll must be accelerating",
			sequence: []Telemetry{
				ground(8, true),
				ground(25, true),
				ground(35, true),
			},
			expected: StageTakeOff,
		},
		{
			name: "Climb after lift-off",
			sequence: []Telemetry{
				ground(60, true),
				air(70, 8),
				air(75, 8),
			},
			expected: StageClimb,
		},
		{
			name: "Landing rollout",
			sequence: []Telemetry{
				air(70, -4),
				ground(65, true),
				ground(55, true),
			},
			expected: StageLanded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := NewStageMachine()
			var last string
			for i := range tt.sequence {
				tel := tt.sequence[i]
				tel.SimTime = time.Duration(i) * time.Second
				last = sm.Update(&tel)
			}
			if last != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, last)
			}
		})
	}
}

func TestFormatStage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"parked", "Parked"},
		{"on_the_ground", "On The Ground"},
		{"take-off", "Take-Off"},
		{"climb", "Climb"},
		{"", "Unknown"},
	}

	for _, tt := range tests {
		if got := FormatStage(tt.in); got != tt.want {
			t.Errorf("FormatStage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
