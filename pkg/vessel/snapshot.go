package vessel

import (
	"time"

	"extwing/pkg/actuator"
)

// Snapshot is the published view of a vessel after a tick.
type Snapshot struct {
	VesselID  string                   `json:"vessel_id"`
	Tick      uint64                   `json:"tick"`
	UpdatedAt time.Time                `json:"updated_at"`
	SimTime   time.Duration            `json:"sim_time_ns"`
	Stage     string                   `json:"stage,omitempty"`
	Lat       float64                  `json:"lat"`
	Lon       float64                  `json:"lon"`
	Speed     float64                  `json:"speed"`
	SpeedOK   bool                     `json:"speed_valid"`
	Status    actuator.AggregateStatus `json:"status"`
	Parts     []PartSnapshot           `json:"parts"`
}

// PartSnapshot is the per-part section of a Snapshot.
type PartSnapshot struct {
	Name          string         `json:"name"`
	Kind          string         `json:"kind"`
	Phase         actuator.Phase `json:"phase"`
	Commanded     bool           `json:"commanded_extended"`
	Extended      bool           `json:"extended"`
	Transitioning bool           `json:"transitioning"`
	LiftFraction  float64        `json:"lift_multiplier"`
	EffectiveLift float64        `json:"effective_lift_coefficient"`
	RampProgress  float64        `json:"ramp_progress"`
	AutoExtend    bool           `json:"auto_extend"`
	ExtendSpeed   float64        `json:"extend_speed"`
	IndicatorOn   bool           `json:"indicator_on"`
	Indicator     Color          `json:"indicator_color"`
	Info          string         `json:"info"`
}

// Part returns the named part section.
func (s *Snapshot) Part(name string) (PartSnapshot, bool) {
	for _, p := range s.Parts {
		if p.Name == name {
			return p, true
		}
	}
	return PartSnapshot{}, false
}

func rampProgress(r actuator.RampState) float64 {
	if !r.Active || r.TotalDuration <= 0 {
		return 1
	}
	f := float64(r.Elapsed) / float64(r.TotalDuration)
	if f > 1 {
		return 1
	}
	return f
}
