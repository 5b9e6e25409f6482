package vessel

import (
	"context"
	"time"

	"extwing/pkg/sim"
)

type telemetryInfo struct {
	simTime  time.Duration
	stage    string
	lat, lon float64
}

// Run polls the simulator every interval and ticks the vessel with the
// simulated time elapsed since the previous sample. It returns when ctx is done.
func (v *Vessel) Run(ctx context.Context, client sim.Client, interval time.Duration) error {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last time.Duration
	primed := false
	wasTicking := true

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		state := client.GetState()
		if !state.Ticking() {
			if wasTicking {
				v.logger.Info("Vessel: simulation paused", "state", state)
			}
			wasTicking = false
			// Time spent paused is not applied to the ramps
			primed = false
			continue
		}
		if !wasTicking {
			v.logger.Info("Vessel: simulation resumed")
			wasTicking = true
		}

		tel, err := client.GetTelemetry(ctx)
		if err != nil {
			v.logger.Warn("Vessel: telemetry unavailable", "error", err)
			continue
		}

		dt := tel.SimTime - last
		if !primed || dt < 0 {
			dt = 0
		}
		last = tel.SimTime
		primed = true

		v.tick(ctx, dt, tel.SurfaceSpeed(), &telemetryInfo{
			simTime: tel.SimTime,
			stage:   tel.FlightStage,
			lat:     tel.Position.Lat(),
			lon:     tel.Position.Lon(),
		})
	}
}
