// Package probe runs the startup checks that decide whether the actuator host
// may begin ticking.
package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"extwing/pkg/sim"
)

// DefaultTimeout bounds a single check when the probe sets none.
const DefaultTimeout = 5 * time.Second

// CheckFunc returns nil if the check passes.
type CheckFunc func(ctx context.Context) error

// Probe is a single startup check.
type Probe struct {
	Name     string
	Check    CheckFunc
	Critical bool // A failing critical probe aborts startup.
	Timeout  time.Duration
}

// Result holds the outcome of a single probe.
type Result struct {
	Probe    Probe
	Error    error
	Duration time.Duration
}

// Run executes the probes in order, each under its own timeout.
func Run(ctx context.Context, probes []Probe) []Result {
	results := make([]Result, len(probes))

	for i, p := range probes {
		timeout := p.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		checkCtx, cancel := context.WithTimeout(ctx, timeout)
		start := time.Now()
		err := p.Check(checkCtx)
		cancel()

		results[i] = Result{Probe: p, Error: err, Duration: time.Since(start)}
	}
	return results
}

// AnalyzeResults logs a summary line per probe and joins the critical failures.
func AnalyzeResults(results []Result) error {
	var critical []error

	slog.Info("Startup Checks Summary", "probes", len(results))
	for _, r := range results {
		status := "PASS"
		if r.Error != nil {
			status = "FAIL"
		}
		msg := fmt.Sprintf("[%s] %-20s (%v)", status, r.Probe.Name, r.Duration.Round(time.Millisecond))

		if r.Error == nil {
			slog.Info(msg)
			continue
		}
		slog.Error(msg, "error", r.Error, "critical", r.Probe.Critical)
		if r.Probe.Critical {
			critical = append(critical, fmt.Errorf("%s: %w", r.Probe.Name, r.Error))
		}
	}

	return errors.Join(critical...)
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Database checks that the state database answers.
func Database(p Pinger) Probe {
	return Probe{
		Name:     "State Database",
		Critical: true,
		Check:    p.PingContext,
	}
}

// Telemetry checks that the simulator delivers a sample with a usable speed.
// A paused simulator passes; the host loop waits for it.
func Telemetry(c sim.Client) Probe {
	return Probe{
		Name:     "Simulator Telemetry",
		Critical: true,
		Check: func(ctx context.Context) error {
			if !c.GetState().Ticking() {
				return nil
			}
			tel, err := c.GetTelemetry(ctx)
			if err != nil {
				return err
			}
			if math.IsNaN(tel.SurfaceSpeed()) {
				// The trigger tolerates dropouts; only report it
				slog.Warn("Probe: first telemetry sample has no velocity")
			}
			return nil
		},
	}
}
