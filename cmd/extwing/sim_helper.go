package main

import (
	"context"
	"fmt"
	"log/slog"

	"extwing/pkg/config"
	"extwing/pkg/sim"
	"extwing/pkg/sim/mocksim"
)

func initializeSimClient(ctx context.Context, p config.Provider) (sim.Client, error) {
	switch src := p.SimProvider(ctx); src {
	case "mock", "":
		cfg := p.AppConfig().Sim.Mock
		slog.Info("Sim Source: Mock")
		return mocksim.NewClient(mocksim.Config{
			DurationParked: p.MockDurationParked(ctx),
			DurationTaxi:   p.MockDurationTaxi(ctx),
			DurationCruise: p.MockDurationCruise(ctx),
			CruiseSpeed:    float64(cfg.CruiseSpeed),
			RotateSpeed:    float64(cfg.RotateSpeed),
			StartLat:       p.MockStartLat(ctx),
			StartLon:       p.MockStartLon(ctx),
			StartHeading:   p.MockStartHeading(ctx),
			DropoutEvery:   cfg.DropoutEvery,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported sim provider %q", src)
	}
}
