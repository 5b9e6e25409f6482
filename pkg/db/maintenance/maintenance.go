package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"extwing/pkg/db"
	"extwing/pkg/store"
)

// EventRetention is how long actuator events are kept.
const EventRetention = 30 * 24 * time.Hour

const actuatorPrefix = "actuator."

// Run executes all maintenance tasks: stale state cleanup and event pruning.
// known lists the actuator names present in the current configuration.
// It blocks until completion.
func Run(ctx context.Context, s store.StateStore, d *db.DB, known []string) error {
	slog.Info("Starting database maintenance...")

	if n, err := dropStaleState(ctx, s, known); err != nil {
		slog.Error("Stale state cleanup failed", "error", err)
	} else if n > 0 {
		slog.Info("Removed state of unconfigured actuators", "keys", n)
	}

	n, err := d.PruneEvents(EventRetention)
	if err != nil {
		// Pruning failures do not block startup
		slog.Error("Event pruning failed", "error", err)
	} else {
		slog.Info("Event pruning completed", "removed", n)
	}

	return nil
}

// dropStaleState deletes persisted fields of actuators that are no longer configured.
func dropStaleState(ctx context.Context, s store.StateStore, known []string) (int, error) {
	keep := make(map[string]bool, len(known))
	for _, name := range known {
		keep[name] = true
	}

	keys, err := s.ListStateKeys(ctx, actuatorPrefix)
	if err != nil {
		return 0, fmt.Errorf("failed to list actuator state: %w", err)
	}

	removed := 0
	for _, k := range keys {
		rest := strings.TrimPrefix(k, actuatorPrefix)
		dot := strings.LastIndex(rest, ".")
		if dot <= 0 {
			continue
		}
		if keep[rest[:dot]] {
			continue
		}
		if err := s.DeleteState(ctx, k); err != nil {
			return removed, fmt.Errorf("failed to delete %s: %w", k, err)
		}
		removed++
	}
	return removed, nil
}
