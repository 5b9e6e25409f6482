package store

import (
	"context"
	"time"

	"extwing/pkg/model"
)

// StateStore handles persistent application state.
type StateStore interface {
	GetState(ctx context.Context, key string) (string, bool)
	SetState(ctx context.Context, key, val string) error
	DeleteState(ctx context.Context, key string) error
	ListStateKeys(ctx context.Context, prefix string) ([]string, error)
}

// EventStore handles the actuator event log.
type EventStore interface {
	SaveEvent(ctx context.Context, e *model.ActuatorEvent) error
	GetRecentEvents(ctx context.Context, limit int) ([]*model.ActuatorEvent, error)
	GetEventsSince(ctx context.Context, actuator string, since time.Time) ([]*model.ActuatorEvent, error)
}
