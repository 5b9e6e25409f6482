package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"extwing/pkg/db"
	"extwing/pkg/model"
)

// Store defines the repository interface.
// Consumers should depend on specific sub-interfaces when possible.
type Store interface {
	StateStore
	EventStore

	// Close closes the store connection.
	Close() error
}

// SQLite DATETIME text layout, matching CURRENT_TIMESTAMP.
const timeLayout = "2006-01-02 15:04:05"

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- State ---

func (s *SQLiteStore) GetState(ctx context.Context, key string) (string, bool) {
	var val sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT value FROM persistent_state WHERE key = ?", key).Scan(&val)
	if err != nil {
		return "", false
	}
	return val.String, true
}

func (s *SQLiteStore) SetState(ctx context.Context, key, val string) error {
	query := `INSERT OR REPLACE INTO persistent_state (key, value, created_at) VALUES (?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, key, val, time.Now().UTC().Format(timeLayout))
	return err
}

func (s *SQLiteStore) DeleteState(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM persistent_state WHERE key = ?", key)
	return err
}

func (s *SQLiteStore) ListStateKeys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key FROM persistent_state WHERE key LIKE ? ESCAPE '\\' ORDER BY key", escapeLike(prefix)+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// --- Events ---

func (s *SQLiteStore) SaveEvent(ctx context.Context, e *model.ActuatorEvent) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	query := `INSERT INTO actuator_events (vessel_id, actuator, type, detail, lift_multiplier, speed, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, query,
		e.VesselID, e.Actuator, string(e.Type), e.Detail,
		e.LiftMultiplier, e.Speed, e.Timestamp.UTC().Format(timeLayout),
	)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		e.ID = id
	}
	return nil
}

func (s *SQLiteStore) GetRecentEvents(ctx context.Context, limit int) ([]*model.ActuatorEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, vessel_id, actuator, type, detail, lift_multiplier, speed, created_at
			  FROM actuator_events ORDER BY id DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *SQLiteStore) GetEventsSince(ctx context.Context, actuator string, since time.Time) ([]*model.ActuatorEvent, error) {
	query := `SELECT id, vessel_id, actuator, type, detail, lift_multiplier, speed, created_at
			  FROM actuator_events WHERE actuator = ? AND created_at >= ? ORDER BY id ASC`
	rows, err := s.db.QueryContext(ctx, query, actuator, since.UTC().Format(timeLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]*model.ActuatorEvent, error) {
	var results []*model.ActuatorEvent
	for rows.Next() {
		var e model.ActuatorEvent
		var vesselID, detail sql.NullString
		var lift, speed sql.NullFloat64
		var typ string
		var created any
		if err := rows.Scan(&e.ID, &vesselID, &e.Actuator, &typ, &detail, &lift, &speed, &created); err != nil {
			return nil, err
		}
		e.Type = model.EventType(typ)
		e.VesselID = vesselID.String
		e.Detail = detail.String
		e.LiftMultiplier = lift.Float64
		e.Speed = speed.Float64
		e.Timestamp = parseTime(created)
		results = append(results, &e)
	}
	if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return results, nil
}

// parseTime accepts the DATETIME column either as parsed by the driver or as text.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if ts, err := time.Parse(timeLayout, t); err == nil {
			return ts
		}
	case []byte:
		if ts, err := time.Parse(timeLayout, string(t)); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
