package maintenance

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"extwing/pkg/db"
	"extwing/pkg/store"
)

func TestMaintenance(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "maint_test.db")
	d, err := db.Init(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	s := store.NewSQLiteStore(d)
	ctx := context.Background()

	// State for one configured and one removed actuator
	for _, k := range []string{
		"actuator.wing_left.extended",
		"actuator.wing_left.extend_speed",
		"actuator.old_flap.extended",
		"sim_source",
	} {
		if err := s.SetState(ctx, k, "x"); err != nil {
			t.Fatal(err)
		}
	}

	oldAt := time.Now().Add(-40 * 24 * time.Hour).UTC().Format("2006-01-02 15:04:05")
	newAt := time.Now().Add(-1 * 24 * time.Hour).UTC().Format("2006-01-02 15:04:05")
	for _, at := range []string{oldAt, newAt} {
		if _, err := d.Exec("INSERT INTO actuator_events (actuator, type, created_at) VALUES (?, ?, ?)", "wing_left", "extended", at); err != nil {
			t.Fatal(err)
		}
	}

	if err := Run(ctx, s, d, []string{"wing_left", "canard"}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if _, ok := s.GetState(ctx, "actuator.old_flap.extended"); ok {
		t.Error("expected state of removed actuator to be dropped")
	}
	for _, k := range []string{"actuator.wing_left.extended", "actuator.wing_left.extend_speed", "sim_source"} {
		if _, ok := s.GetState(ctx, k); !ok {
			t.Errorf("expected %s to survive", k)
		}
	}

	var count int
	if err := d.QueryRow("SELECT count(*) FROM actuator_events").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 event after pruning, got %d", count)
	}
}
