package migrate

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("open duckdb: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadOrdersByVersion(t *testing.T) {
	migs, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(migs) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migs))
	}
	for i, m := range migs {
		if m.Version != i+1 {
			t.Errorf("migration %d has version %d (%s)", i, m.Version, m.Name)
		}
	}
}

func TestRunAppliesAllMigrations(t *testing.T) {
	db := openTestDB(t)
	if err := NewRunner(db, nil).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	tables := []string{
		"schema_migrations", "metric_cards", "alerts", "route_details", "corridors",
		"delay_locations", "delay_stats", "tsp_results", "scenarios", "report_templates",
	}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT table_name FROM information_schema.tables WHERE table_name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}

	var cards int
	if err := db.QueryRow("SELECT COUNT(*) FROM metric_cards").Scan(&cards); err != nil {
		t.Fatalf("count metric_cards: %v", err)
	}
	if cards != 8 {
		t.Errorf("metric_cards rows = %d, want 8", cards)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	r := NewRunner(db, nil)
	ctx := context.Background()

	if err := r.Run(ctx); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if err := r.Run(ctx); err != nil {
		t.Fatalf("second Run: %v", err)
	}

	cur, pending, err := r.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if cur != 3 || pending != 0 {
		t.Errorf("expected version=3 pending=0, got version=%d pending=%d", cur, pending)
	}
}

func TestStatusBeforeRun(t *testing.T) {
	db := openTestDB(t)
	cur, pending, err := NewRunner(db, nil).Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if cur != 0 || pending != 3 {
		t.Errorf("expected version=0 pending=3, got version=%d pending=%d", cur, pending)
	}
}
