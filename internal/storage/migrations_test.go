package storage

import (
	"context"
	"testing"
	"time"
)

func TestMigrations_Sequential(t *testing.T) {
	for i, m := range migrations {
		if m.Version != i+1 {
			t.Errorf("migration %d has version %d", i, m.Version)
		}
		if m.Description == "" {
			t.Errorf("migration %d has no description", m.Version)
		}
	}
	if last := migrations[len(migrations)-1].Version; last != ExpectedSchemaVersion {
		t.Errorf("last migration = %d, ExpectedSchemaVersion = %d", last, ExpectedSchemaVersion)
	}
}

func TestMigrate_ResumesFromPartialVersion(t *testing.T) {
	store, err := NewSQLiteStorage(t.TempDir() + "/partial.db")
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer func() { _ = store.Close() }()
	ctx := context.Background()

	tx, err := store.db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to begin: %v", err)
	}
	for _, m := range migrations[:2] {
		if err := m.Up(tx); err != nil {
			t.Fatalf("migration %d failed: %v", m.Version, err)
		}
	}
	if _, err := tx.Exec("PRAGMA user_version = 2"); err != nil {
		t.Fatalf("Failed to set version: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() from version 2 failed: %v", err)
	}
	version, err := store.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion() error: %v", err)
	}
	if version != ExpectedSchemaVersion {
		t.Errorf("version = %d, want %d", version, ExpectedSchemaVersion)
	}
}

func TestSchema_RuleRangeCheck(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		name     string
		min, max float64
		wantErr  bool
	}{
		{name: "valid range", min: 1.0, max: 1.5},
		{name: "empty range", min: 1.5, max: 1.5, wantErr: true},
		{name: "inverted range", min: 2.0, max: 1.0, wantErr: true},
		{name: "negative min", min: -1.0, max: 1.0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.db.ExecContext(ctx,
				`INSERT INTO classification_rules (label, min_ratio, max_ratio) VALUES (?, ?, ?)`,
				tt.name, tt.min, tt.max)
			if (err != nil) != tt.wantErr {
				t.Errorf("insert error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSchema_StoreForeignKey(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	res, err := store.db.ExecContext(ctx, `INSERT INTO stores (name) VALUES ('Kadikoy')`)
	if err != nil {
		t.Fatalf("Failed to insert store: %v", err)
	}
	storeID, _ := res.LastInsertId()

	if _, err := store.db.ExecContext(ctx,
		`INSERT INTO panels (code, width_px, height_px, store_id) VALUES ('LED-1', 10, 10, ?)`, storeID); err != nil {
		t.Fatalf("Failed to insert panel: %v", err)
	}

	if _, err := store.db.ExecContext(ctx, `DELETE FROM stores WHERE id = ?`, storeID); err == nil {
		t.Error("expected store delete to be restricted while panels reference it")
	}

	if _, err := store.db.ExecContext(ctx,
		`INSERT INTO panels (code, width_px, height_px, store_id) VALUES ('LED-2', 10, 10, 999)`); err == nil {
		t.Error("expected insert with unknown store to fail")
	}
}

func TestSchema_UpdatedAtTrigger(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	panel := createTestPanel(t, store, "LED-1", 1920, 1080)

	if _, err := store.db.ExecContext(ctx,
		`UPDATE panels SET updated_at = '2000-01-01 00:00:00' WHERE id = ?`, panel.ID); err != nil {
		t.Fatalf("Failed to backdate panel: %v", err)
	}
	if _, err := store.db.ExecContext(ctx,
		`UPDATE panels SET notes = 'moved' WHERE id = ?`, panel.ID); err != nil {
		t.Fatalf("Failed to update panel: %v", err)
	}

	var updatedAt time.Time
	if err := store.db.QueryRowContext(ctx,
		`SELECT updated_at FROM panels WHERE id = ?`, panel.ID).Scan(&updatedAt); err != nil {
		t.Fatalf("Failed to read updated_at: %v", err)
	}
	if updatedAt.Year() <= 2000 {
		t.Errorf("updated_at = %v, want trigger to refresh it", updatedAt)
	}
}
