// Package testutil provides test helpers for the led-inventory project: an
// in-memory database with optional seed data and fluent panel builders.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/led-inventory/internal/classify"
	"github.com/Veraticus/led-inventory/internal/model"
	"github.com/Veraticus/led-inventory/internal/storage"
)

// TestDB is a migrated in-memory database plus whatever was seeded into it.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
	Rules   []model.ClassificationRule
	Panels  []model.Panel
}

// TestDBOptions configures SetupTestDBWithOptions.
type TestDBOptions struct {
	CustomSetup func(context.Context, *storage.SQLiteStorage) error
	Rules       []model.ClassificationRule
	Panels      []model.Panel
	// SeedDefaultRules seeds classify.DefaultRules when Rules is empty.
	SeedDefaultRules bool
}

// SetupTestDB creates a migrated in-memory database seeded with the default
// classification rules. It is closed when the test ends.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{SeedDefaultRules: true})
}

// SetupTestDBWithOptions creates a test database with custom seed data.
//
// Example:
//
//	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{
//		SeedDefaultRules: true,
//		Panels: testutil.NewPanelBuilder().
//			With("P-100", 1920, 1080).
//			With("P-100", 1280, 720).
//			Build(),
//	})
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	rules := opts.Rules
	if len(rules) == 0 && opts.SeedDefaultRules {
		rules = classify.DefaultRules()
	}
	for i := range rules {
		if err := store.CreateRule(ctx, &rules[i]); err != nil {
			t.Fatalf("failed to seed rule %q: %v", rules[i].Label, err)
		}
	}

	panels := append([]model.Panel(nil), opts.Panels...)
	if err := store.CreatePanels(ctx, panels); err != nil {
		t.Fatalf("failed to seed panels: %v", err)
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{
		Storage: store,
		Rules:   rules,
		Panels:  panels,
		t:       t,
	}
}

// MustGetPanel returns the stored panel or fails the test.
func (db *TestDB) MustGetPanel(id int64) *model.Panel {
	db.t.Helper()
	panel, err := db.Storage.GetPanel(context.Background(), id)
	if err != nil {
		db.t.Fatalf("failed to get panel %d: %v", id, err)
	}
	return panel
}

// MustCount returns the number of stored panels or fails the test.
func (db *TestDB) MustCount() int {
	db.t.Helper()
	n, err := db.Storage.CountPanels(context.Background())
	if err != nil {
		db.t.Fatalf("failed to count panels: %v", err)
	}
	return n
}
