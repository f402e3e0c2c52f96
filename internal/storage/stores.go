package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/led-inventory/internal/common"
	"github.com/Veraticus/led-inventory/internal/model"
	"github.com/mattn/go-sqlite3"
)

// CreateStore inserts a store and sets its ID.
func (s *SQLiteStorage) CreateStore(ctx context.Context, store *model.Store) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateStore(store); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO stores (name, city) VALUES (?, ?)`,
		strings.TrimSpace(store.Name), store.City)
	if err != nil {
		if isConstraint(err, sqlite3.ErrConstraintUnique) {
			return fmt.Errorf("store %q: %w", store.Name, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create store: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get store ID: %w", err)
	}

	store.ID = id
	store.Name = strings.TrimSpace(store.Name)
	store.CreatedAt = time.Now()
	return nil
}

// GetStore retrieves a store with its panel count.
func (s *SQLiteStorage) GetStore(ctx context.Context, id int64) (*model.Store, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var store model.Store
	err := s.db.QueryRowContext(ctx, `
		SELECT s.id, s.name, s.city, s.created_at,
			(SELECT COUNT(*) FROM panels p WHERE p.store_id = s.id)
		FROM stores s WHERE s.id = ?`, id).Scan(
		&store.ID, &store.Name, &store.City, &store.CreatedAt, &store.PanelCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("store %d: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get store: %w", err)
	}

	return &store, nil
}

// ListStores returns all stores ordered by name.
func (s *SQLiteStorage) ListStores(ctx context.Context) ([]model.Store, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.name, s.city, s.created_at,
			(SELECT COUNT(*) FROM panels p WHERE p.store_id = s.id)
		FROM stores s ORDER BY s.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	stores := []model.Store{}
	for rows.Next() {
		var store model.Store
		if err := rows.Scan(&store.ID, &store.Name, &store.City, &store.CreatedAt, &store.PanelCount); err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		stores = append(stores, store)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stores: %w", err)
	}

	return stores, nil
}

// DeleteStore removes a store. Stores that still have panels are rejected.
func (s *SQLiteStorage) DeleteStore(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM stores WHERE id = ?`, id)
	if err != nil {
		if isConstraint(err, sqlite3.ErrConstraintForeignKey) {
			return fmt.Errorf("store %d: %w", id, common.ErrStoreInUse)
		}
		return fmt.Errorf("failed to delete store: %w", err)
	}
	return expectOneRow(result, "store", id)
}
