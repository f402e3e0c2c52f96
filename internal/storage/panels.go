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
	"github.com/Veraticus/led-inventory/internal/service"
	"github.com/mattn/go-sqlite3"
)

const panelColumns = `id, code, width_px, height_px, category, status, store_id,
	location, notes, created_at, updated_at`

// CreatePanel inserts a new panel and sets its ID.
func (s *SQLiteStorage) CreatePanel(ctx context.Context, panel *model.Panel) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.createPanelTx(ctx, s.db, panel)
}

// CreatePanels inserts a batch of panels in one transaction.
func (s *SQLiteStorage) CreatePanels(ctx context.Context, panels []model.Panel) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(panels) == 0 {
		return nil
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for i := range panels {
			if err := s.createPanelTx(ctx, tx, &panels[i]); err != nil {
				return fmt.Errorf("panel at index %d: %w", i, err)
			}
		}
		return nil
	})
}

func (s *SQLiteStorage) createPanelTx(ctx context.Context, q queryable, panel *model.Panel) error {
	if err := validatePanel(panel); err != nil {
		return err
	}
	if panel.Status == "" {
		panel.Status = model.StatusActive
	}

	result, err := q.ExecContext(ctx, `
		INSERT INTO panels (code, width_px, height_px, category, status, store_id, location, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(panel.Code), panel.WidthPx, panel.HeightPx, panel.Category,
		string(panel.Status), nullInt64(panel.StoreID), panel.Location, panel.Notes,
	)
	if err != nil {
		if isConstraint(err, sqlite3.ErrConstraintForeignKey) {
			return fmt.Errorf("%w: store %d does not exist", ErrInvalidPanel, *panel.StoreID)
		}
		return fmt.Errorf("failed to create panel: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get panel ID: %w", err)
	}

	now := time.Now()
	panel.ID = id
	panel.Code = strings.TrimSpace(panel.Code)
	panel.CreatedAt = now
	panel.UpdatedAt = now

	return nil
}

// GetPanel retrieves a panel by ID.
func (s *SQLiteStorage) GetPanel(ctx context.Context, id int64) (*model.Panel, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+panelColumns+` FROM panels WHERE id = ?`, id)
	panel, err := scanPanel(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("panel %d: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get panel: %w", err)
	}

	return panel, nil
}

// ListPanels returns panels matching the filter, ordered by ID.
func (s *SQLiteStorage) ListPanels(ctx context.Context, filter service.PanelFilter) ([]model.Panel, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + panelColumns + ` FROM panels`
	var conditions []string
	var args []any

	if filter.Code != "" {
		conditions = append(conditions, "code = ?")
		args = append(args, filter.Code)
	}
	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.StoreID != nil {
		conditions = append(conditions, "store_id = ?")
		args = append(args, *filter.StoreID)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id ASC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list panels: %w", err)
	}
	defer func() { _ = rows.Close() }()

	panels := []model.Panel{}
	for rows.Next() {
		panel, err := scanPanel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan panel: %w", err)
		}
		panels = append(panels, *panel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating panels: %w", err)
	}

	return panels, nil
}

// ListPanelsByCode returns every panel sharing the product code.
func (s *SQLiteStorage) ListPanelsByCode(ctx context.Context, code string) ([]model.Panel, error) {
	if err := validateString(code, "code"); err != nil {
		return nil, err
	}
	return s.ListPanels(ctx, service.PanelFilter{Code: code})
}

// UpdatePanel updates every mutable field of an existing panel.
func (s *SQLiteStorage) UpdatePanel(ctx context.Context, panel *model.Panel) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePanel(panel); err != nil {
		return err
	}
	if err := validateID(panel.ID, "id"); err != nil {
		return err
	}
	if panel.Status == "" {
		panel.Status = model.StatusActive
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE panels SET
			code = ?, width_px = ?, height_px = ?, category = ?, status = ?,
			store_id = ?, location = ?, notes = ?
		WHERE id = ?`,
		strings.TrimSpace(panel.Code), panel.WidthPx, panel.HeightPx, panel.Category,
		string(panel.Status), nullInt64(panel.StoreID), panel.Location, panel.Notes,
		panel.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update panel: %w", err)
	}

	if err := expectOneRow(result, "panel", panel.ID); err != nil {
		return err
	}

	panel.UpdatedAt = time.Now()
	return nil
}

// UpdatePanelCategory stores a classifier label for one panel.
func (s *SQLiteStorage) UpdatePanelCategory(ctx context.Context, id int64, category string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(category, "category"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `UPDATE panels SET category = ? WHERE id = ?`, category, id)
	if err != nil {
		return fmt.Errorf("failed to update panel category: %w", err)
	}

	return expectOneRow(result, "panel", id)
}

// DeletePanel removes a panel. Deleting an absent panel returns common.ErrNotFound.
func (s *SQLiteStorage) DeletePanel(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM panels WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete panel: %w", err)
	}

	return expectOneRow(result, "panel", id)
}

// CountPanels returns the number of panel rows.
func (s *SQLiteStorage) CountPanels(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM panels`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count panels: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPanel(row rowScanner) (*model.Panel, error) {
	var panel model.Panel
	var status string
	var storeID sql.NullInt64

	err := row.Scan(
		&panel.ID, &panel.Code, &panel.WidthPx, &panel.HeightPx, &panel.Category,
		&status, &storeID, &panel.Location, &panel.Notes,
		&panel.CreatedAt, &panel.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	panel.Status = model.PanelStatus(status)
	if storeID.Valid {
		id := storeID.Int64
		panel.StoreID = &id
	}

	return &panel, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func expectOneRow(result sql.Result, kind string, id int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, common.ErrNotFound)
	}
	return nil
}
