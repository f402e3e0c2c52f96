package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxAutoCheckpoints is how many automatic checkpoints survive pruning.
const maxAutoCheckpoints = 5

// Checkpoint errors.
var (
	ErrCheckpointNotFound  = errors.New("checkpoint not found")
	ErrCheckpointCorrupted = errors.New("checkpoint integrity check failed")
	ErrCheckpointExists    = errors.New("checkpoint already exists")
	ErrInvalidCheckpointID = errors.New("invalid checkpoint id")
	ErrInMemoryCheckpoint  = errors.New("checkpoints are not supported for in-memory databases")
)

// CheckpointInfo describes one saved copy of the inventory database.
type CheckpointInfo struct {
	CreatedAt     time.Time `json:"createdAt"`
	ID            string    `json:"id"`
	Description   string    `json:"description"`
	FileSize      int64     `json:"fileSize"`
	Panels        int       `json:"panels"`
	Rules         int       `json:"rules"`
	Stores        int       `json:"stores"`
	SchemaVersion int       `json:"schemaVersion"`
	IsAuto        bool      `json:"isAuto"`
}

// CheckpointManager saves and restores full copies of the database file.
// Checkpoints live in a checkpoints/ directory next to the database, one
// <id>.db file plus an <id>.meta.json sidecar each.
type CheckpointManager struct {
	db  *sql.DB
	dir string
	// dbPath is absolute.
	dbPath string
}

// NewCheckpointManager creates a checkpoint manager for the database at dbPath.
func NewCheckpointManager(db *sql.DB, dbPath string) (*CheckpointManager, error) {
	if dbPath == ":memory:" {
		return nil, ErrInMemoryCheckpoint
	}

	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}

	dir := filepath.Join(filepath.Dir(absPath), "checkpoints")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create checkpoints directory: %w", err)
	}

	return &CheckpointManager{db: db, dbPath: absPath, dir: dir}, nil
}

func validateCheckpointID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\'";`) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidCheckpointID, id)
	}
	return nil
}

func (cm *CheckpointManager) dataPath(id string) string {
	return filepath.Join(cm.dir, id+".db")
}

func (cm *CheckpointManager) metaPath(id string) string {
	return filepath.Join(cm.dir, id+".meta.json")
}

// Create saves a checkpoint under tag. An empty tag is replaced by a timestamp.
func (cm *CheckpointManager) Create(ctx context.Context, tag, description string) (*CheckpointInfo, error) {
	if tag == "" {
		tag = "checkpoint-" + time.Now().Format("2006-01-02-1504")
	}
	return cm.create(ctx, tag, description, false)
}

// AutoCheckpoint saves a checkpoint before a destructive operation named by
// prefix and prunes old automatic checkpoints. It returns the checkpoint id.
func (cm *CheckpointManager) AutoCheckpoint(ctx context.Context, prefix string) (string, error) {
	tag := fmt.Sprintf("auto-%s-%s-%s", prefix, time.Now().Format("2006-01-02-150405"), uuid.NewString()[:8])

	if _, err := cm.create(ctx, tag, "Automatic checkpoint before "+prefix, true); err != nil {
		return "", fmt.Errorf("failed to create auto-checkpoint: %w", err)
	}

	if err := cm.pruneAuto(ctx); err != nil {
		slog.Warn("Failed to prune auto-checkpoints", "error", err)
	}

	return tag, nil
}

func (cm *CheckpointManager) create(ctx context.Context, tag, description string, isAuto bool) (*CheckpointInfo, error) {
	if err := validateCheckpointID(tag); err != nil {
		return nil, err
	}

	dest := cm.dataPath(tag)
	if _, err := os.Stat(dest); err == nil {
		return nil, ErrCheckpointExists
	}

	info := CheckpointInfo{
		ID:          tag,
		CreatedAt:   time.Now(),
		Description: description,
		IsAuto:      isAuto,
	}
	if err := cm.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&info.SchemaVersion); err != nil {
		return nil, fmt.Errorf("failed to get schema version: %w", err)
	}
	if err := cm.countRows(ctx, &info); err != nil {
		return nil, err
	}

	// VACUUM INTO writes a consistent, compacted copy even with a live WAL.
	if _, err := cm.db.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		return nil, fmt.Errorf("failed to copy database: %w", err)
	}

	stat, err := os.Stat(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to stat checkpoint: %w", err)
	}
	info.FileSize = stat.Size()

	if err := writeJSONFile(cm.metaPath(tag), info); err != nil {
		if rmErr := os.Remove(dest); rmErr != nil {
			slog.Error("Failed to remove checkpoint after metadata error", "error", rmErr)
		}
		return nil, fmt.Errorf("failed to save metadata: %w", err)
	}

	if err := cm.recordInDB(ctx, info); err != nil {
		slog.Warn("Failed to record checkpoint in database", "error", err, "id", tag)
	}

	slog.Info("Checkpoint created", "id", tag, "panels", info.Panels, "size", info.FileSize)
	return &info, nil
}

func (cm *CheckpointManager) countRows(ctx context.Context, info *CheckpointInfo) error {
	counts := []struct {
		dst   *int
		query string
	}{
		{&info.Panels, "SELECT COUNT(*) FROM panels"},
		{&info.Rules, "SELECT COUNT(*) FROM classification_rules"},
		{&info.Stores, "SELECT COUNT(*) FROM stores"},
	}
	for _, c := range counts {
		if err := cm.db.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return fmt.Errorf("failed to count rows: %w", err)
		}
	}
	return nil
}

func (cm *CheckpointManager) recordInDB(ctx context.Context, info CheckpointInfo) error {
	counts, err := json.Marshal(map[string]int{
		"panels":               info.Panels,
		"classification_rules": info.Rules,
		"stores":               info.Stores,
	})
	if err != nil {
		return err
	}

	_, err = cm.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO checkpoint_metadata
		(id, created_at, description, file_size, row_counts, schema_version, is_auto)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		info.ID, info.CreatedAt, info.Description, info.FileSize, string(counts), info.SchemaVersion, info.IsAuto)
	return err
}

// List returns every readable checkpoint, newest first.
func (cm *CheckpointManager) List(_ context.Context) ([]CheckpointInfo, error) {
	entries, err := os.ReadDir(cm.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoints directory: %w", err)
	}

	checkpoints := make([]CheckpointInfo, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".meta.json") {
			continue
		}
		info, err := readInfo(filepath.Join(cm.dir, name))
		if err != nil {
			slog.Debug("Skipping unreadable checkpoint metadata", "file", name, "error", err)
			continue
		}
		checkpoints = append(checkpoints, *info)
	}

	sort.Slice(checkpoints, func(i, j int) bool {
		return checkpoints[i].CreatedAt.After(checkpoints[j].CreatedAt)
	})
	return checkpoints, nil
}

// GetCheckpointInfo returns the metadata of one checkpoint.
func (cm *CheckpointManager) GetCheckpointInfo(_ context.Context, id string) (*CheckpointInfo, error) {
	if err := validateCheckpointID(id); err != nil {
		return nil, err
	}
	info, err := readInfo(cm.metaPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrCheckpointNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint metadata: %w", err)
	}
	return info, nil
}

// Restore replaces the database file with checkpoint id. The manager's
// connection is closed first; callers must reopen the database afterwards.
func (cm *CheckpointManager) Restore(ctx context.Context, id string) error {
	if _, err := cm.GetCheckpointInfo(ctx, id); err != nil {
		return err
	}
	src := cm.dataPath(id)
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrCheckpointNotFound
		}
		return fmt.Errorf("failed to access checkpoint: %w", err)
	}

	if err := integrityCheck(ctx, src); err != nil {
		slog.Error("Checkpoint failed integrity check", "id", id, "error", err)
		return ErrCheckpointCorrupted
	}

	if err := cm.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	backup := cm.dbPath + ".restore-backup"
	if err := copyFile(cm.dbPath, backup); err != nil {
		return fmt.Errorf("failed to back up current database: %w", err)
	}

	if err := copyFile(src, cm.dbPath); err != nil {
		if rbErr := copyFile(backup, cm.dbPath); rbErr != nil {
			slog.Error("Failed to roll back after restore error", "error", rbErr)
		}
		return fmt.Errorf("failed to restore checkpoint: %w", err)
	}

	// A stale WAL would be replayed over the restored file on next open.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(cm.dbPath + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Failed to remove WAL file", "path", cm.dbPath+suffix, "error", err)
		}
	}
	if err := os.Remove(backup); err != nil {
		slog.Warn("Failed to remove restore backup", "path", backup, "error", err)
	}

	slog.Info("Checkpoint restored", "id", id)
	return nil
}

// Delete removes a checkpoint and its metadata.
func (cm *CheckpointManager) Delete(ctx context.Context, id string) error {
	if err := validateCheckpointID(id); err != nil {
		return err
	}

	if err := os.Remove(cm.dataPath(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrCheckpointNotFound
		}
		return fmt.Errorf("failed to remove checkpoint file: %w", err)
	}

	if err := os.Remove(cm.metaPath(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Debug("Failed to remove checkpoint metadata", "id", id, "error", err)
	}
	if _, err := cm.db.ExecContext(ctx, "DELETE FROM checkpoint_metadata WHERE id = ?", id); err != nil {
		slog.Debug("Failed to remove checkpoint row", "id", id, "error", err)
	}
	return nil
}

func (cm *CheckpointManager) pruneAuto(ctx context.Context) error {
	checkpoints, err := cm.List(ctx)
	if err != nil {
		return err
	}

	kept := 0
	for _, cp := range checkpoints {
		if !cp.IsAuto {
			continue
		}
		kept++
		if kept <= maxAutoCheckpoints {
			continue
		}
		if err := cm.Delete(ctx, cp.ID); err != nil {
			slog.Debug("Failed to prune auto-checkpoint", "id", cp.ID, "error", err)
		}
	}
	return nil
}

func integrityCheck(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("integrity check: %s", result)
	}
	return nil
}

func readInfo(path string) (*CheckpointInfo, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	var info CheckpointInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// writeJSONFile writes v through a temporary file and rename.
func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// copyFile copies src over dst through a temporary file and rename.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	tmp := dst + ".tmp"
	out, err := os.Create(filepath.Clean(tmp))
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, dst)
}
