package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpointManager_CreateListDelete(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	createTestPanel(t, store, "A", 1920, 1080)
	createTestPanel(t, store, "A", 1000, 1000)
	seedDefaultRules(t, store)

	manager, err := store.NewCheckpointManager()
	require.NoError(t, err)

	info, err := manager.Create(ctx, "before-import", "Before import")
	require.NoError(t, err)
	assert.Equal(t, "before-import", info.ID)
	assert.Equal(t, 2, info.Panels)
	assert.Equal(t, 3, info.Rules)
	assert.Equal(t, ExpectedSchemaVersion, info.SchemaVersion)
	assert.False(t, info.IsAuto)
	assert.Greater(t, info.FileSize, int64(0))

	_, err = manager.Create(ctx, "before-import", "again")
	assert.ErrorIs(t, err, ErrCheckpointExists)

	_, err = manager.Create(ctx, "../escape", "bad")
	assert.Error(t, err)

	id, err := manager.AutoCheckpoint(ctx, "cleanup")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "auto-cleanup-"))

	list, err := manager.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	auto, err := manager.GetCheckpointInfo(ctx, id)
	require.NoError(t, err)
	assert.True(t, auto.IsAuto)

	require.NoError(t, manager.Delete(ctx, "before-import"))
	assert.ErrorIs(t, manager.Delete(ctx, "before-import"), ErrCheckpointNotFound)

	_, err = os.Stat(filepath.Join(filepath.Dir(store.Path()), "checkpoints", id+".db"))
	assert.NoError(t, err)
}

func TestCheckpointManager_Restore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "inventory.db")
	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))

	createTestPanel(t, store, "A", 10, 10)

	manager, err := store.NewCheckpointManager()
	require.NoError(t, err)
	_, err = manager.Create(ctx, "one-panel", "")
	require.NoError(t, err)

	createTestPanel(t, store, "B", 20, 20)

	// Restore closes the live connection.
	require.NoError(t, manager.Restore(ctx, "one-panel"))

	reopened, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	count, err := reopened.CountPanels(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.ErrorIs(t, manager.Restore(ctx, "missing"), ErrCheckpointNotFound)
}

func TestCheckpointManager_KeepsFiveAutoCheckpoints(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	manager, err := store.NewCheckpointManager()
	require.NoError(t, err)

	for i := 0; i < 7; i++ {
		_, err := manager.AutoCheckpoint(ctx, "cleanup")
		require.NoError(t, err)
	}

	list, err := manager.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 5)
}

func TestCheckpointManager_InvalidIDs(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	manager, err := store.NewCheckpointManager()
	require.NoError(t, err)

	for _, id := range []string{"a/b", `a\b`, "..", "it's", "x;y"} {
		_, err := manager.Create(ctx, id, "")
		assert.ErrorIs(t, err, ErrInvalidCheckpointID, id)
		assert.ErrorIs(t, manager.Delete(ctx, id), ErrInvalidCheckpointID, id)
		_, err = manager.GetCheckpointInfo(ctx, id)
		assert.ErrorIs(t, err, ErrInvalidCheckpointID, id)
	}
}

func TestNewCheckpointManager_InMemory(t *testing.T) {
	_, err := NewCheckpointManager(nil, ":memory:")
	assert.ErrorIs(t, err, ErrInMemoryCheckpoint)
}
