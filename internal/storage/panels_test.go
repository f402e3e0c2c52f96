package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/led-inventory/internal/common"
	"github.com/Veraticus/led-inventory/internal/model"
	"github.com/Veraticus/led-inventory/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStorage_PanelCRUD(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	panel := model.Panel{
		Code:       "  LED-001 ",
		Dimensions: model.Dimensions{WidthPx: 1920, HeightPx: 1080},
		Location:   "Entrance",
	}
	require.NoError(t, store.CreatePanel(ctx, &panel))
	assert.NotZero(t, panel.ID)
	assert.Equal(t, "LED-001", panel.Code)
	assert.Equal(t, model.StatusActive, panel.Status)

	got, err := store.GetPanel(ctx, panel.ID)
	require.NoError(t, err)
	assert.Equal(t, "LED-001", got.Code)
	assert.Equal(t, 1920, got.WidthPx)
	assert.Equal(t, 1080, got.HeightPx)
	assert.Equal(t, "Entrance", got.Location)
	assert.Nil(t, got.StoreID)
	assert.False(t, got.IsClassified())

	got.Status = model.StatusInactive
	got.Notes = "flicker on left edge"
	require.NoError(t, store.UpdatePanel(ctx, got))

	got, err = store.GetPanel(ctx, panel.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInactive, got.Status)
	assert.Equal(t, "flicker on left edge", got.Notes)

	require.NoError(t, store.UpdatePanelCategory(ctx, panel.ID, "Yatay"))
	got, err = store.GetPanel(ctx, panel.ID)
	require.NoError(t, err)
	assert.Equal(t, "Yatay", got.Category)

	require.NoError(t, store.DeletePanel(ctx, panel.ID))
	_, err = store.GetPanel(ctx, panel.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_DeletePanelMissing(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	err := store.DeletePanel(context.Background(), 9999)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.True(t, common.IsNotFound(err))
}

func TestSQLiteStorage_UpdateMissingPanel(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	err := store.UpdatePanelCategory(ctx, 42, "Kare")
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = store.UpdatePanel(ctx, &model.Panel{ID: 42, Code: "X", Dimensions: model.Dimensions{WidthPx: 1, HeightPx: 1}})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_UpdatePanelDefaultsStatus(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	panel := model.Panel{Code: "LED-002", Dimensions: model.Dimensions{WidthPx: 800, HeightPx: 800}, Status: model.StatusInactive}
	require.NoError(t, store.CreatePanel(ctx, &panel))

	update := model.Panel{ID: panel.ID, Code: "LED-002", Dimensions: model.Dimensions{WidthPx: 800, HeightPx: 800}}
	require.NoError(t, store.UpdatePanel(ctx, &update))
	assert.Equal(t, model.StatusActive, update.Status)

	got, err := store.GetPanel(ctx, panel.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, got.Status)
}

func TestSQLiteStorage_CreatePanelValidation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	missingStore := int64(77)

	tests := []struct {
		panel *model.Panel
		name  string
	}{
		{name: "nil panel", panel: nil},
		{name: "empty code", panel: &model.Panel{Code: " ", Dimensions: model.Dimensions{WidthPx: 1, HeightPx: 1}}},
		{name: "negative width", panel: &model.Panel{Code: "A", Dimensions: model.Dimensions{WidthPx: -1, HeightPx: 1}}},
		{name: "unknown store", panel: &model.Panel{Code: "A", StoreID: &missingStore, Dimensions: model.Dimensions{WidthPx: 1, HeightPx: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, store.CreatePanel(ctx, tt.panel))
		})
	}

	// Unknown resolution is stored so the classifier can report it.
	zero := model.Panel{Code: "LEGACY", Dimensions: model.Dimensions{WidthPx: 100, HeightPx: 0}}
	assert.NoError(t, store.CreatePanel(ctx, &zero))
}

func TestSQLiteStorage_ListPanels(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	shop := model.Store{Name: "Kadikoy"}
	require.NoError(t, store.CreateStore(ctx, &shop))

	panels := []model.Panel{
		{Code: "A", Dimensions: model.Dimensions{WidthPx: 1920, HeightPx: 1080}},
		{Code: "A", Dimensions: model.Dimensions{WidthPx: 1000, HeightPx: 1000}, StoreID: &shop.ID},
		{Code: "B", Dimensions: model.Dimensions{WidthPx: 500, HeightPx: 500}, Category: "Kare"},
	}
	require.NoError(t, store.CreatePanels(ctx, panels))
	for _, p := range panels {
		assert.NotZero(t, p.ID)
	}

	all, err := store.ListPanels(ctx, service.PanelFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Less(t, all[0].ID, all[1].ID)

	byCode, err := store.ListPanels(ctx, service.PanelFilter{Code: "A"})
	require.NoError(t, err)
	assert.Len(t, byCode, 2)

	sameCode, err := store.ListPanelsByCode(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, byCode, sameCode)

	_, err = store.ListPanelsByCode(ctx, "  ")
	require.ErrorIs(t, err, ErrEmptyString)

	byCategory, err := store.ListPanels(ctx, service.PanelFilter{Category: "Kare"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "B", byCategory[0].Code)

	byStore, err := store.ListPanels(ctx, service.PanelFilter{StoreID: &shop.ID})
	require.NoError(t, err)
	require.Len(t, byStore, 1)
	require.NotNil(t, byStore[0].StoreID)
	assert.Equal(t, shop.ID, *byStore[0].StoreID)

	page, err := store.ListPanels(ctx, service.PanelFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, all[1].ID, page[0].ID)

	count, err := store.CountPanels(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestSQLiteStorage_CreatePanelsRollsBack(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	panels := []model.Panel{
		{Code: "A", Dimensions: model.Dimensions{WidthPx: 1, HeightPx: 1}},
		{Code: "", Dimensions: model.Dimensions{WidthPx: 1, HeightPx: 1}},
	}
	require.Error(t, store.CreatePanels(ctx, panels))

	count, err := store.CountPanels(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
