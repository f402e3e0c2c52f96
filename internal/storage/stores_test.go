package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/led-inventory/internal/common"
	"github.com/Veraticus/led-inventory/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStorage_Stores(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	besiktas := model.Store{Name: "Besiktas", City: "Istanbul"}
	require.NoError(t, store.CreateStore(ctx, &besiktas))
	cankaya := model.Store{Name: "Cankaya", City: "Ankara"}
	require.NoError(t, store.CreateStore(ctx, &cankaya))

	dup := model.Store{Name: "Besiktas"}
	assert.ErrorIs(t, store.CreateStore(ctx, &dup), common.ErrDuplicateEntry)
	assert.Error(t, store.CreateStore(ctx, &model.Store{}))

	panel := model.Panel{Code: "LED-1", StoreID: &besiktas.ID, Dimensions: model.Dimensions{WidthPx: 10, HeightPx: 10}}
	require.NoError(t, store.CreatePanel(ctx, &panel))

	got, err := store.GetStore(ctx, besiktas.ID)
	require.NoError(t, err)
	assert.Equal(t, "Istanbul", got.City)
	assert.Equal(t, 1, got.PanelCount)

	all, err := store.ListStores(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Besiktas", all[0].Name)
	assert.Equal(t, 0, all[1].PanelCount)

	assert.ErrorIs(t, store.DeleteStore(ctx, besiktas.ID), common.ErrStoreInUse)
	require.NoError(t, store.DeleteStore(ctx, cankaya.ID))
	assert.ErrorIs(t, store.DeleteStore(ctx, cankaya.ID), common.ErrNotFound)

	_, err = store.GetStore(ctx, cankaya.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
