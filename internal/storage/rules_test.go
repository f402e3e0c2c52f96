package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/led-inventory/internal/classify"
	"github.com/Veraticus/led-inventory/internal/common"
	"github.com/Veraticus/led-inventory/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDefaultRules(t *testing.T, store *SQLiteStorage) []model.ClassificationRule {
	t.Helper()
	rules := classify.DefaultRules()
	for i := range rules {
		require.NoError(t, store.CreateRule(context.Background(), &rules[i]))
	}
	return rules
}

func TestSQLiteStorage_RuleCRUD(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	rules := seedDefaultRules(t, store)
	for _, r := range rules {
		assert.NotZero(t, r.ID)
	}

	active, err := store.ListActiveRules(ctx)
	require.NoError(t, err)
	require.Len(t, active, 3)
	assert.Equal(t, "Dikey", active[0].Label)
	assert.Equal(t, "Kare", active[1].Label)
	assert.Equal(t, "Yatay", active[2].Label)

	got, err := store.GetRule(ctx, rules[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 0.8, got.MinRatio)
	assert.Equal(t, 1.2, got.MaxRatio)
	assert.True(t, got.IsActive)

	got.Description = "Near-square panels"
	require.NoError(t, store.UpdateRule(ctx, got))
	got, err = store.GetRule(ctx, rules[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "Near-square panels", got.Description)

	require.NoError(t, store.DeleteRule(ctx, rules[2].ID))
	_, err = store.GetRule(ctx, rules[2].ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, store.DeleteRule(ctx, rules[2].ID), common.ErrNotFound)
}

func TestSQLiteStorage_CreateRuleConflict(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	seedDefaultRules(t, store)

	overlapping := model.ClassificationRule{Label: "Wide", MinRatio: 1.5, MaxRatio: 2.5, IsActive: true}
	err := store.CreateRule(ctx, &overlapping)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrRuleConflict))

	var conflict *classify.RuleConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "Yatay", conflict.Existing.Label)

	// Inactive drafts may overlap.
	draft := model.ClassificationRule{Label: "Wide", MinRatio: 1.5, MaxRatio: 2.5}
	require.NoError(t, store.CreateRule(ctx, &draft))

	// Activating the draft runs the gate.
	err = store.SetRuleActive(ctx, draft.ID, true)
	assert.ErrorIs(t, err, common.ErrRuleConflict)

	all, err := store.ListRules(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.False(t, all[3].IsActive, "inactive rules are listed last")

	// Adjacent rules do not conflict.
	ultra := model.ClassificationRule{Label: "Ultra", MinRatio: 7, MaxRatio: 20, IsActive: true}
	assert.NoError(t, store.CreateRule(ctx, &ultra))
}

func TestSQLiteStorage_UpdateRuleConflict(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	rules := seedDefaultRules(t, store)

	// Widening Kare into Yatay's interval is rejected.
	kare := rules[1]
	kare.MaxRatio = 1.5
	assert.ErrorIs(t, store.UpdateRule(ctx, &kare), common.ErrRuleConflict)

	// Shrinking Kare is fine; it does not conflict with itself.
	kare.MaxRatio = 1.1
	require.NoError(t, store.UpdateRule(ctx, &kare))

	// Deactivating Yatay lets Kare grow.
	require.NoError(t, store.SetRuleActive(ctx, rules[2].ID, false))
	kare.MaxRatio = 1.5
	require.NoError(t, store.UpdateRule(ctx, &kare))

	active, err := store.ListActiveRules(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestSQLiteStorage_RuleValidation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	assert.Error(t, store.CreateRule(ctx, nil))
	assert.ErrorIs(t, store.CreateRule(ctx, &model.ClassificationRule{Label: "Bad", MinRatio: 2, MaxRatio: 1, IsActive: true}), common.ErrInvalidRule)
	assert.ErrorIs(t, store.CreateRule(ctx, &model.ClassificationRule{MinRatio: 0, MaxRatio: 1}), common.ErrInvalidRule)
	assert.ErrorIs(t, store.UpdateRule(ctx, &model.ClassificationRule{ID: 99, Label: "Gone", MinRatio: 0, MaxRatio: 1}), common.ErrNotFound)
	assert.ErrorIs(t, store.SetRuleActive(ctx, 99, true), common.ErrNotFound)
}
