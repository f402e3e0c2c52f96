package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/led-inventory/internal/classify"
	"github.com/Veraticus/led-inventory/internal/model"
	"github.com/Veraticus/led-inventory/internal/storage"
	"github.com/Veraticus/led-inventory/internal/testutil"
)

func classifyFixture() testutil.TestDBOptions {
	return testutil.TestDBOptions{
		SeedDefaultRules: true,
		Panels: testutil.NewPanelBuilder().
			With("P-1", 1080, 1920).
			With("P-2", 1920, 1080).WithCategory("Yatay").
			With("P-3", 0, 0).
			Build(),
	}
}

func TestClassify_DryRun(t *testing.T) {
	e, db := setupTestController(t, classifyFixture())

	rec := doRequest(t, e, http.MethodPost, "/api/v1/classify", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	report := decode[classify.Report](t, rec)
	assert.Len(t, report.Changes, 2)
	assert.Len(t, report.Result.Errors, 1)
	assert.Equal(t, 0, report.Applied)

	assert.Empty(t, db.MustGetPanel(db.Panels[0].ID).Category)
}

func TestClassify_Apply(t *testing.T) {
	e, db := setupTestController(t, classifyFixture())

	rec := doRequest(t, e, http.MethodPost, "/api/v1/classify?apply=true", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, decode[classify.Report](t, rec).Applied)

	assert.Equal(t, "Dikey", db.MustGetPanel(db.Panels[0].ID).Category)
	assert.Equal(t, "Yatay", db.MustGetPanel(db.Panels[1].ID).Category)
	assert.Equal(t, model.UndeterminedCategory, db.MustGetPanel(db.Panels[2].ID).Category)

	rec = doRequest(t, e, http.MethodPost, "/api/v1/classify?apply=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[classify.Report](t, rec).Applied)
}

// brokenCategoryStore fails category updates for one id.
type brokenCategoryStore struct {
	*storage.SQLiteStorage
	failID int64
}

func (s *brokenCategoryStore) UpdatePanelCategory(ctx context.Context, id int64, category string) error {
	if id == s.failID {
		return errors.New("database is locked")
	}
	return s.SQLiteStorage.UpdatePanelCategory(ctx, id, category)
}

func TestClassify_PartialApply(t *testing.T) {
	_, db := setupTestController(t, classifyFixture())
	store := &brokenCategoryStore{SQLiteStorage: db.Storage, failID: db.Panels[0].ID}
	e := setupWithStore(store)

	rec := doRequest(t, e, http.MethodPost, "/api/v1/classify?apply=true", nil)
	require.Equal(t, http.StatusMultiStatus, rec.Code, rec.Body.String())

	report := decode[classify.Report](t, rec)
	assert.Equal(t, 1, report.Applied)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, db.Panels[0].ID, report.Failed[0].PanelID)

	assert.Empty(t, db.MustGetPanel(db.Panels[0].ID).Category)
	assert.Equal(t, model.UndeterminedCategory, db.MustGetPanel(db.Panels[2].ID).Category)
}

func TestClassify_NoActiveRules(t *testing.T) {
	e, db := setupTestController(t, testutil.TestDBOptions{
		Panels: testutil.NewPanelBuilder().
			With("P-1", 1920, 1080).WithCategory("Yatay").
			Build(),
	})

	rec := doRequest(t, e, http.MethodPost, "/api/v1/classify?apply=true", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	report := decode[classify.Report](t, rec)
	assert.Equal(t, 0, report.ActiveRules)
	assert.Equal(t, 1, report.Applied)
	assert.Equal(t, model.UndeterminedCategory, db.MustGetPanel(db.Panels[0].ID).Category)
}

func TestClassify_Errors(t *testing.T) {
	e, _ := setupTestController(t, testutil.TestDBOptions{})

	rec := doRequest(t, e, http.MethodPost, "/api/v1/classify?apply=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
