package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Veraticus/led-inventory/internal/service"
	"github.com/Veraticus/led-inventory/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupTestController wires a controller to a seeded in-memory database.
func setupTestController(t *testing.T, opts testutil.TestDBOptions, ctrlOpts ...Option) (*echo.Echo, *testutil.TestDB) {
	t.Helper()

	db := testutil.SetupTestDBWithOptions(t, opts)
	e := echo.New()
	New(e, db.Storage, append([]Option{WithLogger(quietLogger()), WithVersion("test")}, ctrlOpts...)...)
	return e, db
}

// setupWithStore wires a controller to an arbitrary storage implementation.
func setupWithStore(store service.Storage, ctrlOpts ...Option) *echo.Echo {
	e := echo.New()
	New(e, store, append([]Option{WithLogger(quietLogger())}, ctrlOpts...)...)
	return e
}

func doRequest(t *testing.T, e *echo.Echo, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthCheck(t *testing.T) {
	e, _ := setupTestController(t, testutil.TestDBOptions{
		Panels: testutil.NewPanelBuilder().With("P-1", 100, 100).Build(),
	})

	rec := doRequest(t, e, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test", body["version"])
	assert.InDelta(t, 1, body["panels"], 0)
}

type failingStore struct {
	service.Storage
}

func (failingStore) CountPanels(context.Context) (int, error) {
	return 0, errors.New("database is closed")
}

func TestHealthCheck_Degraded(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := setupWithStore(failingStore{Storage: db.Storage})

	rec := doRequest(t, e, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", decode[map[string]any](t, rec)["status"])
}

func TestHandleError_StatusMapping(t *testing.T) {
	e, _ := setupTestController(t, testutil.TestDBOptions{})

	rec := doRequest(t, e, http.MethodGet, "/api/v1/panels/999", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Len(t, resp.CorrelationID, 8)
	assert.Contains(t, resp.Error, "not found")

	rec = doRequest(t, e, http.MethodGet, "/api/v1/panels/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
