package api

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecochain/ecochain/internal/syncer"
	srcconfig "github.com/ecochain/ecochain/pkg/connector/config"
	"github.com/ecochain/ecochain/pkg/connector/core"
	"github.com/ecochain/ecochain/pkg/connector/registry"
	"github.com/ecochain/ecochain/pkg/models"
	"github.com/ecochain/ecochain/pkg/store"
)

type stubConnector struct {
	records []core.RawRecord
	testErr error
}

func (c *stubConnector) Type() models.SourceType { return models.SourceTypeAPI }

func (c *stubConnector) TestConnection(context.Context, *srcconfig.SourceConfig) error {
	return c.testErr
}

func (c *stubConnector) Fetch(context.Context, *srcconfig.SourceConfig) ([]core.RawRecord, error) {
	return c.records, nil
}

const (
	testToken  = "test-token"
	otherToken = "other-token"
)

func newTestServer(t *testing.T, stub *stubConnector) (*Server, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.Users().Insert(ctx, &models.User{ID: "owner-1", Email: "one@example.com"}, testToken))
	require.NoError(t, mem.Users().Insert(ctx, &models.User{ID: "owner-2", Email: "two@example.com"}, otherToken))

	reg := registry.NewRegistry()
	if stub != nil {
		require.NoError(t, reg.Register(models.SourceTypeAPI, func() core.Connector { return stub }))
	}
	return NewServer(mem, syncer.New(mem, reg, syncer.Options{})), mem
}

func doRequest(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := gojson.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Status  string           `json:"status"`
		Message string           `json:"message"`
		Data    gojson.RawMessage `json:"data"`
	}
	require.NoError(t, gojson.Unmarshal(rec.Body.Bytes(), &env))
	var out T
	require.NoError(t, gojson.Unmarshal(env.Data, &out))
	return out
}

func TestHealthAndAuth(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/integrations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/integrations", "bogus", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIntegrationCRUD(t *testing.T) {
	s, _ := newTestServer(t, &stubConnector{})

	t.Run("create with disabled schedule", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/integrations", testToken, map[string]any{
			"name":     "ERP",
			"type":     "api",
			"config":   map[string]any{"url": "https://x/y", "method": "GET"},
			"schedule": map[string]any{"enabled": false, "frequency": "daily", "time": "00:00"},
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		ds := decodeData[models.DataSource](t, rec)
		assert.Equal(t, models.StatusActive, ds.Status)
		assert.Nil(t, ds.NextSync)
		assert.NotEmpty(t, ds.ID)
	})

	t.Run("create accepts a bare disabled schedule", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/integrations", testToken, map[string]any{
			"name":     "ERP",
			"type":     "api",
			"config":   map[string]any{"url": "https://x/y", "method": "GET"},
			"schedule": map[string]any{"enabled": false},
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		ds := decodeData[models.DataSource](t, rec)
		assert.Equal(t, models.StatusActive, ds.Status)
		assert.Nil(t, ds.NextSync)
	})

	t.Run("create rejects unknown type", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/integrations", testToken, map[string]any{
			"name":   "Bad",
			"type":   "oracle",
			"config": map[string]any{"host": "db"},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("create rejects missing config", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/integrations", testToken, map[string]any{
			"name": "NoConfig",
			"type": "api",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("enabled schedule sets next sync", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/integrations", testToken, map[string]any{
			"name":     "Scheduled",
			"type":     "api",
			"config":   map[string]any{"url": "https://x/y"},
			"schedule": map[string]any{"enabled": true, "frequency": "daily", "time": "09:00"},
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		ds := decodeData[models.DataSource](t, rec)
		require.NotNil(t, ds.NextSync)
		assert.True(t, ds.NextSync.After(time.Now().Add(-time.Minute)))
	})
}

func TestIntegrationSecrets(t *testing.T) {
	s, _ := newTestServer(t, &stubConnector{})

	rec := doRequest(t, s, http.MethodPost, "/api/integrations", testToken, map[string]any{
		"name": "Warehouse",
		"type": "postgres",
		"config": map[string]any{
			"host": "db.internal", "database": "metrics",
			"username": "reader", "password": "hunter2",
			"query": "SELECT * FROM emissions",
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	ds := decodeData[models.DataSource](t, rec)

	t.Run("single get masks secrets", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodGet, "/api/integrations/"+ds.ID, testToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeData[models.DataSource](t, rec)
		assert.Equal(t, "******", got.Config["password"])
		assert.Equal(t, "db.internal", got.Config["host"])
	})

	t.Run("list omits config", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodGet, "/api/integrations", testToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		list := decodeData[[]models.DataSource](t, rec)
		require.NotEmpty(t, list)
		for _, item := range list {
			assert.Nil(t, item.Config)
		}
	})

	t.Run("other owner gets 404", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodGet, "/api/integrations/"+ds.ID, otherToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("partial config update keeps stored credentials", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPut, "/api/integrations/"+ds.ID, testToken, map[string]any{
			"config": map[string]any{"query": "SELECT * FROM emissions_v2"},
		})
		require.Equal(t, http.StatusOK, rec.Code)

		stored := storedSource(t, s, ds.ID)
		assert.Equal(t, "hunter2", stored.Config["password"])
		assert.Equal(t, "SELECT * FROM emissions_v2", stored.Config["query"])
	})
}

// storedSource reads a source straight from the server's store, bypassing
// redaction, to assert on persisted state.
func storedSource(t *testing.T, s *Server, id string) *models.DataSource {
	t.Helper()
	ds, err := s.store.DataSources().Get(context.Background(), "owner-1", id)
	require.NoError(t, err)
	return ds
}

func TestIntegrationSchedule(t *testing.T) {
	s, _ := newTestServer(t, &stubConnector{})

	rec := doRequest(t, s, http.MethodPost, "/api/integrations", testToken, map[string]any{
		"name":   "ERP",
		"type":   "api",
		"config": map[string]any{"url": "https://x/y"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	ds := decodeData[models.DataSource](t, rec)
	require.Nil(t, ds.NextSync)

	rec = doRequest(t, s, http.MethodPut, "/api/integrations/"+ds.ID, testToken, map[string]any{
		"schedule": map[string]any{"enabled": true, "frequency": "daily", "time": "09:00"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeData[models.DataSource](t, rec)
	require.NotNil(t, updated.NextSync)
	assert.Equal(t, 9, updated.NextSync.Hour())

	rec = doRequest(t, s, http.MethodPut, "/api/integrations/"+ds.ID, testToken, map[string]any{
		"schedule": map[string]any{"enabled": true, "frequency": "daily", "time": "25:00"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSyncEndpoint(t *testing.T) {
	stub := &stubConnector{records: []core.RawRecord{
		{"date": "2023-01-15", "source": "Fossil Fuels", "value": "1000", "unit": "kg", "scope": "1", "emissionFactor": "0.5"},
	}}
	s, mem := newTestServer(t, stub)

	rec := doRequest(t, s, http.MethodPost, "/api/integrations", testToken, map[string]any{
		"name":   "ERP",
		"type":   "api",
		"config": map[string]any{"url": "https://x/y"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	ds := decodeData[models.DataSource](t, rec)

	rec = doRequest(t, s, http.MethodPost, "/api/integrations/"+ds.ID+"/sync", testToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	result := decodeData[struct {
		SyncResult models.SyncResult `json:"syncResult"`
		DataSource struct {
			ID     string              `json:"id"`
			Status models.SourceStatus `json:"status"`
		} `json:"dataSource"`
	}](t, rec)
	assert.Equal(t, 1, result.SyncResult.TotalRecords)
	assert.Equal(t, 1, result.SyncResult.ImportedRecords)
	assert.Equal(t, 0, result.SyncResult.FailedRecords)
	assert.Equal(t, models.StatusActive, result.DataSource.Status)

	recs, err := mem.Records().List(context.Background(), "owner-1", store.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.InDelta(t, 500.0, recs[0].TotalCO2e, 1e-9)
}

func TestConnectionTestEndpoint(t *testing.T) {
	s, _ := newTestServer(t, &stubConnector{})

	rec := doRequest(t, s, http.MethodPost, "/api/integrations", testToken, map[string]any{
		"name":   "ERP",
		"type":   "api",
		"config": map[string]any{"url": "https://x/y"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	ds := decodeData[models.DataSource](t, rec)

	rec = doRequest(t, s, http.MethodPost, "/api/integrations/"+ds.ID+"/test", testToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeData[syncer.TestResult](t, rec)
	assert.True(t, res.Connected)
}

func TestRecords(t *testing.T) {
	s, _ := newTestServer(t, nil)

	t.Run("manual entry normalizes", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/records", testToken, map[string]any{
			"date": "2025-06-01", "source": "grid", "value": 100, "emissionFactor": 0.5,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		got := decodeData[models.EmissionRecord](t, rec)
		assert.Equal(t, "manual", got.ImportedFrom)
		assert.InDelta(t, 50.0, got.TotalCO2e, 1e-9)
		assert.Equal(t, "kg", got.Unit)
	})

	t.Run("manual entry rejects missing value", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/records", testToken, map[string]any{
			"date": "2025-06-01", "source": "grid",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("summary aggregates", func(t *testing.T) {
		doRequest(t, s, http.MethodPost, "/api/records", testToken, map[string]any{
			"date": "2025-07-01", "source": "fleet", "value": 10, "emissionFactor": 1.0, "scope": 2,
		})

		rec := doRequest(t, s, http.MethodGet, "/api/records/summary", testToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		sum := decodeData[recordSummary](t, rec)
		assert.Equal(t, 2, sum.RecordCount)
		assert.InDelta(t, 60.0, sum.TotalCO2e, 1e-9)
		assert.InDelta(t, 50.0, sum.ByScope["1"], 1e-9)
		assert.InDelta(t, 10.0, sum.ByScope["2"], 1e-9)
		assert.Len(t, sum.MonthlyTrend, 2)
	})

	t.Run("owner scoping on list", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodGet, "/api/records", otherToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		recs := decodeData[[]models.EmissionRecord](t, rec)
		assert.Empty(t, recs)
	})
}

func TestImportUpload(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/import", testToken, map[string]any{
		"type": "csv", "filename": "emissions.csv",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	job := decodeData[models.ImportJob](t, rec)
	assert.Equal(t, models.ImportPending, job.Status)

	csvBody := "date,source,value,emissionFactor\n" +
		"2025-06-01,grid,100,0.5\n" +
		"2025-06-02,grid,,0.5\n" // missing value

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "emissions.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csvBody))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import/"+job.ID+"/upload", &buf)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	res := httptest.NewRecorder()
	s.Handler().ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)

	done := decodeData[models.ImportJob](t, res)
	assert.Equal(t, models.ImportCompleted, done.Status)
	assert.Equal(t, 2, done.TotalRecords)
	assert.Equal(t, 1, done.ImportedRecords)
	assert.Equal(t, 1, done.FailedRecords)
	assert.Equal(t, 100, done.Progress)

	t.Run("second upload conflicts", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/import/"+job.ID+"/upload", strings.NewReader(""))
		req.Header.Set("Authorization", "Bearer "+testToken)
		res := httptest.NewRecorder()
		s.Handler().ServeHTTP(res, req)
		assert.Equal(t, http.StatusConflict, res.Code)
	})

	t.Run("csv template download", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodGet, "/api/import/templates/csv", testToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "date,source,value")
	})
}

func TestImportUploadMalformedFile(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/import", testToken, map[string]any{
		"type": "json", "filename": "emissions.json",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	job := decodeData[models.ImportJob](t, rec)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "emissions.json")
	require.NoError(t, err)
	_, err = part.Write([]byte("{not json"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import/"+job.ID+"/upload", &buf)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	res := httptest.NewRecorder()
	s.Handler().ServeHTTP(res, req)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	failed := decodeData[models.ImportJob](t, doRequest(t, s, http.MethodGet, "/api/import/"+job.ID, testToken, nil))
	assert.Equal(t, models.ImportFailed, failed.Status)
	assert.NotEmpty(t, failed.ErrorLog)
}

func TestNodesAndAssets(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/nodes", testToken, map[string]any{
		"name": "Factory A", "type": "production", "carbonIntensity": 12.5,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	node := decodeData[models.EcoNode](t, rec)

	rec = doRequest(t, s, http.MethodPut, "/api/nodes/"+node.ID, testToken, map[string]any{
		"connections": []string{"node-2"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeData[models.EcoNode](t, rec)
	assert.Equal(t, []string{"node-2"}, updated.Connections)
	assert.Equal(t, "Factory A", updated.Name)

	rec = doRequest(t, s, http.MethodPost, "/api/assets", testToken, map[string]any{
		"name": "Forest Credits", "type": "offset", "quantity": 100.0, "price": 12.0,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	asset := decodeData[models.CarbonAsset](t, rec)

	rec = doRequest(t, s, http.MethodDelete, "/api/assets/"+asset.ID, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, s, http.MethodDelete, "/api/assets/"+asset.ID, testToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
