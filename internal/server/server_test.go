package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Rana718/seedforge/internal/engine"
	"github.com/Rana718/seedforge/internal/metrics"
	"github.com/Rana718/seedforge/internal/overlay"
	"github.com/Rana718/seedforge/internal/repository"
	"github.com/Rana718/seedforge/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"
)

var fixedNow = time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)

type harness struct {
	server *Server
	dir    string
}

func newHarness(t *testing.T, opts ...engine.Option) *harness {
	t.Helper()
	logger := zaptest.NewLogger(t)
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), logger)
	clock := func() time.Time { return fixedNow }

	dir := t.TempDir()
	repo, err := repository.NewFileRepository(dir + "/schemas")
	require.NoError(t, err)
	store, err := storage.NewLocalStore(dir + "/exports")
	require.NoError(t, err)

	base := []engine.Option{engine.WithLogger(logger), engine.WithMetrics(m), engine.WithClock(clock)}
	srv := New(Deps{
		Engine:  engine.New(append(base, opts...)...),
		Repo:    repo,
		Store:   store,
		Metrics: m,
		Logger:  logger,
		Now:     clock,
	})
	return &harness{server: srv, dir: dir}
}

func (h *harness) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := h.server.App().Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, data
}

func decodeBody(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out), string(data))
	return out
}

const numberSchema = `[{"id":"a","name":"id","type":"Number","options":{"min":1,"max":1000}}]`

func TestHealthAndTypes(t *testing.T) {
	h := newHarness(t)

	resp, data := h.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, data)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["overlay"])

	resp, data = h.do(t, http.MethodGet, "/api/types", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `"name":"Custom List"`)
}

func TestValidate(t *testing.T) {
	h := newHarness(t)

	_, data := h.do(t, http.MethodPost, "/api/validate", `{"schema":[],"config":{}}`)
	body := decodeBody(t, data)
	assert.Equal(t, false, body["valid"])
	assert.Equal(t, "empty", body["kind"])

	_, data = h.do(t, http.MethodPost, "/api/validate", `{"schema":[{"id":"q","name":"qty","type":"Number","options":{"min":100,"max":1}}],"config":{}}`)
	body = decodeBody(t, data)
	assert.Equal(t, true, body["valid"])
	issues := body["issues"].(map[string]any)
	assert.Equal(t, []any{"min must not exceed max"}, issues["q"])
}

func TestPreviewAndGenerate(t *testing.T) {
	h := newHarness(t)

	resp, data := h.do(t, http.MethodPost, "/api/preview", `{"schema":`+numberSchema+`,"config":{}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	body := decodeBody(t, data)
	assert.Len(t, body["data"], 10)
	meta := body["metadata"].(map[string]any)
	assert.Equal(t, false, meta["deterministic"])
	assert.Contains(t, meta, "timings")

	resp, data = h.do(t, http.MethodPost, "/api/generate", `{"schema":`+numberSchema+`,"config":{"rowCount":3,"useSeed":true,"seed":"abc"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	body = decodeBody(t, data)
	assert.Len(t, body["data"], 3)
	assert.Equal(t, true, body["metadata"].(map[string]any)["deterministic"])

	resp, data = h.do(t, http.MethodPost, "/api/generate", `{"schema":`+numberSchema+`,"config":{"rowCount":0}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalidRowCount", decodeBody(t, data)["kind"])
}

func TestGenerateRejectsMissingPrompt(t *testing.T) {
	h := newHarness(t)
	resp, data := h.do(t, http.MethodPost, "/api/generate", `{"schema":[{"id":"b","name":"bio","type":"AI Generated"},{"id":"c","name":"city","type":"City"}],"config":{"rowCount":2}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "missingAIPrompt", decodeBody(t, data)["kind"])
}

func TestExportCSV(t *testing.T) {
	h := newHarness(t)
	resp, data := h.do(t, http.MethodPost, "/api/export", `{"schema":`+numberSchema+`,"config":{"rowCount":5,"format":"csv","includeHeader":true,"lineEnding":"Unix (LF)"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="test-data-2026-10-18.csv"`, resp.Header.Get("Content-Disposition"))
	assert.Equal(t, "false", resp.Header.Get("X-Seedforge-Deterministic"))
	lines := strings.Split(string(data), "\n")
	assert.Len(t, lines, 6)
	assert.Equal(t, "id", lines[0])
}

func TestExportFormatLabelsAndErrors(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.do(t, http.MethodPost, "/api/export", `{"schema":`+numberSchema+`,"config":{"rowCount":2,"format":"Excel"}}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))

	resp, data := h.do(t, http.MethodPost, "/api/export", `{"schema":`+numberSchema+`,"config":{"rowCount":2,"format":"pdf"}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "unsupportedFormat", decodeBody(t, data)["kind"])

	resp, _ = h.do(t, http.MethodPost, "/api/export", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExportStore(t *testing.T) {
	h := newHarness(t)
	resp, data := h.do(t, http.MethodPost, "/api/export", `{"store":true,"schema":`+numberSchema+`,"config":{"rowCount":2,"format":"json","datasetName":"orders"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	body := decodeBody(t, data)
	stored := body["stored"].(map[string]any)
	assert.Equal(t, "orders-2026-10-18.json", stored["key"])
	assert.FileExists(t, h.dir+"/exports/orders-2026-10-18.json")
	assert.Equal(t, "orders-2026-10-18.json", body["artifact"].(map[string]any)["name"])
}

func TestOverlayFailureIsBadGateway(t *testing.T) {
	failing := overlay.Func(func(ctx context.Context, req overlay.Request) (*overlay.Response, error) {
		return nil, errors.New("upstream exploded")
	})
	h := newHarness(t, engine.WithOverlay(failing))

	resp, data := h.do(t, http.MethodPost, "/api/generate", `{"schema":[{"id":"b","name":"bio","type":"AI Generated"}],"config":{"rowCount":2,"enhancementPrompt":"pirates"}}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "overlayFailed", decodeBody(t, data)["kind"])
}

func TestSpreadsheet(t *testing.T) {
	h := newHarness(t)

	resp, data := h.do(t, http.MethodPost, "/api/export/spreadsheet", `{"name":"cases","rows":[{"b":1,"a":"x"}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.Equal(t, `attachment; filename="cases-2026-10-18.xlsx"`, resp.Header.Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))

	resp, _ = h.do(t, http.MethodPost, "/api/export/spreadsheet", `{"rows":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSpreadsheetAcceptsData(t *testing.T) {
	h := newHarness(t)

	resp, data := h.do(t, http.MethodPost, "/api/export/spreadsheet", `{"data":[{"id":1,"name":"Al"}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.Equal(t, `attachment; filename="test-data-2026-10-18.xlsx"`, resp.Header.Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"id", "name"}, rows[0])
	assert.Equal(t, "Al", rows[1][1])

	resp, data = h.do(t, http.MethodPost, "/api/export/spreadsheet", `{"data":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "data rows are required", decodeBody(t, data)["error"])
}

func TestSchemaEndpoints(t *testing.T) {
	h := newHarness(t)

	resp, data := h.do(t, http.MethodPost, "/api/schemas", `{"name":"people","fields":`+numberSchema+`}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	id := decodeBody(t, data)["id"].(string)
	require.NotEmpty(t, id)

	resp, data = h.do(t, http.MethodGet, "/api/schemas", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeBody(t, data)["schemas"], 1)

	resp, data = h.do(t, http.MethodGet, "/api/schemas/"+id, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody(t, data)
	assert.Equal(t, "people", got["name"])
	field := got["fields"].([]any)[0].(map[string]any)
	assert.NotEqual(t, "a", field["id"])

	resp, _ = h.do(t, http.MethodDelete, "/api/schemas/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = h.do(t, http.MethodGet, "/api/schemas/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = h.do(t, http.MethodPost, "/api/schemas", `{"name":"  ","fields":`+numberSchema+`}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = h.do(t, http.MethodPost, "/api/schemas", `{"name":"none","fields":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSchemaEndpointsWithoutRepository(t *testing.T) {
	srv := New(Deps{Logger: zaptest.NewLogger(t)})
	req := httptest.NewRequest(http.MethodGet, "/api/schemas", nil)
	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodPost, "/api/preview", `{"schema":`+numberSchema+`,"config":{}}`)

	resp, data := h.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "seedforge_http_requests_total")
	assert.Contains(t, string(data), `endpoint="/api/preview"`)
}
