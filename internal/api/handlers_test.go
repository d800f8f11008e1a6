package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/a20121248/network-dashboard/internal/dashboard"
	"github.com/a20121248/network-dashboard/internal/models"
	"github.com/a20121248/network-dashboard/internal/session"
)

const faultsCSV = "start_time;end_time;site_name;alarm_id;alarm_name;alarm_status\n" +
	"Aug 18, 2025 @ 06:00:00.000;Aug 18, 2025 @ 06:30:00.000;S1;A1;Link Down;CLEARED\n" +
	"Aug 18, 2025 @ 07:00:00.000;;S2;A2;Power Failure;ACTIVE\n"

func newTestServer(t *testing.T) (*httptest.Server, *session.Store) {
	t.Helper()
	store := session.NewStore(time.Hour, zap.NewNop())
	h := NewHandler(store, zap.NewNop(), 10*1024*1024)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, store
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, sessionID string, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if sessionID != "" {
		req.Header.Set(SessionHeader, sessionID)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func uploadFiles(t *testing.T, srv *httptest.Server, sessionID string, files map[string]string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = io.WriteString(part, content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/upload", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if sessionID != "" {
		req.Header.Set(SessionHeader, sessionID)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doJSON(t, srv, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "OK", string(body))
}

func TestCreateSession(t *testing.T) {
	srv, store := newTestServer(t)
	resp := doJSON(t, srv, http.MethodPost, "/api/session", "", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body models.SessionResponse
	decodeBody(t, resp, &body)
	assert.NotEmpty(t, body.SessionID)
	assert.Equal(t, body.SessionID, resp.Header.Get(SessionHeader))

	_, ok := store.Get(body.SessionID)
	assert.True(t, ok)
}

func TestUnknownSessionGetsReplaced(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doJSON(t, srv, http.MethodGet, "/api/status", "does-not-exist", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	echoed := resp.Header.Get(SessionHeader)
	assert.NotEmpty(t, echoed)
	assert.NotEqual(t, "does-not-exist", echoed)
}

func TestUploadClassifiesFiles(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := uploadFiles(t, srv, "", map[string]string{
		"averias_lima.csv": faultsCSV,
		"misterio.csv":     "a;b\n1;2\n",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body models.UploadResponse
	decodeBody(t, resp, &body)
	require.Len(t, body.Results, 2)

	byName := map[string]models.UploadFileResult{}
	for _, r := range body.Results {
		byName[r.FileName] = r
	}
	ok := byName["averias_lima.csv"]
	assert.Equal(t, "faults", ok.Category)
	assert.Equal(t, 2, ok.Rows)
	assert.Empty(t, ok.Error)

	assert.Equal(t, "type not recognized", byName["misterio.csv"].Error)
}

func TestUploadNoFiles(t *testing.T) {
	srv, _ := newTestServer(t)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/upload", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStatusAfterUpload(t *testing.T) {
	srv, _ := newTestServer(t)
	upload := uploadFiles(t, srv, "", map[string]string{"averias.csv": faultsCSV})
	id := upload.Header.Get(SessionHeader)
	require.NotEmpty(t, id)

	resp := doJSON(t, srv, http.MethodGet, "/api/status", id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body models.StatusResponse
	decodeBody(t, resp, &body)
	byCategory := map[string]models.DatasetStatus{}
	for _, d := range body.Datasets {
		byCategory[d.Category] = d
	}
	faults := byCategory["faults"]
	assert.True(t, faults.Loaded)
	assert.Equal(t, "averias.csv", faults.FileName)
	assert.Equal(t, 2, faults.Rows)
	require.NotNil(t, faults.UploadedAt)
	assert.False(t, byCategory["performance"].Loaded)
}

func TestFaultsSummaryEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	upload := uploadFiles(t, srv, "", map[string]string{"averias.csv": faultsCSV})
	id := upload.Header.Get(SessionHeader)

	resp := doJSON(t, srv, http.MethodPost, "/api/faults/summary", id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body dashboard.FaultsSummary
	decodeBody(t, resp, &body)
	assert.True(t, body.Loaded)
	assert.Equal(t, 2, body.TotalFaults)
	assert.Equal(t, 2, body.FilteredFaults)
}

func TestFaultsSummaryWithFilterBody(t *testing.T) {
	srv, _ := newTestServer(t)
	upload := uploadFiles(t, srv, "", map[string]string{"averias.csv": faultsCSV})
	id := upload.Header.Get(SessionHeader)

	resp := doJSON(t, srv, http.MethodPost, "/api/faults/summary", id, `{"sites":["S1"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body dashboard.FaultsSummary
	decodeBody(t, resp, &body)
	assert.Equal(t, 1, body.FilteredFaults)
}

func TestSummaryInvalidBody(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doJSON(t, srv, http.MethodPost, "/api/faults/summary", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestClearDatasets(t *testing.T) {
	srv, _ := newTestServer(t)
	upload := uploadFiles(t, srv, "", map[string]string{"averias.csv": faultsCSV})
	id := upload.Header.Get(SessionHeader)

	resp := doJSON(t, srv, http.MethodDelete, "/api/datasets", id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	status := doJSON(t, srv, http.MethodGet, "/api/status", id, "")
	var body models.StatusResponse
	decodeBody(t, status, &body)
	for _, d := range body.Datasets {
		assert.False(t, d.Loaded)
	}
}

func TestFaultsExportCSV(t *testing.T) {
	srv, _ := newTestServer(t)
	upload := uploadFiles(t, srv, "", map[string]string{"averias.csv": faultsCSV})
	id := upload.Header.Get(SessionHeader)

	resp := doJSON(t, srv, http.MethodPost, "/api/faults/export", id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "averias_filtradas_")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".csv")

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "alarm_id")
}

func TestFaultsExportXLSX(t *testing.T) {
	srv, _ := newTestServer(t)
	upload := uploadFiles(t, srv, "", map[string]string{"averias.csv": faultsCSV})
	id := upload.Header.Get(SessionHeader)

	resp := doJSON(t, srv, http.MethodPost, "/api/faults/export", id, `{"format":"xlsx"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")
}

func TestExportUnknownFormat(t *testing.T) {
	srv, _ := newTestServer(t)
	upload := uploadFiles(t, srv, "", map[string]string{"averias.csv": faultsCSV})
	id := upload.Header.Get(SessionHeader)

	resp := doJSON(t, srv, http.MethodPost, "/api/faults/export", id, `{"format":"pdf"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExportWithoutDataset(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doJSON(t, srv, http.MethodPost, "/api/performance/export", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProvisioningDrillFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	provisioningCSV := "Site_Name;Departamento;Provincia;Distrito;Localidad\n" +
		"S1;AMAZONAS;BAGUA;ARAMANGO;NUEVO HORIZONTE\n" +
		"S2;CUSCO;CALCA;PISAC;PISAC\n"
	upload := uploadFiles(t, srv, "", map[string]string{"provision.csv": provisioningCSV})
	id := upload.Header.Get(SessionHeader)
	require.NotEmpty(t, id)

	resp := doJSON(t, srv, http.MethodPost, "/api/provisioning/drill", id, `{"level":0,"value":"AMAZONAS"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body dashboard.ProvisioningSummary
	decodeBody(t, resp, &body)
	require.Len(t, body.Levels, 2)
	assert.Equal(t, "AMAZONAS", body.Levels[0].Selected)
	assert.Equal(t, []string{"BAGUA"}, body.Levels[1].Options)

	// Reset clears the navigation back to the top level. Decode into a fresh
	// struct so omitted fields from the previous response cannot linger.
	resp = doJSON(t, srv, http.MethodPost, "/api/provisioning/drill/reset", id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var reset dashboard.ProvisioningSummary
	decodeBody(t, resp, &reset)
	require.Len(t, reset.Levels, 1)
	assert.Empty(t, reset.Levels[0].Selected)
}

func TestOverviewEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	upload := uploadFiles(t, srv, "", map[string]string{"averias.csv": faultsCSV})
	id := upload.Header.Get(SessionHeader)

	resp := doJSON(t, srv, http.MethodGet, "/api/overview", id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body dashboard.Overview
	decodeBody(t, resp, &body)
	assert.Equal(t, 1, body.DatasetsLoaded)
	assert.Equal(t, 2, body.TotalRecords)
}
