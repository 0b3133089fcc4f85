package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mobilityiq/mobilityiq/internal/design"
	"github.com/mobilityiq/mobilityiq/internal/duckdb"
	"github.com/mobilityiq/mobilityiq/internal/model"
	"github.com/mobilityiq/mobilityiq/internal/planner"
	"github.com/mobilityiq/mobilityiq/internal/report"
	"github.com/mobilityiq/mobilityiq/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestServer(t *testing.T) (*Server, *gin.Engine) {
	t.Helper()
	store, err := duckdb.NewStore(nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := planner.NewService(session.NewState(), store, report.NewExporter(0), nil)
	srv := NewServer("127.0.0.1:0", svc, nil)
	return srv, srv.routes()
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthEndpoint(t *testing.T) {
	_, r := newTestServer(t)

	w := doJSON(t, r, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string]any](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "dashboard", body["screen"])
	assert.Equal(t, "original", body["active_mode"])
}

func TestHealthEndpoint_WrongMethod(t *testing.T) {
	_, r := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/health", nil)
	if w.Code != http.StatusMethodNotAllowed && w.Code != http.StatusNotFound {
		t.Errorf("health POST status = %d, want 405 or 404", w.Code)
	}
}

func TestNavigationEndpoints(t *testing.T) {
	_, r := newTestServer(t)

	for _, screen := range []string{"bike", "reports"} {
		w := doJSON(t, r, http.MethodPost, "/api/navigation", map[string]string{"screen": screen})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := doJSON(t, r, http.MethodGet, "/api/navigation", nil)
	require.Equal(t, http.StatusOK, w.Code)
	st := decode[session.NavigationState](t, w)
	assert.Equal(t, session.ScreenReports, st.Active)
	assert.Equal(t, session.ScreenBike, st.Previous)

	w = doJSON(t, r, http.MethodPost, "/api/navigation", map[string]string{"screen": "settings"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/navigation", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/navigation/back", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	st = decode[session.NavigationState](t, w)
	assert.Equal(t, session.NavigationState{Active: session.ScreenBike, Previous: session.ScreenReports}, st)
}

func TestNetworkEndpoints_JSONUpload(t *testing.T) {
	_, r := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/network/mode", map[string]string{"mode": "uploaded"})
	require.Equal(t, http.StatusOK, w.Code)
	st := decode[model.NetworkStatus](t, w)
	assert.Equal(t, session.ModeOriginal, st.ActiveMode)
	assert.False(t, st.HasUploadedNetwork)

	w = doJSON(t, r, http.MethodPost, "/api/network/upload", map[string]string{"gps": "g", "crashes": "c"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/network/upload", map[string]string{"gps": "g", "crashes": "c", "st": "s"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	st = decode[model.NetworkStatus](t, w)
	assert.Equal(t, session.ModeUploaded, st.ActiveMode)
	assert.True(t, st.HasUploadedNetwork)
	assert.NotContains(t, w.Body.String(), `"gps":"g"`)

	w = doJSON(t, r, http.MethodPost, "/api/network/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, session.ModeOriginal, decode[model.NetworkStatus](t, w).ActiveMode)

	w = doJSON(t, r, http.MethodPost, "/api/network/mode", map[string]string{"mode": "baseline"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNetworkEndpoints_MultipartUpload(t *testing.T) {
	_, r := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, body := range map[string]string{"gps": "veh,lat\n1,2\n", "crashes": "id\n1\n", "st": "trip\nT1\n"} {
		fw, err := mw.CreateFormFile(field, field+".txt")
		require.NoError(t, err)
		_, err = fw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/network/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	st := decode[model.NetworkStatus](t, w)
	require.NotNil(t, st.Upload)
	assert.Equal(t, len("veh,lat\n1,2\n"), st.Upload.GPSBytes)

	w = doJSON(t, r, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[model.DashboardView](t, w)
	assert.Equal(t, "68%", view.Cards[0].Value)
}

func TestMultipartUpload_MissingFile(t *testing.T) {
	_, r := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("gps", "GPS.txt")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("g"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/network/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "crashes.txt")
}

func TestDisplayEndpoints(t *testing.T) {
	_, r := newTestServer(t)

	w := doJSON(t, r, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[model.DashboardView](t, w)
	assert.Len(t, view.Cards, 4)
	assert.Equal(t, "↓ 2% from last week", view.Cards[0].Change)

	w = doJSON(t, r, http.MethodGet, "/api/alerts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[map[string][]model.Alert](t, w)["alerts"], 5)

	w = doJSON(t, r, http.MethodGet, "/api/routes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[map[string][]model.RouteDetail](t, w)["routes"], 3)

	w = doJSON(t, r, http.MethodGet, "/api/corridor", nil)
	require.Equal(t, http.StatusOK, w.Code)
	corr := decode[model.CorridorView](t, w)
	assert.Equal(t, "Main St & 5th Ave", corr.Locations[0].Location)

	w = doJSON(t, r, http.MethodGet, "/api/corridor/tsp", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 85, decode[model.TSPSimulation](t, w).ReliabilityScore)

	w = doJSON(t, r, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7.7, decode[model.ScenarioBoard](t, w).Budget.RemainingM)
}

func TestBikeEstimateEndpoint(t *testing.T) {
	_, r := newTestServer(t)

	w := doJSON(t, r, http.MethodGet, "/api/bike/estimate?segments=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	est := decode[model.BikeEstimate](t, w)
	assert.Equal(t, 2, est.Segments)
	assert.Equal(t, 58, est.CrashReductionPct)

	w = doJSON(t, r, http.MethodGet, "/api/bike/estimate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[model.BikeEstimate](t, w).Segments)

	w = doJSON(t, r, http.MethodGet, "/api/bike/estimate?segments=-4", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/bike/estimate?segments=100000000000000000", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/bike/estimate?segments=%d", design.MaxSegments), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Positive(t, decode[model.BikeEstimate](t, w).TotalK)
}

func TestReportEndpoints(t *testing.T) {
	_, r := newTestServer(t)

	w := doJSON(t, r, http.MethodGet, "/api/reports/templates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]json.RawMessage](t, w)
	var tpls []model.ReportTemplate
	require.NoError(t, json.Unmarshal(body["templates"], &tpls))
	assert.Len(t, tpls, 4)

	w = doJSON(t, r, http.MethodPost, "/api/reports/export", model.ExportRequest{Format: "pdf", Template: "executive"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ack := decode[model.ExportAck](t, w)
	assert.Equal(t, "Report downloaded as PDF", ack.Message)
	assert.NotEmpty(t, ack.ID)

	w = doJSON(t, r, http.MethodPost, "/api/reports/export", model.ExportRequest{Format: "odt", Template: "executive"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/reports/exports", nil)
	require.Equal(t, http.StatusOK, w.Code)
	recent := decode[map[string][]model.ExportAck](t, w)["exports"]
	require.Len(t, recent, 1)
	assert.Equal(t, ack.ID, recent[0].ID)
}

func TestServerStartStop(t *testing.T) {
	srv, _ := newTestServer(t)
	require.NoError(t, srv.Start())
	gin.SetMode(gin.TestMode)

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + srv.Addr() + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Stop())
}
