package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IT21259166/anbd-core/internal/api/websocket"
	"github.com/IT21259166/anbd-core/internal/config"
	"github.com/IT21259166/anbd-core/internal/detector"
	"github.com/IT21259166/anbd-core/internal/executor"
	"github.com/IT21259166/anbd-core/internal/ingest"
	"github.com/IT21259166/anbd-core/internal/models"
	"github.com/IT21259166/anbd-core/internal/rca"
	"github.com/IT21259166/anbd-core/internal/store"
	"github.com/IT21259166/anbd-core/pkg/cache"
	"github.com/IT21259166/anbd-core/pkg/logger"
)

func newTestServer(t *testing.T, ingestDir string) (*Server, *store.Store) {
	t.Helper()
	log := logger.NewMockLogger(&strings.Builder{})
	st := store.New(cache.NewMemoryCache(log), log, 0)

	det := detector.New(0.5, log)
	exec := executor.Func(func(_ context.Context, _, _ string) (executor.Result, error) {
		return executor.Result{Output: "ok"}, nil
	})
	ts, err := rca.NewTroubleshooter(
		config.Type2Config{Categories: config.DefaultType2Categories(), ProbeTimeoutMs: 200},
		config.NetworkConfig{}, exec, log)
	require.NoError(t, err)
	orch := rca.NewOrchestrator(
		rca.NewRuleClassifier(config.Type1Config{Thresholds: config.DefaultType1Thresholds()}),
		ts, st, nil, nil, log)

	monitor := ingest.NewMonitor(config.IngestConfig{Directory: ingestDir, IntervalSeconds: 60},
		det, orch, st, nil, log)

	cfg := &config.Config{Port: 0, Environment: "test"}
	srv := NewServer(context.Background(), cfg, Deps{
		Detector:     det,
		Orchestrator: orch,
		Monitor:      monitor,
		Events:       st,
		Responses:    st,
		Hub:          websocket.NewHub(log),
	}, log)
	return srv, st
}

func doJSON(t *testing.T, srv *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	var parsed map[string]interface{}
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &parsed)
	}
	return w, parsed
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, t.TempDir())

	w, body := doJSON(t, srv, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
	model := body["model"].(map[string]interface{})
	assert.Equal(t, "not_initialized", model["status"])
}

func TestDetect_UnloadedModelReturnsSafeDefault(t *testing.T) {
	srv, _ := newTestServer(t, t.TempDir())

	w, body := doJSON(t, srv, http.MethodPost, "/api/v1/detect",
		`{"features": {"Flow Bytes/s": 9999999}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["is_anomalous"])
	pred := body["prediction"].(map[string]interface{})
	assert.Equal(t, 0.0, pred["reconstruction_error"])
}

func TestDetect_RejectsMissingFeatures(t *testing.T) {
	srv, _ := newTestServer(t, t.TempDir())

	w, _ := doJSON(t, srv, http.MethodPost, "/api/v1/detect", `{"log_id": "x"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestThresholdUpdate_ClampsLowValues(t *testing.T) {
	srv, _ := newTestServer(t, t.TempDir())

	w, body := doJSON(t, srv, http.MethodPut, "/api/v1/model/threshold", `{"threshold": 0.001}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.01, body["threshold"])

	w, _ = doJSON(t, srv, http.MethodPut, "/api/v1/model/threshold", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestModelStatus(t *testing.T) {
	srv, _ := newTestServer(t, t.TempDir())

	w, body := doJSON(t, srv, http.MethodGet, "/api/v1/model/status", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "not_initialized", body["status"])
}

func TestEvents_PaginationAndLookup(t *testing.T) {
	srv, st := newTestServer(t, t.TempDir())

	for _, id := range []string{"log_a", "log_b", "log_c"} {
		require.NoError(t, st.CreateEvent(context.Background(), &models.AnomalyEvent{
			LogID:     id,
			Timestamp: time.Now().UTC(),
			SrcIP:     "192.168.10.5",
			DstIP:     "192.168.20.9",
		}))
	}

	w, body := doJSON(t, srv, http.MethodGet, "/api/v1/events?limit=2", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3.0, body["total"])
	assert.Len(t, body["events"].([]interface{}), 2)

	w, _ = doJSON(t, srv, http.MethodGet, "/api/v1/events/log_b", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, srv, http.MethodGet, "/api/v1/events/log_zzz", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResponses_NotFound(t *testing.T) {
	srv, _ := newTestServer(t, t.TempDir())

	w, _ := doJSON(t, srv, http.MethodGet, "/api/v1/responses/log_zzz", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMonitoringLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, t.TempDir())

	w, body := doJSON(t, srv, http.MethodGet, "/api/v1/monitoring/status", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["running"])

	w, body = doJSON(t, srv, http.MethodPost, "/api/v1/monitoring/start", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["running"])

	// Starting twice conflicts.
	w, _ = doJSON(t, srv, http.MethodPost, "/api/v1/monitoring/start", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w, body = doJSON(t, srv, http.MethodPost, "/api/v1/monitoring/stop", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["running"])

	w, _ = doJSON(t, srv, http.MethodPost, "/api/v1/monitoring/stop", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}
