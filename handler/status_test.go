package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jameshpark/meowkitty/config"
	"github.com/jameshpark/meowkitty/model"
	"github.com/jameshpark/meowkitty/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticReporter struct {
	progress *pipeline.Progress
	last     *model.RunSummary
}

func (r *staticReporter) Progress() *pipeline.Progress { return r.progress }
func (r *staticReporter) Last() *model.RunSummary      { return r.last }

func newTestServer(reporter RunReporter) *gin.Engine {
	cfg := &config.StatusConfig{Port: ":0", Mode: gin.TestMode}
	return NewStatusServer(cfg, reporter, BuildInfo{Version: "1.2.3", GitCommit: "abc"}).Router()
}

func get(t *testing.T, r http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(t, err)
	r.ServeHTTP(w, req)
	return w
}

func TestStatusHealthAndVersion(t *testing.T) {
	r := newTestServer(&staticReporter{progress: &pipeline.Progress{}})

	w := get(t, r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","version":"1.2.3"}`, w.Body.String())

	w = get(t, r, "/version")
	assert.Equal(t, http.StatusOK, w.Code)
	var build BuildInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &build))
	assert.Equal(t, "abc", build.GitCommit)
}

func TestStatusStats(t *testing.T) {
	r := newTestServer(&staticReporter{progress: &pipeline.Progress{}})

	w := get(t, r, "/stats")
	require.Equal(t, http.StatusOK, w.Code)

	var snap pipeline.ProgressSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "INIT", snap.State)
	assert.Zero(t, snap.Frames)
}

func TestStatusLastRun(t *testing.T) {
	reporter := &staticReporter{progress: &pipeline.Progress{}}
	r := newTestServer(reporter)

	w := get(t, r, "/stats/last")
	assert.Equal(t, http.StatusNotFound, w.Code)

	reporter.last = &model.RunSummary{RunID: "run-1", Frames: 12, CatFrames: 4, Outcome: "DRAINED"}
	w = get(t, r, "/stats/last")
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Data)
	assert.Equal(t, 4, resp.Data.CatFrames)
}

func TestStatusMetrics(t *testing.T) {
	r := newTestServer(&staticReporter{progress: &pipeline.Progress{}})

	w := get(t, r, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "meowkitty_frames_total")
}
