package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/butinmaker/butinmaker/internal/config"
	"github.com/butinmaker/butinmaker/internal/health"
	"github.com/butinmaker/butinmaker/internal/logger"
	"github.com/butinmaker/butinmaker/internal/scheduler"
	"github.com/butinmaker/butinmaker/internal/settings"
	"github.com/butinmaker/butinmaker/internal/testutil"
	"github.com/butinmaker/butinmaker/internal/workflow"
)

func setupTestServer(t *testing.T) *Server {
	t.Helper()

	tdb := testutil.NewTestDB(t)

	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Paths.HardlinkDir = t.TempDir()
	cfg.Paths.OutputDir = t.TempDir()
	cfg.TMDB.APIKey = ""
	cfg.Tracker.APIKey = ""
	cfg.MediaInfo.MediaInfoPath = filepath.Join(cfg.Paths.DataDir, "no-mediainfo")
	cfg.MediaInfo.FFprobePath = filepath.Join(cfg.Paths.DataDir, "no-ffprobe")

	server, err := NewServer(context.Background(), tdb.DB, cfg, logger.NewRecent(50), tdb.Logger)
	require.NoError(t, err)
	return server
}

func (s *Server) serve(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	s := setupTestServer(t)

	rec := s.serve(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, config.Version, resp["version"])
}

func TestSystemHealth(t *testing.T) {
	s := setupTestServer(t)

	rec := s.serve(http.MethodGet, "/api/v1/system/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var report health.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))

	byName := map[string]health.Result{}
	for _, c := range report.Checks {
		byName[c.Name] = c
	}
	assert.Equal(t, health.StatusOK, byName["database"].Status)
	assert.Equal(t, health.StatusOK, byName["hardlink_dir"].Status)
	assert.Equal(t, health.StatusWarning, byName["tracker"].Status)
	assert.Equal(t, health.StatusWarning, report.Status)
}

func TestSecretFileCreated(t *testing.T) {
	s := setupTestServer(t)

	info, err := os.Stat(filepath.Join(s.cfg.Paths.DataDir, SecretFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSessionRoutes(t *testing.T) {
	s := setupTestServer(t)

	rec := s.serve(http.MethodPost, "/api/v1/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var st workflow.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	require.NotEmpty(t, st.ID)

	rec = s.serve(http.MethodGet, "/api/v1/sessions/"+st.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.serve(http.MethodPut, "/api/v1/sessions/"+st.ID+"/description", `{"description":"[b]Film[/b]"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.serve(http.MethodGet, "/api/v1/sessions/"+st.ID+"/preview", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<strong>Film</strong>")

	rec = s.serve(http.MethodDelete, "/api/v1/sessions/"+st.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.serve(http.MethodGet, "/api/v1/sessions/"+st.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSettingsApplyToClients(t *testing.T) {
	s := setupTestServer(t)
	require.False(t, s.trackerClient.IsConfigured())

	rec := s.serve(http.MethodPut, "/api/v1/settings", `{"tracker_api_key":"abcdef123456"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got settings.Settings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "********3456", got.TrackerAPIKey)
	assert.True(t, s.trackerClient.IsConfigured())

	rec = s.serve(http.MethodPut, "/api/v1/settings", `{"tracker_base_url":"not a url"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTasksRegistered(t *testing.T) {
	s := setupTestServer(t)

	rec := s.serve(http.MethodGet, "/api/v1/tasks", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var tasks []scheduler.TaskInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))

	ids := make([]string, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	assert.ElementsMatch(t, []string{
		scheduler.TaxonomyEvictTaskID,
		scheduler.TaxonomyRefreshTaskID,
		scheduler.SessionPruneTaskID,
		rateLimitCleanupTaskID,
	}, ids)
}

func TestAPIResponsesNotCached(t *testing.T) {
	s := setupTestServer(t)

	rec := s.serve(http.MethodPost, "/api/v1/bbcode/preview", `{"bbcode":"[i]x[/i]"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}
