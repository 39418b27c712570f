package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/config"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/database"
)

func testConfig(debug bool) *config.Config {
	return &config.Config{
		Environment:    "test",
		BackendHost:    "http://127.0.0.1:1",
		BackendTimeout: time.Second,
		SessionSecret:  "secret",
		SessionTTL:     time.Hour,
		SessionStore:   database.DriverMemory,
		AllowedOrigins: []string{"*"},
		LoginRateLimit: 10,
		Debug:          debug,
	}
}

func serve(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestNewRouter_DebugRoutes(t *testing.T) {
	t.Cleanup(func() { _ = database.ClosePool() })

	cfg := testConfig(true)
	app, err := NewApp(cfg)
	require.NoError(t, err)
	r := NewRouter(cfg, app)

	rec := serve(t, r, http.MethodGet, "/debug/session-store")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"workspaces":0`)

	rec = serve(t, r, http.MethodGet, "/debug/env-check")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"google_client_id":false`)

	// an unreachable backend only shows up in the report
	rec = serve(t, r, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
	assert.Contains(t, rec.Body.String(), `"backend_status":"unhealthy`)
}

func TestNewRouter_NoDebugRoutesByDefault(t *testing.T) {
	t.Cleanup(func() { _ = database.ClosePool() })

	cfg := testConfig(false)
	app, err := NewApp(cfg)
	require.NoError(t, err)
	r := NewRouter(cfg, app)

	assert.Equal(t, http.StatusNotFound, serve(t, r, http.MethodGet, "/debug/session-store").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(t, r, http.MethodDelete, "/login").Code)

	rec := serve(t, r, http.MethodGet, "/tasks")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}
