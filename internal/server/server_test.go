package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aristath/cropwatch/internal/config"
	"github.com/aristath/cropwatch/internal/di"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServer(t *testing.T) (*Server, *di.Container) {
	t.Helper()

	cfg := &config.Config{
		Port:                8080,
		Version:             "1.4.2",
		DevMode:             true,
		CORSOrigins:         []string{"http://localhost:5173"},
		Seed:                11,
		MovingAveragePeriod: 3,
		LiveSchedule:        "@every 30m",
		RolloverSchedule:    "0 0 0 1 * *",
	}
	logger := zerolog.New(nil).Level(zerolog.Disabled)

	container, jobs, err := di.Wire(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(container.Close)
	container.Orchestrator.Wait()

	srv := New(Config{
		Log:       logger,
		Config:    cfg,
		Container: container,
		Jobs:      jobs,
	})
	srv.systemHandlers.systemStats = func() (float64, float64) { return 12.5, 40 }

	return srv, container
}

func TestServer_Health(t *testing.T) {
	srv, _ := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "cropwatch", body["service"])
	assert.Equal(t, "1.4.2", body["version"])
	assert.Equal(t, "ready", body["state"])
	assert.Equal(t, float64(1), body["generation"])
	assert.NotEmpty(t, body["snapshot_id"])
}

func TestServer_DashboardRoutesMounted(t *testing.T) {
	srv, _ := setupServer(t)

	tests := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodGet, "/api/dashboard", "", http.StatusOK},
		{http.MethodGet, "/api/dashboard/state", "", http.StatusOK},
		{http.MethodGet, "/api/catalog", "", http.StatusOK},
		{http.MethodPut, "/api/dashboard/selection", `{"crop":"Cotton"}`, http.StatusAccepted},
		{http.MethodGet, "/api/dashboard/export.xlsx", "", http.StatusOK},
		{http.MethodGet, "/api/unknown", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)

		assert.Equal(t, tt.status, w.Code, "%s %s", tt.method, tt.path)
	}
}

func TestServer_CORSPreflight(t *testing.T) {
	srv, _ := setupServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/dashboard/selection", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_EventsStream(t *testing.T) {
	srv, container := setupServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events/stream?types=SNAPSHOT_READY", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() map[string]interface{} {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "data: ") {
				var event map[string]interface{}
				require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event))
				return event
			}
		}
	}

	assert.Equal(t, "connected", readEvent()["type"])

	_, err = container.Orchestrator.OnCropSelected("Tomato")
	require.NoError(t, err)

	event := readEvent()
	assert.Equal(t, "SNAPSHOT_READY", event["type"])
	assert.Equal(t, "dashboard", event["module"])
	data := event["data"].(map[string]interface{})
	assert.Equal(t, "Tomato", data["crop"])
}

func TestOriginPatterns(t *testing.T) {
	assert.Equal(t, []string{"*"}, originPatterns([]string{"http://a.example", "*"}))
	assert.Equal(t,
		[]string{"localhost:5173", "dash.example.org"},
		originPatterns([]string{"http://localhost:5173", "https://dash.example.org", "not a url"}))
	assert.Nil(t, originPatterns(nil))
}
