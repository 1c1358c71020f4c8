package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LovitraMehta/ChattyBot/internal/metrics"
)

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealthzAlwaysOK(t *testing.T) {
	s := New(0, nil)
	rec, body := get(t, s.Router(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestReadyz(t *testing.T) {
	s := New(0, nil)
	h := s.Router()

	rec, body := get(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not_ready", body["status"])

	s.SetReady(true)
	assert.True(t, s.Ready())
	rec, body = get(t, h, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestReadyzFailingCheck(t *testing.T) {
	s := New(0, nil)
	s.AddCheck("storage", func(context.Context) error { return errors.New("read-only file system") })
	s.AddCheck("ffmpeg", func(context.Context) error { return nil })
	s.SetReady(true)

	rec, body := get(t, s.Router(), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, map[string]any{"storage": "read-only file system"}, body["checks"])
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New("chattybot", prometheus.NewRegistry())
	m.Requests.WithLabelValues("completed").Inc()

	rec, _ := get(t, New(0, m.Handler()).Router(), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `chattybot_requests_total{outcome="completed"} 1`)

	rec, _ = get(t, New(0, nil).Router(), "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
