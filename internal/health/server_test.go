package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(ctx context.Context) error {
	return p.err
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestHealthReportsBuildInfo(t *testing.T) {
	srv := NewServer(Config{
		ServiceName: "grid-oracle",
		Version:     "1.2.3",
		Commit:      "abc123",
		Logger:      testLogger(),
	})

	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body probeStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "grid-oracle", body.Service)
	assert.Equal(t, "1.2.3", body.Version)
	assert.Equal(t, "abc123", body.Commit)
}

func TestLiveAlwaysOK(t *testing.T) {
	srv := NewServer(Config{ServiceName: "grid-oracle", Logger: testLogger()})

	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyGatedOnFlag(t *testing.T) {
	srv := NewServer(Config{ServiceName: "grid-oracle", Logger: testLogger()})
	routes := srv.routes()

	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	srv.SetReady(true)
	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	srv.SetReady(false)
	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReadyChecksDatabase(t *testing.T) {
	srv := NewServer(Config{
		ServiceName: "grid-oracle",
		Logger:      testLogger(),
		DB:          stubPinger{err: errors.New("connection refused")},
	})
	srv.SetReady(true)

	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body readiness
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_ready", body.Status)
	assert.Equal(t, "ok", body.Checks["service"])
	assert.Contains(t, body.Checks["database"], "connection refused")
}

func TestReadyWithHealthyDatabase(t *testing.T) {
	srv := NewServer(Config{ServiceName: "grid-oracle", Logger: testLogger(), DB: stubPinger{}})
	srv.SetReady(true)

	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body readiness
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Checks["database"])
}

func TestMetricsMountedAtConfiguredPath(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# scrape me"))
	})
	srv := NewServer(Config{
		ServiceName: "grid-oracle",
		Logger:      testLogger(),
		Metrics:     handler,
		MetricsPath: "/internal/metrics",
	})

	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/internal/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "scrape me")
}

func TestDefaultPortFallback(t *testing.T) {
	t.Setenv("GRID_ORACLE_HEALTH_PORT", "")
	srv := NewServer(Config{ServiceName: "grid-oracle", Logger: testLogger()})
	assert.Equal(t, "8080", srv.cfg.Port)

	t.Setenv("GRID_ORACLE_HEALTH_PORT", "9999")
	srv = NewServer(Config{ServiceName: "grid-oracle", Logger: testLogger()})
	assert.Equal(t, "9999", srv.cfg.Port)
}
