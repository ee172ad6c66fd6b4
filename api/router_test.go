package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/botique/storefront-backend/pkg/config"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(context.Context) error { return f.err }

func testConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: "dev", Port: "8080"}}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	handler := NewRouter(RouterParams{Config: testConfig()})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestReadyzReportsDependencies(t *testing.T) {
	t.Parallel()

	handler := NewRouter(RouterParams{
		Config: testConfig(),
		DB:     &fakePinger{},
		Redis:  &fakePinger{err: errors.New("connection refused")},
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), `"db":"ok"`)
	require.Contains(t, rec.Body.String(), `"redis":"unreachable"`)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_counter_total"})
	reg.MustRegister(counter)
	counter.Inc()

	handler := NewRouter(RouterParams{Config: testConfig(), Registry: reg})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "test_counter_total 1")
}
