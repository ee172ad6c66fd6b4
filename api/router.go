// Package api exposes the operational HTTP surface: liveness, readiness, and
// Prometheus metrics. Storefront traffic never enters through HTTP; the
// domain services are consumed as Go-level contracts.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/botique/storefront-backend/pkg/config"
	"github.com/botique/storefront-backend/pkg/logger"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterParams groups the dependencies of the ops router. Redis and the
// metrics registry are optional.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       Pinger
	Redis    Pinger
	Registry *prometheus.Registry
}

// NewRouter builds the ops handler that cmd/api wires into its server.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", healthz(params.Config))
	r.Get("/readyz", readyz(params))
	if params.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Registry, promhttp.HandlerOpts{}))
	}

	return r
}

func healthz(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{
			"status": "ok",
			"env":    cfg.App.Env,
		})
	}
}

func readyz(params RouterParams) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{}
		ready := true

		if params.DB != nil {
			checks["db"] = "ok"
			if err := params.DB.Ping(r.Context()); err != nil {
				checks["db"] = "unreachable"
				ready = false
				if params.Logger != nil {
					params.Logger.Error(r.Context(), "readiness db ping failed", err)
				}
			}
		}
		if params.Redis != nil {
			checks["redis"] = "ok"
			if err := params.Redis.Ping(r.Context()); err != nil {
				checks["redis"] = "unreachable"
				ready = false
				if params.Logger != nil {
					params.Logger.Error(r.Context(), "readiness redis ping failed", err)
				}
			}
		}

		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		writeStatus(w, status, checks)
	}
}

func writeStatus(w http.ResponseWriter, status int, payload map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
