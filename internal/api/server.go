// Package api serves the status, health and metrics endpoints.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Proton-105/lanxat-bot/internal/health"
	"github.com/Proton-105/lanxat-bot/pkg/logger"
)

// Version is reported by /status. Override at build time with
// -ldflags "-X github.com/Proton-105/lanxat-bot/internal/api.Version=...".
var Version = "v0.7.0 - Translation via Google"

// ReadinessProbe reports dependency health; *lifecycle.Probes implements it.
type ReadinessProbe interface {
	Readiness(ctx context.Context) (health.Report, error)
}

// NewRouter builds the HTTP handler. A nil probe makes /health always
// report ok.
func NewRouter(log *slog.Logger, probe ReadinessProbe) http.Handler {
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(logger.Middleware)
	r.Use(RequestLogger(log))

	r.Get("/status", statusHandler)
	r.Get("/health", healthHandler(log, probe))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

func statusHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(Version))
}

func healthHandler(log *slog.Logger, probe ReadinessProbe) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := health.Report{Status: health.StatusOK, Checks: map[string]string{}}
		status := http.StatusOK

		if probe != nil {
			var err error
			report, err = probe.Readiness(r.Context())
			if err != nil {
				status = http.StatusServiceUnavailable
				log.Warn("service not ready", slog.Any("error", err))
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(report); err != nil {
			log.Error("failed to encode health report", slog.Any("error", err))
		}
	}
}
