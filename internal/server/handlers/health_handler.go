package handlers

import (
	"net/http"

	"github.com/serenolabs/sereno/internal/server/health"
)

// HealthHandler returns a handler for comprehensive health checks.
func HealthHandler(healthService *health.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := healthService.CheckHealth(r.Context())

		// Degraded still accepts requests.
		status := http.StatusOK
		if report.Status == health.StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}

		respondJSON(w, status, report)
	}
}

// LivenessHandler returns a simple liveness probe handler.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "alive"})
	}
}

// ReadinessHandler reports ready only when every check is healthy.
func ReadinessHandler(healthService *health.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := healthService.CheckHealth(r.Context())

		status := http.StatusOK
		if report.Status != health.StatusHealthy {
			status = http.StatusServiceUnavailable
		}

		respondJSON(w, status, map[string]any{
			"status": report.Status,
			"ready":  report.Status == health.StatusHealthy,
		})
	}
}
