// Package httphandler serves the bot's operational HTTP surface.
package httphandler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/gyazobot/internal/application"
)

// healthChecker is the subset of application.HealthService the handler needs.
type healthChecker interface {
	Check(ctx context.Context) application.HealthReport
}

// Handler is the HTTP driving adapter that serves the ops API.
type Handler struct {
	health healthChecker
	logger *slog.Logger
	now    func() time.Time
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(health healthChecker, logger *slog.Logger) *Handler {
	return &Handler{
		health: health,
		logger: logger,
		now:    time.Now,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with request-id, logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)
	wrapped = requestIDMiddleware(wrapped)

	return wrapped
}

// Health reports whether the bot's dependencies are usable. It answers 200
// when every check passes and 503 otherwise.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	report := h.health.Check(r.Context())

	status := http.StatusOK
	resp := HealthResponse{
		Status: "ok",
		Checks: report.Checks,
		Time:   h.now().UTC().Format(time.RFC3339),
	}
	if !report.Healthy {
		status = http.StatusServiceUnavailable
		resp.Status = "unavailable"
		h.logger.Warn("health check failed", "checks", report.Checks, "request_id", requestIDFrom(r.Context()))
	}
	if resp.Checks == nil {
		resp.Checks = map[string]string{}
	}

	writeJSON(w, status, resp)
}
