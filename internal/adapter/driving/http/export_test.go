package httphandler

import (
	"log/slog"
	"net/http"
	"time"
)

// SetNow pins the clock used for the health response timestamp.
func (h *Handler) SetNow(fn func() time.Time) {
	h.now = fn
}

// WrapWithMiddleware exposes the middleware chain around an arbitrary handler.
func WrapWithMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return requestIDMiddleware(loggingMiddleware(logger, recoveryMiddleware(logger, next)))
}
