package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/bazarromero/catalog/pkg/logger"
)

// Logger writes one access line per request and puts a logger tagged with
// the chi request id into the context for logger.WithCtx. RequestID and
// ClientAddr must run before it.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		reqLog := logger.L.With("request_id", chimw.GetReqID(r.Context()))
		r = r.WithContext(logger.InjectLogger(r.Context(), reqLog))

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		reqLog.Log(r.Context(), accessLevel(status), "catalog request",
			"method", r.Method,
			"route", routePattern(r),
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client", ClientKey(r),
		)
	})
}

// Rejected logins (401) and lockouts (429) are worth a warning on their own.
func accessLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status == http.StatusUnauthorized, status == http.StatusTooManyRequests:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// routePattern is the matched chi pattern, e.g. /api/products/{id}, so
// product ids do not fan out into separate log keys.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
