package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"locations-dashboard/internal/observability"
)

// quietPaths are logged at debug level; they are hit by probes and scrapers.
var quietPaths = []string{"/health", "/metrics"}

// Observe opens a span per request and writes one access log line when the
// request completes. Datastar event streams are tagged so sort, toggle and
// selection traffic can be told apart from page loads.
func Observe(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := observability.StartSpan(r.Context(), r.Method+" "+r.URL.Path)
			span.SetTag("request_id", observability.GetRequestID(ctx))
			if isDatastar(r) {
				span.SetTag("datastar", "true")
			}

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(ctx))

			status := rec.code()
			span.SetTag("status", fmt.Sprint(status))
			if status >= http.StatusBadRequest {
				span.SetError(fmt.Errorf("HTTP %d", status))
			}
			span.Finish()

			level := slog.LevelInfo
			if slices.Contains(quietPaths, r.URL.Path) && status < http.StatusBadRequest {
				level = slog.LevelDebug
			}
			logger.LogAttrs(ctx, level, "request completed", span.Attrs()...)
		})
	}
}
