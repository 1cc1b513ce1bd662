// Package middleware wraps the dashboard mux with request plumbing.
package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/google/uuid"

	"locations-dashboard/internal/errors"
	"locations-dashboard/internal/observability"
)

type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so that the first one sees the request first.
func Chain(middlewares ...Middleware) Middleware {
	return func(h http.Handler) http.Handler {
		for _, mw := range slices.Backward(middlewares) {
			h = mw(h)
		}
		return h
	}
}

// Except bypasses mw for the exact paths given, such as probes and scrapes.
func Except(mw Middleware, paths ...string) Middleware {
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(paths, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			wrapped.ServeHTTP(w, r)
		})
	}
}

// isDatastar reports whether r was issued by a datastar action, which
// expects an event stream back.
func isDatastar(r *http.Request) bool {
	return r.Header.Get("Datastar-Request") == "true"
}

func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", id)
			next.ServeHTTP(w, r.WithContext(observability.WithRequestID(r.Context(), id)))
		})
	}
}

// Recovery turns a handler panic into an internal error envelope. Once an
// event stream has started the envelope cannot be written, so the stream is
// only closed.
func Recovery(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				requestID := observability.GetRequestID(r.Context())
				logger.Error("panic recovered",
					"panic", v,
					"path", r.URL.Path,
					"request_id", requestID,
				)
				if rec.status == 0 {
					errors.WriteError(rec, logger, errors.Internal(fmt.Errorf("panic: %v", v)), requestID)
				}
			}()
			next.ServeHTTP(rec, r)
		})
	}
}

// statusRecorder remembers the response status and keeps http.Flusher
// available for event streams.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(status int) {
	if rw.status == 0 {
		rw.status = status
	}
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if rw.status == 0 {
		rw.status = http.StatusOK
	}
	return rw.ResponseWriter.Write(b)
}

func (rw *statusRecorder) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func (rw *statusRecorder) code() int {
	if rw.status == 0 {
		return http.StatusOK
	}
	return rw.status
}
