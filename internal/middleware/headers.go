package middleware

import (
	"net"
	"net/http"
	"slices"

	"locations-dashboard/internal/config"
)

const contentSecurityPolicy = "default-src 'self'; script-src 'self' 'unsafe-eval' https://cdn.jsdelivr.net; style-src 'self' 'unsafe-inline'; connect-src 'self'"

// SecurityHeaders sets browser hardening headers on pages and JSON.
// Datastar event streams are fetched by script and never rendered as a
// document, so they only get nosniff.
func SecurityHeaders() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			if !isDatastar(r) {
				h.Set("X-Frame-Options", "DENY")
				h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
				h.Set("Content-Security-Policy", contentSecurityPolicy)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORS admits the configured origins for the read-only API. Credentials are
// allowed so datastar requests carry the session cookie.
func CORS(cfg config.SecurityConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if origin := r.Header.Get("Origin"); origin != "" && allowsOrigin(cfg.AllowedOrigins, origin) {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID, Datastar-Request")
				h.Set("Access-Control-Max-Age", "86400")
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func allowsOrigin(allowed []string, origin string) bool {
	return slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
}

// TrustedProxy drops forwarding headers unless the peer is a known proxy,
// so the rate limiter cannot be steered by a spoofed client address.
func TrustedProxy(cfg config.SecurityConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, _ := net.SplitHostPort(r.RemoteAddr)
			if !slices.Contains(cfg.TrustedProxies, host) {
				r.Header.Del("X-Forwarded-For")
				r.Header.Del("X-Real-IP")
			}
			next.ServeHTTP(w, r)
		})
	}
}
