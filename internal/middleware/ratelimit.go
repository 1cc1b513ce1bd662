package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"locations-dashboard/internal/config"
	"locations-dashboard/internal/errors"
	"locations-dashboard/internal/observability"
)

// limiterIdle is how long an unused limiter is kept before it is swept.
const limiterIdle = time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles each client address and, independently, each
// session cookie. Sorting and toggling fire one request per click, so a
// shared address such as an office NAT gets the same budget as one session.
type RateLimiter struct {
	mu         sync.Mutex
	entries    map[string]*limiterEntry
	cfg        config.SecurityConfig
	cookieName string
}

func NewRateLimiter(cfg config.SecurityConfig, cookieName string) *RateLimiter {
	return &RateLimiter{
		entries:    make(map[string]*limiterEntry),
		cfg:        cfg,
		cookieName: cookieName,
	}
}

// Allow spends one token from every bucket r belongs to.
func (rl *RateLimiter) Allow(r *http.Request) bool {
	if !rl.cfg.EnableRateLimit {
		return true
	}

	now := time.Now()
	allowed := true
	for _, key := range rl.keys(r) {
		if !rl.entry(key, now).limiter.AllowN(now, 1) {
			allowed = false
		}
	}
	return allowed
}

func (rl *RateLimiter) keys(r *http.Request) []string {
	keys := []string{"ip:" + clientIP(r)}
	if c, err := r.Cookie(rl.cookieName); err == nil && c.Value != "" {
		keys = append(keys, "session:"+c.Value)
	}
	return keys
}

func (rl *RateLimiter) entry(key string, now time.Time) *limiterEntry {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	e, ok := rl.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(rl.cfg.RateLimitRPS), rl.cfg.RateLimitBurst)}
		rl.entries[key] = e
	}
	e.lastSeen = now
	return e
}

func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.entries)
}

// Sweep drops limiters idle since before now minus limiterIdle.
func (rl *RateLimiter) Sweep(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for key, e := range rl.entries {
		if now.Sub(e.lastSeen) > limiterIdle {
			delete(rl.entries, key)
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps idle limiters until ctx is done.
func (rl *RateLimiter) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.Sweep(now)
		}
	}
}

func RateLimit(limiter *RateLimiter, logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(r) {
				requestID := observability.GetRequestID(r.Context())
				logger.Warn("rate limit exceeded",
					"ip", clientIP(r),
					"path", r.URL.Path,
					"request_id", requestID,
				)
				w.Header().Set("Retry-After", "1")
				errors.WriteError(w, logger, errors.RateLimited(), requestID)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
