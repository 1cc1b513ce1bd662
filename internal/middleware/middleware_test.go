package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"locations-dashboard/internal/config"
	"locations-dashboard/internal/observability"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func limiterConfig(burst int) config.SecurityConfig {
	return config.SecurityConfig{EnableRateLimit: true, RateLimitRPS: 1, RateLimitBurst: burst}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(mark("a"), mark("b"), mark("c"))(okHandler())
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if strings.Join(order, ",") != "a,b,c" {
		t.Errorf("order = %v", order)
	}
}

func TestExcept(t *testing.T) {
	calls := 0
	counting := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			next.ServeHTTP(w, r)
		})
	}

	h := Except(counting, "/health", "/metrics")(okHandler())
	for _, path := range []string{"/health", "/metrics", "/", "/sse/sort", "/healthz"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if calls != 3 {
		t.Errorf("wrapped middleware ran %d times, want 3", calls)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = observability.GetRequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if _, err := uuid.Parse(seen); err != nil {
		t.Errorf("generated request id %q is not a uuid: %v", seen, err)
	}
	if w.Header().Get("X-Request-ID") != seen {
		t.Error("response header should echo the request id")
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-ID", "abc")
	h.ServeHTTP(httptest.NewRecorder(), r)
	if seen != "abc" {
		t.Errorf("incoming request id should be kept, got %q", seen)
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders()(okHandler())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	for _, header := range []string{"X-Content-Type-Options", "X-Frame-Options", "Content-Security-Policy", "Referrer-Policy"} {
		if w.Header().Get(header) == "" {
			t.Errorf("page response should set %s", header)
		}
	}

	r := httptest.NewRequest(http.MethodGet, "/sse/sort?key=name", nil)
	r.Header.Set("Datastar-Request", "true")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("event streams keep nosniff")
	}
	if w.Header().Get("Content-Security-Policy") != "" || w.Header().Get("X-Frame-Options") != "" {
		t.Error("event streams should not carry document headers")
	}
}

func TestCORS(t *testing.T) {
	h := CORS(config.SecurityConfig{AllowedOrigins: []string{"https://ok.example"}})(okHandler())

	r := httptest.NewRequest(http.MethodOptions, "/sse/sort", nil)
	r.Header.Set("Origin", "https://ok.example")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://ok.example" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), "Datastar-Request") {
		t.Error("datastar request header should be allowed")
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unknown origin should not be allowed, got %q", got)
	}
}

func TestRateLimit_PerAddress(t *testing.T) {
	limiter := NewRateLimiter(limiterConfig(2), "sid")
	h := RateLimit(limiter, testLogger())(okHandler())

	codes := make([]int, 0, 3)
	for range 3 {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}
}

func TestRateLimit_PerSession(t *testing.T) {
	limiter := NewRateLimiter(limiterConfig(1), "sid")

	request := func(ip, sid string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/sse/sort?key=name", nil)
		r.RemoteAddr = ip + ":1234"
		r.AddCookie(&http.Cookie{Name: "sid", Value: sid})
		return r
	}

	if !limiter.Allow(request("10.0.0.1", "s1")) {
		t.Fatal("first request should pass")
	}
	if limiter.Allow(request("10.0.0.2", "s1")) {
		t.Error("a session moving to a new address keeps its budget")
	}
	if limiter.Allow(request("10.0.0.1", "s2")) {
		t.Error("a new cookie on the same address keeps the address budget")
	}
	if got := limiter.Len(); got != 4 {
		t.Errorf("limiters = %d, want 4", got)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	limiter := NewRateLimiter(config.SecurityConfig{RateLimitRPS: 1, RateLimitBurst: 1}, "sid")
	for range 5 {
		if !limiter.Allow(httptest.NewRequest(http.MethodGet, "/", nil)) {
			t.Fatal("disabled limiter should always allow")
		}
	}
}

func TestRateLimiter_Sweep(t *testing.T) {
	limiter := NewRateLimiter(limiterConfig(1), "sid")
	limiter.Allow(httptest.NewRequest(http.MethodGet, "/", nil))

	if removed := limiter.Sweep(time.Now()); removed != 0 {
		t.Errorf("fresh limiter swept: %d", removed)
	}
	if removed := limiter.Sweep(time.Now().Add(2 * limiterIdle)); removed != 1 {
		t.Errorf("idle limiter not swept: %d", removed)
	}
	if limiter.Len() != 0 {
		t.Errorf("limiters = %d", limiter.Len())
	}
}

func TestRecovery(t *testing.T) {
	h := Recovery(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "INTERNAL_ERROR") || strings.Contains(body, "boom") {
		t.Errorf("body = %s", body)
	}
}

func TestRecovery_AfterStreamStarted(t *testing.T) {
	h := Recovery(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("event: datastar-patch-elements\n\n"))
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sse/locations", nil))

	if strings.Contains(w.Body.String(), "INTERNAL_ERROR") {
		t.Error("no envelope should be appended to a started stream")
	}
}

func TestTrustedProxy(t *testing.T) {
	var xff string
	h := TrustedProxy(config.SecurityConfig{TrustedProxies: []string{"127.0.0.1"}})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		xff = r.Header.Get("X-Forwarded-For")
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.168.1.9:5555"
	r.Header.Set("X-Forwarded-For", "1.2.3.4")
	h.ServeHTTP(httptest.NewRecorder(), r)
	if xff != "" {
		t.Errorf("untrusted proxy header should be stripped, got %q", xff)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "127.0.0.1:5555"
	r.Header.Set("X-Forwarded-For", "1.2.3.4")
	h.ServeHTTP(httptest.NewRecorder(), r)
	if xff != "1.2.3.4" {
		t.Errorf("trusted proxy header should be kept, got %q", xff)
	}
}

func TestObserve_LogsSpan(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	h := Observe(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if observability.GetSpan(r.Context()) == nil {
			t.Error("span should be on the request context")
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	r := httptest.NewRequest(http.MethodGet, "/sse/missing", nil)
	r.Header.Set("Datastar-Request", "true")
	h.ServeHTTP(httptest.NewRecorder(), r)

	out := buf.String()
	for _, want := range []string{"request completed", `operation="GET /sse/missing"`, "status=ERROR", "datastar=true"} {
		if !strings.Contains(out, want) {
			t.Errorf("log should contain %q\n%s", want, out)
		}
	}
}

func TestObserve_QuietProbes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	Observe(logger)(okHandler()).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	if buf.Len() != 0 {
		t.Errorf("healthy probes should log below info: %s", buf.String())
	}
}
