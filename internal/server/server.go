package server

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"locations-dashboard/internal/handlers"
	"locations-dashboard/internal/services"
)

type Server struct {
	locations   *services.Locations
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
	sessions    func(http.Handler) http.Handler
}

type Option func(*Server)

// WithSessions attaches display sessions to the dashboard and the datastar
// routes. Probes, scrapes and the JSON API run without one.
func WithSessions(mw func(http.Handler) http.Handler) Option {
	return func(s *Server) {
		s.sessions = mw
	}
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(locations *services.Locations, logger *slog.Logger, templateHandlers *TemplateHandlers, opts ...Option) *Server {
	s := &Server{
		locations:   locations,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(locations, logger),
		sseHandlers: handlers.NewSSEHandlers(locations, logger),
		sessions:    func(h http.Handler) http.Handler { return h },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard routes
	s.mux.Handle("GET /{$}", s.sessions(templateHandlers.Dashboard))
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/locations", s.apiHandlers.HandleLocations)
	s.mux.HandleFunc("GET /api/products", s.apiHandlers.HandleProducts)

	// Datastar SSE endpoints
	s.mux.Handle("GET /sse/locations", s.sessions(http.HandlerFunc(s.sseHandlers.HandleLocations)))
	s.mux.Handle("GET /sse/sort", s.sessions(http.HandlerFunc(s.sseHandlers.HandleSort)))
	s.mux.Handle("GET /sse/view", s.sessions(http.HandlerFunc(s.sseHandlers.HandleView)))
	s.mux.Handle("GET /sse/products", s.sessions(http.HandlerFunc(s.sseHandlers.HandleProducts)))
	s.mux.Handle("GET /sse/refresh-all", s.sessions(http.HandlerFunc(s.sseHandlers.HandleRefreshAll)))
}

// EnableMetrics exposes the Prometheus registry on /metrics.
func (s *Server) EnableMetrics() {
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
