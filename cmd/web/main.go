package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"locations-dashboard/internal/config"
	"locations-dashboard/internal/handlers"
	"locations-dashboard/internal/middleware"
	"locations-dashboard/internal/observability"
	"locations-dashboard/internal/server"
	"locations-dashboard/internal/services"
	"locations-dashboard/internal/session"
	"locations-dashboard/internal/ui"
)

const (
	renderTimeout = 10 * time.Second
	loadTimeout   = 30 * time.Second
)

func dashboardHandler(locations *services.Locations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		state := session.FromContext(ctx)
		products := locations.Products()

		page := ui.Dashboard(ui.DashboardView{
			Table:    handlers.TableView(locations, state, state.View()),
			Products: products,
			Selected: state.Selection(products).IDs(),
		})

		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := page.Render(ctx, w); err != nil {
			http.Error(w, "render error", http.StatusInternalServerError)
		}
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"config", cfg,
	)

	locations := services.NewLocations().WithCacheDir(cfg.Analytics.CacheDir)
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	start := time.Now()
	if err := locations.LoadFromJSON(ctx, cfg.Analytics.File); err != nil {
		logger.Error("failed to load analytics payload", "error", err)
		os.Exit(1)
	}
	if err := locations.Warm(ctx); err != nil {
		logger.Warn("failed to warm aggregations", "error", err)
	}
	logger.Info("analytics data ready", "duration", time.Since(start))

	templateHandlers := &server.TemplateHandlers{
		Dashboard: dashboardHandler(locations),
	}

	sessions := session.NewStore(cfg.Session.TTL, logger)
	janitorCtx, stopJanitors := context.WithCancel(context.Background())
	go sessions.RunJanitor(janitorCtx, cfg.Session.SweepInterval)

	srv := server.NewServer(locations, logger, templateHandlers,
		server.WithSessions(session.Middleware(sessions, cfg.Session.CookieName)),
	)
	if cfg.Metrics.Enabled {
		srv.EnableMetrics()
	}

	rateLimiter := middleware.NewRateLimiter(cfg.Security, cfg.Session.CookieName)
	go rateLimiter.RunJanitor(janitorCtx, cfg.Session.SweepInterval)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Observe(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.Except(middleware.RateLimit(rateLimiter, logger), "/health", "/metrics"),
	)

	handler := middlewareChain(srv)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook("janitors", func(ctx context.Context) error {
		logger.Info("stopping janitors", "sessions", sessions.Len(), "rate_limiters", rateLimiter.Len())
		stopJanitors()
		return nil
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
