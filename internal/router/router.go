package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"agency-backend/internal/handlers"
	"agency-backend/internal/middleware"
	"agency-backend/internal/monitoring"
)

type Options struct {
	// Limiter guards /relay; nil disables rate limiting.
	Limiter middleware.Limiter
	// StaticDir, when set, serves the marketing site from disk.
	StaticDir string
}

func New(
	relayHandler *handlers.RelayHandler,
	metrics *monitoring.Metrics,
	opts Options,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.Recoverer)

	// Health check
	r.Get("/health", handlers.Health)

	r.Handle("/metrics", metrics.Handler())

	// ──── Chat relay ────
	r.Group(func(r chi.Router) {
		if opts.Limiter != nil {
			r.Use(middleware.RateLimit(opts.Limiter, metrics.IncRateLimited))
		}
		r.HandleFunc("/relay", relayHandler.Relay)
	})

	// ──── Marketing site ────
	if opts.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(opts.StaticDir)))
	}

	return r
}
