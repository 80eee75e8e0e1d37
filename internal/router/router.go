package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"riskatlas-api/internal/config"
	"riskatlas-api/internal/handlers"
	"riskatlas-api/internal/metrics"
	"riskatlas-api/internal/middleware"
)

// New builds the HTTP surface. limiter and m may be nil to disable rate
// limiting and the /metrics endpoint.
func New(
	cfg *config.Config,
	chatHandler *handlers.ChatHandler,
	healthHandler *handlers.HealthHandler,
	limiter middleware.Limiter,
	m *metrics.Metrics,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.RequestID)
	if cfg.CORSStrict {
		r.Use(middleware.StrictCORS(cfg.AllowedOrigins))
	} else {
		r.Use(middleware.CORS(cfg.AllowedOrigins))
	}

	// Health check
	r.Get("/health", healthHandler.Health)

	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		if limiter != nil {
			r.Use(middleware.RateLimit(limiter, m))
		}
		// Every method reaches the handler, which owns the 405 reply.
		r.HandleFunc("/chat", chatHandler.Chat)
	})

	return r
}
