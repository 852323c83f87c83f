package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"findata-mcp/config"
)

// requestGrace is added to the query timeout to bound a whole request
const requestGrace = 5 * time.Second

// NewRouter creates and configures a Chi router with all routes
func NewRouter(h *Handler, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.QueryTimeout() + requestGrace))
	r.Use(CORSMiddleware(cfg.HTTP.CORSAllowedOrigins))
	r.Use(MetricsMiddleware)

	r.Get("/health", h.HandleHealth)

	// Metrics endpoint for Prometheus
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/mcp", func(r chi.Router) {
		r.Use(BearerAuth(cfg.HTTP.AuthToken))

		r.Get("/tools", h.HandleListTools)
		r.Post("/call", h.HandleCallTool)

		r.Get("/resources", h.HandleListResources)
		r.Get("/resources/{table}", h.HandleReadResource)

		r.Get("/prompts", h.HandleListPrompts)
		r.Get("/prompts/{name}", h.HandleGetPrompt)
	})

	return r
}
