package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iconidentify/vidcard/internal/api/handler"
	mw "github.com/iconidentify/vidcard/internal/api/middleware"
)

// Handlers groups the HTTP handlers mounted by NewRouter.
type Handlers struct {
	Enrich   *handler.EnrichHandler
	Settings *handler.SettingsHandler
	Jobs     *handler.JobHandler
	Health   *handler.HealthHandler
	UI       *handler.UIHandler
	Metrics  http.Handler
}

// RouterConfig holds router options.
type RouterConfig struct {
	APIKey      string
	CORSOrigins []string
	Timeout     time.Duration
}

// NewRouter creates the HTTP router with all routes configured.
func NewRouter(h Handlers, cfg RouterConfig, logger *slog.Logger) *chi.Mux {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CleanPath) // Normalize paths (e.g., //ready -> /ready)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger(logger))
	r.Use(mw.Recovery(logger))
	r.Use(middleware.Timeout(cfg.Timeout))
	r.Use(mw.CORS(cfg.CORSOrigins))

	// Health endpoints (no auth)
	r.Get("/health", h.Health.Live)
	r.Get("/ready", h.Health.Ready)
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	// Web UI (no auth - pages call the API with the key from ?key=)
	r.Get("/", h.UI.Index)
	r.Get("/settings", h.UI.Settings)

	// API v1 (authenticated)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(cfg.APIKey))

		r.Get("/stats", h.Health.Stats)

		r.Post("/enrich", h.Enrich.Enrich)

		r.Get("/settings", h.Settings.Get)
		r.Put("/settings", h.Settings.Update)

		r.Post("/jobs", h.Jobs.Submit)
		r.Get("/jobs/{jobID}", h.Jobs.Get)
	})

	return r
}
