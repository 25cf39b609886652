package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vthink/alertd/internal/api/handlers"
	"github.com/vthink/alertd/internal/api/middleware"
	"github.com/vthink/alertd/internal/config"
	"github.com/vthink/alertd/internal/pkg/logger"
	"github.com/vthink/alertd/internal/pkg/metrics"
)

type Handlers struct {
	Health       *handlers.HealthHandler
	Alert        *handlers.AlertHandler
	Config       *handlers.ConfigHandler
	Notification *handlers.NotificationHandler
}

func New(cfg *config.Config, log *logger.Logger, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.CORS(cfg.Server.FrontendURL))
	r.Use(middleware.RateLimit(100, 200)) // 100 req/sec, burst of 200
	r.Use(metrics.Middleware)

	// Health and metrics
	r.Get("/health", h.Health.Healthz)
	r.Get("/healthz", h.Health.Healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Alerts
	r.Route("/api/v1/alerts", func(r chi.Router) {
		r.Get("/", h.Alert.List)
		r.Post("/", h.Alert.Create)
		r.Get("/stats", h.Alert.Stats)
		r.Post("/{id}/acknowledge", h.Alert.Acknowledge)
	})

	// Routing configuration
	r.Route("/api/v1/config", func(r chi.Router) {
		r.Get("/", h.Config.Get)
		r.Patch("/", h.Config.Update)
	})

	// Toast-style notifications
	r.Route("/api/v1/notifications", func(r chi.Router) {
		r.Get("/", h.Notification.List)
		r.Post("/", h.Notification.Create)
	})

	return r
}
