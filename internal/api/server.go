package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/ibadahth/salah-notify/docs"
	"github.com/ibadahth/salah-notify/internal/api/handler"
	"github.com/ibadahth/salah-notify/internal/config"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(h *handler.Handler, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS — only the public prayer-times endpoint is browser-facing, but
	// a single policy keeps the surface simple.
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// Swagger UI backed by the checked-in OpenAPI document.
	r.Get("/docs/doc.json", docs.ServeOpenAPI)
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// LINE webhook — signature-verified inside the handler.
	r.Post("/webhook/line", h.LineWebhook)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public website widget
		r.Get("/prayer-times", h.GetPrayerTimes)

		// Dispatch triggers for the external scheduler
		r.Group(func(r chi.Router) {
			r.Use(CronAuth(cfg.CronSecret))
			r.Get("/notifications/dispatch/prayer", h.DispatchPrayer)
			r.Get("/notifications/dispatch/scheduled", h.DispatchScheduled)
		})

		// Service-to-service routes used by the website backend
		r.Group(func(r chi.Router) {
			r.Use(ServiceAuth(cfg.ServiceToken))
			r.Get("/users/{userID}/preferences", h.GetPreferences)
			r.Put("/users/{userID}/preferences", h.PutPreferences)
			r.Post("/users/{userID}/link-token", h.CreateLinkToken)
		})
	})

	return r
}
