// Package handler provides HTTP handlers for all API endpoints: dispatch
// triggers, the LINE webhook, preferences, link tokens, and health checks.
package handler

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ibadahth/salah-notify/internal/aladhan"
	"github.com/ibadahth/salah-notify/internal/api/respond"
	"github.com/ibadahth/salah-notify/internal/cache"
	"github.com/ibadahth/salah-notify/internal/config"
	"github.com/ibadahth/salah-notify/internal/line"
	"github.com/ibadahth/salah-notify/internal/notify"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	pool       *pgxpool.Pool
	cache      *cache.Cache
	cfg        *config.Config
	store      *notify.PGStore
	lineClient *line.Client
	prayerAPI  *aladhan.Client
	dispatcher *notify.Dispatcher
	validate   *validator.Validate
}

// New creates a Handler with shared dependencies.
func New(pool *pgxpool.Pool, c *cache.Cache, cfg *config.Config,
	store *notify.PGStore, lineClient *line.Client, prayerAPI *aladhan.Client,
	dispatcher *notify.Dispatcher) *Handler {
	return &Handler{
		pool:       pool,
		cache:      c,
		cfg:        cfg,
		store:      store,
		lineClient: lineClient,
		prayerAPI:  prayerAPI,
		dispatcher: dispatcher,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Root serves API info at /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Salah Notify API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
	})
}

// HealthCheck returns basic health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	var n int
	err := h.pool.QueryRow(r.Context(), "health_check").Scan(&n)
	if err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
