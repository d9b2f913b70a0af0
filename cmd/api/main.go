// Command api is the salah-notify API server.
//
// Usage:
//
//	salah-api
//	API_PORT=8080 salah-api
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/ibadahth/salah-notify/internal/aladhan"
	"github.com/ibadahth/salah-notify/internal/api"
	"github.com/ibadahth/salah-notify/internal/api/handler"
	"github.com/ibadahth/salah-notify/internal/cache"
	"github.com/ibadahth/salah-notify/internal/config"
	"github.com/ibadahth/salah-notify/internal/db"
	"github.com/ibadahth/salah-notify/internal/line"
	"github.com/ibadahth/salah-notify/internal/maintenance"
	"github.com/ibadahth/salah-notify/internal/notify"
	"github.com/ibadahth/salah-notify/internal/scheduler"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Connect to database
	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	// Initialize cache
	appCache := cache.New(cfg.CacheEnabled)
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Wire the dispatch collaborators
	store := notify.NewPGStore(pool.Pool)
	lineClient := line.New(cfg.LineChannelToken, cfg.LineChannelSecret)
	prayerAPI := aladhan.NewClient(cfg.AladhanBaseURL, cfg.AladhanMethod)
	dispatcher := notify.NewDispatcher(store, prayerAPI, lineClient, logger)

	if !lineClient.IsConfigured() {
		logger.Warn("LINE channel token not set; outbound sends will fail")
	}

	// Embedded scheduler for deployments without an external cron
	if cfg.SchedulerEnabled {
		sched, err := scheduler.Start(dispatcher, logger)
		if err != nil {
			logger.Error("Failed to start scheduler", "error", err)
			os.Exit(1)
		}
		defer func() { _ = sched.Shutdown() }()
	} else {
		logger.Info("Embedded scheduler disabled; dispatch via trigger endpoints only")
	}

	// Start maintenance tickers (log retention, stale cache purge)
	go maintenance.Start(ctx, pool.Pool, maintenance.DefaultConfig(), logger)

	// Create router
	h := handler.New(pool.Pool, appCache, cfg, store, lineClient, prayerAPI, dispatcher)
	router := api.NewRouter(h, cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Salah Notify API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
