// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/dispatch.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Table names — single source of truth, matches schema.sql
// --------------------------------------------------------------------------

const (
	ConnectionsTable = "line_connections"
	PreferencesTable = "notification_preferences"
	PrayerCacheTable = "prayer_times_cache"
	LogsTable        = "notification_logs"
	WisdomTable      = "daily_wisdom"
	LinkTokensTable  = "link_tokens"
)

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// LINE Messaging API
	LineChannelToken  string
	LineChannelSecret string

	// Dispatch entrypoint auth. Accepted either as a bearer token or via
	// the X-Cron-Key header set by the hosting platform's scheduler.
	CronSecret string

	// Service-to-service token for the preferences and link-token routes.
	ServiceToken string

	// Prayer time source (Aladhan)
	AladhanBaseURL string
	AladhanMethod  int // calculation method id

	// In-memory response cache
	CacheEnabled bool

	// Embedded scheduler. When disabled, dispatch is driven only by the
	// external scheduler hitting the trigger endpoints.
	SchedulerEnabled bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", envOr("SUPABASE_DB_URL", ""))
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL or SUPABASE_DB_URL must be set")
	}

	return &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:4321",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		LineChannelToken:  envOr("LINE_CHANNEL_ACCESS_TOKEN", ""),
		LineChannelSecret: envOr("LINE_CHANNEL_SECRET", ""),

		CronSecret:   envOr("CRON_SECRET", ""),
		ServiceToken: envOr("SERVICE_TOKEN", ""),

		AladhanBaseURL: envOr("ALADHAN_BASE_URL", "https://api.aladhan.com"),
		AladhanMethod:  envInt("ALADHAN_METHOD", 3), // Muslim World League

		CacheEnabled: envBool("CACHE_ENABLED", true),

		SchedulerEnabled: envBool("SCHEDULER_ENABLED", false),
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
