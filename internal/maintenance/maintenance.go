// Package maintenance runs periodic background tasks as Go tickers.
// The dispatch loops never read notification logs outside the current day
// or cache rows for past dates, so retention here only removes rows no
// code path will touch again.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	LogPurgeInterval   time.Duration // Old sent/failed notification logs
	CachePurgeInterval time.Duration // Prayer-time cache rows for past dates
	TokenPurgeInterval time.Duration // Expired link tokens
}

// DefaultConfig returns sensible production defaults.
func DefaultConfig() Config {
	return Config{
		LogPurgeInterval:   6 * time.Hour,
		CachePurgeInterval: 24 * time.Hour,
		TokenPurgeInterval: 1 * time.Hour,
	}
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, pool *pgxpool.Pool, cfg Config, logger *slog.Logger) {
	logger.Info("Maintenance tickers started",
		"log_purge", cfg.LogPurgeInterval,
		"cache_purge", cfg.CachePurgeInterval,
		"token_purge", cfg.TokenPurgeInterval)

	tickers := make([]*time.Ticker, 0, 3)
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	if cfg.LogPurgeInterval > 0 {
		t := time.NewTicker(cfg.LogPurgeInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { purgeLogs(ctx, pool, logger) })
	}

	if cfg.CachePurgeInterval > 0 {
		t := time.NewTicker(cfg.CachePurgeInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { purgeStaleCache(ctx, pool, logger) })
	}

	if cfg.TokenPurgeInterval > 0 {
		t := time.NewTicker(cfg.TokenPurgeInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { purgeLinkTokens(ctx, pool, logger) })
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// --------------------------------------------------------------------------
// Task implementations
// --------------------------------------------------------------------------

// purgeLogs removes sent/failed notification logs older than 30 days.
// Today's rows are never touched; they back the send-once dedup.
func purgeLogs(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) {
	tag, err := pool.Exec(ctx, `
		DELETE FROM notification_logs
		WHERE status IN ('sent', 'failed')
		  AND created_at < NOW() - INTERVAL '30 days'`)
	if err != nil {
		logger.Warn("Maintenance: failed to purge old logs", "error", err)
	} else if tag.RowsAffected() > 0 {
		logger.Info("Maintenance: purged old logs", "count", tag.RowsAffected())
	}
}

// purgeStaleCache removes prayer-time cache rows more than two days old.
// The two-day margin keeps rows that could still be "today" in any
// timezone the service serves.
func purgeStaleCache(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) {
	tag, err := pool.Exec(ctx, `
		DELETE FROM prayer_times_cache
		WHERE prayer_date < CURRENT_DATE - 2`)
	if err != nil {
		logger.Warn("Maintenance: failed to purge prayer cache", "error", err)
	} else if tag.RowsAffected() > 0 {
		logger.Info("Maintenance: purged stale prayer cache", "count", tag.RowsAffected())
	}
}

// purgeLinkTokens removes used or expired link tokens.
func purgeLinkTokens(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) {
	tag, err := pool.Exec(ctx, `
		DELETE FROM link_tokens
		WHERE used = true OR expires_at < NOW() - INTERVAL '1 day'`)
	if err != nil {
		logger.Warn("Maintenance: failed to purge link tokens", "error", err)
	} else if tag.RowsAffected() > 0 {
		logger.Info("Maintenance: purged link tokens", "count", tag.RowsAffected())
	}
}
