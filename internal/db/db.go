// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ibadahth/salah-notify/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers all statements the API and dispatch
// layers use. Prepared statements eliminate parse overhead on every request.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Connections
		"active_connections": `
			SELECT user_id, line_user_id, connected_at
			FROM line_connections
			WHERE is_active = true
			ORDER BY id`,
		"connection_by_line_id": `
			SELECT user_id, line_user_id, is_active, connected_at
			FROM line_connections
			WHERE line_user_id = $1 AND is_active = true
			LIMIT 1`,
		"deactivate_user_connections": `
			UPDATE line_connections SET is_active = false
			WHERE user_id = $1 AND is_active = true`,
		"deactivate_line_connections": `
			UPDATE line_connections SET is_active = false
			WHERE line_user_id = $1 AND is_active = true`,
		"insert_connection": `
			INSERT INTO line_connections (user_id, line_user_id, is_active, connected_at)
			VALUES ($1, $2, true, NOW())`,

		// Preferences
		"preferences_for_user": `
			SELECT user_id,
			       prayer_fajr, prayer_dhuhr, prayer_asr, prayer_maghrib, prayer_isha,
			       prayer_reminder_minutes,
			       morning_adhkar, daily_wisdom, evening_adhkar, quran_reminder,
			       latitude, longitude, timezone, location_label
			FROM notification_preferences
			WHERE user_id = $1`,

		// Prayer times cache
		"prayer_cache_lookup": `
			SELECT fajr, sunrise, dhuhr, asr, maghrib, isha
			FROM prayer_times_cache
			WHERE user_id = $1 AND prayer_date = $2`,

		// Notification logs
		"claim_notification": `
			INSERT INTO notification_logs
				(user_id, line_user_id, notification_type, status, local_date)
			VALUES ($1, $2, $3, 'pending', $4)
			ON CONFLICT (user_id, notification_type, local_date)
				WHERE status IN ('pending', 'sent')
			DO NOTHING`,

		// Daily wisdom
		"wisdom_pinned": `
			SELECT id, text_th, text_en, source
			FROM daily_wisdom
			WHERE pinned_date = $1
			ORDER BY id
			LIMIT 1`,
		"wisdom_pool": `
			SELECT id, text_th, text_en, source
			FROM daily_wisdom
			WHERE pinned_date IS NULL
			ORDER BY id`,

		// Link tokens
		"insert_link_token": `
			INSERT INTO link_tokens (token, user_id, expires_at)
			VALUES ($1, $2, $3)`,
		"consume_link_token": `
			UPDATE link_tokens SET used = true
			WHERE token = $1 AND used = false AND expires_at > NOW()
			RETURNING user_id`,
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
