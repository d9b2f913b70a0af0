package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// linkTokenTTL bounds how long an issued link token stays redeemable.
const linkTokenTTL = 10 * time.Minute

// ErrLinkTokenInvalid is returned when a link token is unknown, used, or
// expired.
var ErrLinkTokenInvalid = errors.New("link token invalid or expired")

// PGStore is the Postgres-backed store. Statement names refer to the
// prepared statements registered in internal/db.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore wraps a connection pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// --------------------------------------------------------------------------
// Connections
// --------------------------------------------------------------------------

// ActiveConnections returns all currently linked users in insertion order.
func (s *PGStore) ActiveConnections(ctx context.Context) ([]Connection, error) {
	rows, err := s.pool.Query(ctx, "active_connections")
	if err != nil {
		return nil, fmt.Errorf("active connections: %w", err)
	}
	defer rows.Close()

	var conns []Connection
	for rows.Next() {
		c := Connection{Active: true}
		if err := rows.Scan(&c.UserID, &c.LineUserID, &c.ConnectedAt); err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		conns = append(conns, c)
	}
	return conns, rows.Err()
}

// ConnectionByLineID returns the active connection for a LINE user id, or
// nil when none exists.
func (s *PGStore) ConnectionByLineID(ctx context.Context, lineUserID string) (*Connection, error) {
	var c Connection
	err := s.pool.QueryRow(ctx, "connection_by_line_id", lineUserID).
		Scan(&c.UserID, &c.LineUserID, &c.Active, &c.ConnectedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("connection by line id: %w", err)
	}
	return &c, nil
}

// ActivateConnection links a user to a LINE account: prior connections for
// either side are deactivated (never deleted), one active row is inserted,
// and a default preferences row is created if missing. Runs in a single
// transaction so the one-active-per-user invariant holds throughout.
func (s *PGStore) ActivateConnection(ctx context.Context, userID, lineUserID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin link tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "deactivate_user_connections", userID); err != nil {
		return fmt.Errorf("deactivate user connections: %w", err)
	}
	if _, err := tx.Exec(ctx, "deactivate_line_connections", lineUserID); err != nil {
		return fmt.Errorf("deactivate line connections: %w", err)
	}
	if _, err := tx.Exec(ctx, "insert_connection", userID, lineUserID); err != nil {
		return fmt.Errorf("insert connection: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO notification_preferences (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING`, userID); err != nil {
		return fmt.Errorf("ensure preferences: %w", err)
	}

	return tx.Commit(ctx)
}

// DeactivateByLineID deactivates all active connections for a LINE user id.
// Used on unfollow and on the unlink command.
func (s *PGStore) DeactivateByLineID(ctx context.Context, lineUserID string) error {
	_, err := s.pool.Exec(ctx, "deactivate_line_connections", lineUserID)
	if err != nil {
		return fmt.Errorf("deactivate by line id: %w", err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Preferences
// --------------------------------------------------------------------------

// PreferencesFor returns a user's preferences, or nil when no row exists.
func (s *PGStore) PreferencesFor(ctx context.Context, userID string) (*Preferences, error) {
	var p Preferences
	err := s.pool.QueryRow(ctx, "preferences_for_user", userID).Scan(
		&p.UserID,
		&p.PrayerFajr, &p.PrayerDhuhr, &p.PrayerAsr, &p.PrayerMaghrib, &p.PrayerIsha,
		&p.PrayerReminderMinutes,
		&p.MorningAdhkar, &p.DailyWisdom, &p.EveningAdhkar, &p.QuranReminder,
		&p.Latitude, &p.Longitude, &p.Timezone, &p.LocationLabel,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("preferences for %s: %w", userID, err)
	}
	return &p, nil
}

// UpsertPreferences writes a full preferences row, creating it if absent.
func (s *PGStore) UpsertPreferences(ctx context.Context, p *Preferences) error {
	p.ClampOffset()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO notification_preferences (
			user_id,
			prayer_fajr, prayer_dhuhr, prayer_asr, prayer_maghrib, prayer_isha,
			prayer_reminder_minutes,
			morning_adhkar, daily_wisdom, evening_adhkar, quran_reminder,
			latitude, longitude, timezone, location_label, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			prayer_fajr = EXCLUDED.prayer_fajr,
			prayer_dhuhr = EXCLUDED.prayer_dhuhr,
			prayer_asr = EXCLUDED.prayer_asr,
			prayer_maghrib = EXCLUDED.prayer_maghrib,
			prayer_isha = EXCLUDED.prayer_isha,
			prayer_reminder_minutes = EXCLUDED.prayer_reminder_minutes,
			morning_adhkar = EXCLUDED.morning_adhkar,
			daily_wisdom = EXCLUDED.daily_wisdom,
			evening_adhkar = EXCLUDED.evening_adhkar,
			quran_reminder = EXCLUDED.quran_reminder,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			timezone = EXCLUDED.timezone,
			location_label = EXCLUDED.location_label,
			updated_at = NOW()`,
		p.UserID,
		p.PrayerFajr, p.PrayerDhuhr, p.PrayerAsr, p.PrayerMaghrib, p.PrayerIsha,
		p.PrayerReminderMinutes,
		p.MorningAdhkar, p.DailyWisdom, p.EveningAdhkar, p.QuranReminder,
		p.Latitude, p.Longitude, p.Timezone, p.LocationLabel,
	)
	if err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Prayer times cache
// --------------------------------------------------------------------------

// CachedPrayerTimes returns the cached times for (user, date), or nil on a
// miss.
func (s *PGStore) CachedPrayerTimes(ctx context.Context, userID, localDate string) (*PrayerTimes, error) {
	var t PrayerTimes
	err := s.pool.QueryRow(ctx, "prayer_cache_lookup", userID, localDate).
		Scan(&t.Fajr, &t.Sunrise, &t.Dhuhr, &t.Asr, &t.Maghrib, &t.Isha)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("prayer cache lookup: %w", err)
	}
	return &t, nil
}

// SavePrayerTimes upserts the cache row for (user, date). A same-day
// coordinate change does not rewrite the row; the date key rolls over at
// local midnight.
func (s *PGStore) SavePrayerTimes(ctx context.Context, userID, localDate string, t *PrayerTimes, lat, lon float64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO prayer_times_cache
			(user_id, prayer_date, fajr, sunrise, dhuhr, asr, maghrib, isha, latitude, longitude)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (user_id, prayer_date) DO UPDATE SET
			fajr = EXCLUDED.fajr, sunrise = EXCLUDED.sunrise,
			dhuhr = EXCLUDED.dhuhr, asr = EXCLUDED.asr,
			maghrib = EXCLUDED.maghrib, isha = EXCLUDED.isha,
			latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude`,
		userID, localDate, t.Fajr, t.Sunrise, t.Dhuhr, t.Asr, t.Maghrib, t.Isha, lat, lon,
	)
	if err != nil {
		return fmt.Errorf("save prayer times: %w", err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Notification log
// --------------------------------------------------------------------------

// ClaimSend inserts a pending log row for (user, type, local day). The
// partial unique index makes the insert atomic: zero rows affected means
// the slot is already claimed or sent today.
func (s *PGStore) ClaimSend(ctx context.Context, userID, lineUserID, notificationType, localDate string) (bool, error) {
	tag, err := s.pool.Exec(ctx, "claim_notification", userID, lineUserID, notificationType, localDate)
	if err != nil {
		return false, fmt.Errorf("claim notification: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkSent finalizes the pending row as delivered.
func (s *PGStore) MarkSent(ctx context.Context, userID, notificationType, localDate string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE notification_logs
		SET status = 'sent', sent_at = NOW()
		WHERE user_id = $1 AND notification_type = $2 AND local_date = $3
		  AND status = 'pending'`,
		userID, notificationType, localDate)
	return err
}

// MarkFailed finalizes the pending row as failed, releasing the slot.
func (s *PGStore) MarkFailed(ctx context.Context, userID, notificationType, localDate, reason string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE notification_logs
		SET status = 'failed', error_message = $4
		WHERE user_id = $1 AND notification_type = $2 AND local_date = $3
		  AND status = 'pending'`,
		userID, notificationType, localDate, reason)
	return err
}

// LogEvent appends an audit row for webhook activity (follow, unfollow,
// link, unlink). userID may be empty when the LINE account is not linked.
func (s *PGStore) LogEvent(ctx context.Context, userID, lineUserID, eventType string) error {
	var uid *string
	if userID != "" {
		uid = &userID
	}
	// The once-per-day index also covers these rows, so a repeated event on
	// the same day is dropped rather than erroring.
	_, err := s.pool.Exec(ctx, `
		INSERT INTO notification_logs
			(user_id, line_user_id, notification_type, status, local_date, sent_at)
		VALUES ($1, $2, $3, 'sent', CURRENT_DATE, NOW())
		ON CONFLICT DO NOTHING`,
		uid, lineUserID, eventType)
	if err != nil {
		return fmt.Errorf("log event: %w", err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Daily wisdom
// --------------------------------------------------------------------------

// WisdomPinned returns the wisdom row pinned to a date, or nil.
func (s *PGStore) WisdomPinned(ctx context.Context, localDate string) (*Wisdom, error) {
	var w Wisdom
	err := s.pool.QueryRow(ctx, "wisdom_pinned", localDate).
		Scan(&w.ID, &w.TextTH, &w.TextEN, &w.Source)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pinned wisdom: %w", err)
	}
	return &w, nil
}

// WisdomPool returns all undated wisdom rows ordered by id.
func (s *PGStore) WisdomPool(ctx context.Context) ([]Wisdom, error) {
	rows, err := s.pool.Query(ctx, "wisdom_pool")
	if err != nil {
		return nil, fmt.Errorf("wisdom pool: %w", err)
	}
	defer rows.Close()

	var pool []Wisdom
	for rows.Next() {
		var w Wisdom
		if err := rows.Scan(&w.ID, &w.TextTH, &w.TextEN, &w.Source); err != nil {
			return nil, fmt.Errorf("scan wisdom: %w", err)
		}
		pool = append(pool, w)
	}
	return pool, rows.Err()
}

// --------------------------------------------------------------------------
// Link tokens
// --------------------------------------------------------------------------

// IssueLinkToken creates a short-lived token the user sends to the bot as
// `link <token>` to pair accounts.
func (s *PGStore) IssueLinkToken(ctx context.Context, userID string) (token string, expiresAt time.Time, err error) {
	token = uuid.NewString()
	expiresAt = time.Now().Add(linkTokenTTL)
	if _, err = s.pool.Exec(ctx, "insert_link_token", token, userID, expiresAt); err != nil {
		return "", time.Time{}, fmt.Errorf("issue link token: %w", err)
	}
	return token, expiresAt, nil
}

// ConsumeLinkToken redeems a token exactly once, returning the user id it
// was issued for.
func (s *PGStore) ConsumeLinkToken(ctx context.Context, token string) (string, error) {
	if _, err := uuid.Parse(token); err != nil {
		return "", ErrLinkTokenInvalid
	}
	var userID string
	err := s.pool.QueryRow(ctx, "consume_link_token", token).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrLinkTokenInvalid
	}
	if err != nil {
		return "", fmt.Errorf("consume link token: %w", err)
	}
	return userID, nil
}
