package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ibadahth/salah-notify/internal/line"
)

// Sender pushes messages to a LINE user. Satisfied by *line.Client.
type Sender interface {
	Push(ctx context.Context, to string, msgs []line.Message) error
}

// Dispatcher runs the notification dispatch sweeps. All collaborators are
// injected; nothing is process-global.
type Dispatcher struct {
	store  Store
	times  TimesSource
	sender Sender
	logger *slog.Logger

	// now is the clock; replaced in tests.
	now func() time.Time
}

// NewDispatcher wires a dispatcher from its collaborators.
func NewDispatcher(store Store, times TimesSource, sender Sender, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		store:  store,
		times:  times,
		sender: sender,
		logger: logger,
		now:    time.Now,
	}
}

// userLocation resolves the user's timezone, falling back to UTC on an
// invalid name.
func (d *Dispatcher) userLocation(prefs *Preferences) *time.Location {
	loc, err := time.LoadLocation(prefs.Timezone)
	if err != nil {
		d.logger.Warn("invalid timezone, using UTC",
			"user_id", prefs.UserID, "timezone", prefs.Timezone)
		return time.UTC
	}
	return loc
}

// resolvePrayerTimes returns today's times for a user: cache hit, or fetch
// from the source and upsert. localDay is the user's local date.
func (d *Dispatcher) resolvePrayerTimes(ctx context.Context, prefs *Preferences, localDay time.Time) (*PrayerTimes, error) {
	localDate := localDay.Format(localDateLayout)

	cached, err := d.store.CachedPrayerTimes(ctx, prefs.UserID, localDate)
	if err != nil {
		return nil, fmt.Errorf("prayer cache lookup: %w", err)
	}
	if cached != nil {
		return cached, nil
	}

	fetched, err := d.times.Timings(ctx, localDay, prefs.Latitude, prefs.Longitude)
	if err != nil {
		return nil, fmt.Errorf("fetch prayer times: %w", err)
	}

	if err := d.store.SavePrayerTimes(ctx, prefs.UserID, localDate, fetched, prefs.Latitude, prefs.Longitude); err != nil {
		return nil, fmt.Errorf("save prayer times: %w", err)
	}
	return fetched, nil
}

// deliver claims the send slot, pushes, and records the outcome. Returns
// (sent, skipped, err): skipped means the slot was already claimed today.
func (d *Dispatcher) deliver(ctx context.Context, conn Connection, notificationType, localDate string, msgs []line.Message) (bool, bool, error) {
	claimed, err := d.store.ClaimSend(ctx, conn.UserID, conn.LineUserID, notificationType, localDate)
	if err != nil {
		return false, false, fmt.Errorf("claim send: %w", err)
	}
	if !claimed {
		return false, true, nil
	}

	if err := d.sender.Push(ctx, conn.LineUserID, msgs); err != nil {
		if markErr := d.store.MarkFailed(ctx, conn.UserID, notificationType, localDate, err.Error()); markErr != nil {
			d.logger.Warn("mark failed", "user_id", conn.UserID, "type", notificationType, "error", markErr)
		}
		return false, false, err
	}

	if err := d.store.MarkSent(ctx, conn.UserID, notificationType, localDate); err != nil {
		d.logger.Warn("mark sent", "user_id", conn.UserID, "type", notificationType, "error", err)
	}
	return true, false, nil
}

// parseClockMinutes converts an HH:mm string to minutes since midnight.
func parseClockMinutes(clock string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(clock), ":")
	if !ok {
		return 0, fmt.Errorf("malformed clock time %q", clock)
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return 0, fmt.Errorf("malformed clock time %q", clock)
	}
	minute, err := strconv.Atoi(m)
	if err != nil {
		return 0, fmt.Errorf("malformed clock time %q", clock)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("clock time %q out of range", clock)
	}
	return hour*60 + minute, nil
}
