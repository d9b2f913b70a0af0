package notify

import (
	"context"
	"fmt"
	"time"
)

// DispatchPrayers runs one prayer-reminder sweep over all active
// connections. For each enabled prayer the reminder comes due at
// prayer time minus the user's offset and stays due for the send window.
// At most one notification per (user, prayer, local day) is sent; the
// claim in the log table enforces this even across overlapping runs.
func (d *Dispatcher) DispatchPrayers(ctx context.Context) *Result {
	start := d.now()
	result := newResult()

	conns, err := d.store.ActiveConnections(ctx)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("list connections: %v", err))
		result.Duration = d.now().Sub(start)
		return result
	}

	for _, conn := range conns {
		d.dispatchPrayersForUser(ctx, conn, result)
	}

	result.Duration = d.now().Sub(start)
	d.logger.Info("prayer dispatch complete",
		"connections", len(conns), "sent", result.Sent,
		"failed", result.Failed, "duration", result.Duration.Round(time.Millisecond))
	return result
}

func (d *Dispatcher) dispatchPrayersForUser(ctx context.Context, conn Connection, result *Result) {
	prefs, err := d.store.PreferencesFor(ctx, conn.UserID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("user %s: preferences: %v", conn.UserID, err))
		return
	}
	if prefs == nil {
		return
	}

	localNow := d.now().In(d.userLocation(prefs))
	localDate := localNow.Format(localDateLayout)
	currentMinute := localNow.Hour()*60 + localNow.Minute()

	times, err := d.resolvePrayerTimes(ctx, prefs, localNow)
	if err != nil {
		d.logger.Warn("prayer times unavailable", "user_id", conn.UserID, "error", err)
		result.Errors = append(result.Errors, fmt.Sprintf("user %s: %v", conn.UserID, err))
		return
	}

	for _, prayer := range Prayers {
		if !prefs.PrayerEnabled(prayer) {
			continue
		}

		prayerMinute, err := parseClockMinutes(times.For(prayer))
		if err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("user %s: %s: %v", conn.UserID, prayer, err))
			continue
		}

		notifyMinute := prayerMinute - prefs.PrayerReminderMinutes
		diff := currentMinute - notifyMinute
		if diff < 0 || diff >= sendWindowMinutes {
			continue
		}

		msgs := prayerMessage(prayer, times.For(prayer), prefs)
		sent, skipped, err := d.deliver(ctx, conn, prayer.LogType(), localDate, msgs)
		if skipped {
			continue
		}
		if err != nil {
			d.logger.Warn("prayer send failed",
				"user_id", conn.UserID, "prayer", prayer.String(), "error", err)
			result.Failed++
			result.Errors = append(result.Errors,
				fmt.Sprintf("user %s: send %s: %v", conn.UserID, prayer.LogType(), err))
			continue
		}
		if sent {
			result.Sent++
			result.SentByType[prayer.LogType()]++
			d.logger.Info("prayer reminder sent",
				"user_id", conn.UserID, "prayer", prayer.String(),
				"time", times.For(prayer), "offset", prefs.PrayerReminderMinutes)
		}
	}
}
