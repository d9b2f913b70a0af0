package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/ibadahth/salah-notify/internal/line"
)

// DispatchScheduled runs one fixed-hour broadcast sweep over all active
// connections. A broadcast is due for a user when their local hour equals
// the broadcast hour, the flag is enabled, and today's slot is unclaimed.
func (d *Dispatcher) DispatchScheduled(ctx context.Context) *Result {
	start := d.now()
	result := newResult()

	conns, err := d.store.ActiveConnections(ctx)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("list connections: %v", err))
		result.Duration = d.now().Sub(start)
		return result
	}

	for _, conn := range conns {
		d.dispatchScheduledForUser(ctx, conn, result)
	}

	result.Duration = d.now().Sub(start)
	d.logger.Info("scheduled dispatch complete",
		"connections", len(conns), "sent", result.Sent,
		"failed", result.Failed, "duration", result.Duration.Round(time.Millisecond))
	return result
}

func (d *Dispatcher) dispatchScheduledForUser(ctx context.Context, conn Connection, result *Result) {
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

	for _, broadcast := range Broadcasts {
		if localNow.Hour() != broadcast.Hour() {
			continue
		}
		if !prefs.BroadcastEnabled(broadcast) {
			continue
		}

		msgs, err := d.broadcastMessage(ctx, broadcast, localNow)
		if err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("user %s: %s content: %v", conn.UserID, broadcast, err))
			continue
		}

		sent, skipped, err := d.deliver(ctx, conn, broadcast.String(), localDate, msgs)
		if skipped {
			continue
		}
		if err != nil {
			d.logger.Warn("broadcast send failed",
				"user_id", conn.UserID, "type", broadcast.String(), "error", err)
			result.Failed++
			result.Errors = append(result.Errors,
				fmt.Sprintf("user %s: send %s: %v", conn.UserID, broadcast, err))
			continue
		}
		if sent {
			result.Sent++
			result.SentByType[broadcast.String()]++
			d.logger.Info("broadcast sent", "user_id", conn.UserID, "type", broadcast.String())
		}
	}
}

// broadcastMessage resolves the content for a broadcast. Three of the four
// are fixed texts; daily wisdom is selected from the wisdom table.
func (d *Dispatcher) broadcastMessage(ctx context.Context, b Broadcast, localNow time.Time) ([]line.Message, error) {
	if b != DailyWisdom {
		return fixedBroadcastMessage(b), nil
	}
	w, err := d.selectWisdom(ctx, localNow)
	if err != nil {
		return nil, err
	}
	return wisdomMessage(w), nil
}
