// Package scheduler drives the dispatch loops in-process with gocron, for
// deployments that have no external cron hitting the trigger endpoints.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/ibadahth/salah-notify/internal/metrics"
	"github.com/ibadahth/salah-notify/internal/notify"
)

const (
	prayerInterval    = 5 * time.Minute
	scheduledInterval = 1 * time.Hour
)

// Start registers the two dispatch jobs and starts the scheduler. The
// scheduled-broadcast loop matches on the local hour, so an hourly job
// fires it regardless of the minute it lands on.
func Start(dispatcher *notify.Dispatcher, logger *slog.Logger) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.DurationJob(prayerInterval),
		gocron.NewTask(func(ctx context.Context) {
			result := dispatcher.DispatchPrayers(ctx)
			metrics.RecordDispatch("prayer", result)
		}),
		gocron.WithName("prayer-dispatch"),
	)
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.DurationJob(scheduledInterval),
		gocron.NewTask(func(ctx context.Context) {
			result := dispatcher.DispatchScheduled(ctx)
			metrics.RecordDispatch("scheduled", result)
		}),
		gocron.WithName("scheduled-dispatch"),
	)
	if err != nil {
		return nil, err
	}

	s.Start()
	logger.Info("Embedded scheduler started",
		"prayer_interval", prayerInterval, "scheduled_interval", scheduledInterval)
	return s, nil
}
