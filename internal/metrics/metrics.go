// Package metrics exposes Prometheus counters for the dispatch loops.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ibadahth/salah-notify/internal/notify"
)

var (
	dispatchRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salah_dispatch_runs_total",
		Help: "Dispatch sweep invocations by loop.",
	}, []string{"loop"})

	notificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salah_notifications_sent_total",
		Help: "Notifications delivered, by type tag.",
	}, []string{"type"})

	notificationsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salah_notifications_failed_total",
		Help: "Notification send failures by loop.",
	}, []string{"loop"})
)

// RecordDispatch folds one sweep result into the counters.
func RecordDispatch(loop string, r *notify.Result) {
	dispatchRuns.WithLabelValues(loop).Inc()
	for typ, n := range r.SentByType {
		notificationsSent.WithLabelValues(typ).Add(float64(n))
	}
	if r.Failed > 0 {
		notificationsFailed.WithLabelValues(loop).Add(float64(r.Failed))
	}
}
