package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/newslens/alignment-notifier/internal/domain"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	NotificationsSent   prometheus.Counter
	NotificationsFailed prometheus.Counter
	NotificationsQueued prometheus.Counter
	DispatchDuration    prometheus.Histogram
	QueuePending        prometheus.Gauge
	QueueFailed         prometheus.Gauge
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		NotificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total number of queue records successfully delivered.",
		}),

		NotificationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notifications_failed_total",
			Help: "Total number of queue records that failed delivery.",
		}),

		NotificationsQueued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notifications_queued_total",
			Help: "Total number of records enqueued by alignment changes.",
		}),

		DispatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dispatch_cycle_seconds",
			Help:    "Duration of one dispatcher batch from select to last status write.",
			Buckets: prometheus.DefBuckets,
		}),

		QueuePending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "queue_pending",
			Help: "Current number of pending records in the notification queue.",
		}),
		QueueFailed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "queue_failed",
			Help: "Current number of failed records in the notification queue.",
		}),
	}

	reg.MustRegister(
		m.NotificationsSent,
		m.NotificationsFailed,
		m.NotificationsQueued,
		m.DispatchDuration,
		m.QueuePending,
		m.QueueFailed,
	)

	return m
}

// ObserveQueued records records fanned out by one alignment change.
func (m *Metrics) ObserveQueued(n int) {
	m.NotificationsQueued.Add(float64(n))
}

// ObserveDispatch records the outcome of one dispatcher batch.
func (m *Metrics) ObserveDispatch(res domain.DispatchResult, elapsed time.Duration) {
	m.NotificationsSent.Add(float64(res.Sent))
	m.NotificationsFailed.Add(float64(res.Failed))
	m.DispatchDuration.Observe(elapsed.Seconds())
}

// SetQueueDepth refreshes the queue-depth gauges from a counts snapshot.
func (m *Metrics) SetQueueDepth(counts domain.QueueCounts) {
	m.QueuePending.Set(float64(counts.Pending))
	m.QueueFailed.Set(float64(counts.Failed))
}
