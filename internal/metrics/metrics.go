//nolint:gochecknoglobals
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Trigger outcomes.
const (
	OutcomeCreated   = "created"
	OutcomeSkipped   = "skipped"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)

// Listener results.
const (
	NotificationDispatched = "dispatched"
	NotificationDropped    = "dropped"
	NotificationFailed     = "failed"
)

var (
	triggerEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "meetings",
		Subsystem: "trigger",
		Name:      "events_total",
		Help:      "Invitation update events handled, by outcome.",
	}, []string{"outcome"})

	triggerDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "meetings",
		Subsystem: "trigger",
		Name:      "handle_duration_seconds",
		Help:      "Time spent handling one invitation update event.",
		Buckets:   prometheus.DefBuckets,
	})

	listenerNotifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "meetings",
		Subsystem: "listener",
		Name:      "notifications_total",
		Help:      "Change notifications received from the database, by result.",
	}, []string{"result"})
)

func RecordTriggerOutcome(outcome string) {
	triggerEvents.WithLabelValues(outcome).Inc()
}

func ObserveHandleDuration(seconds float64) {
	triggerDuration.Observe(seconds)
}

func RecordNotification(result string) {
	listenerNotifications.WithLabelValues(result).Inc()
}
