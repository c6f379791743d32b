// Package metrics exposes Prometheus counters for the bid engine. Invariant
// violations (cascade cap, lock starvation) surface here so operators can
// alarm on them; validation rejections intentionally do not.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsAppended = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bid_events_appended_total",
		Help: "Number of events durably appended to the ledger.",
	})

	cascadeEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auto_bid_cascade_events_total",
		Help: "Number of system-placed auto-bid events produced by cascades.",
	})

	cascadeLimitExceeded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cascade_limit_exceeded_total",
		Help: "Cascades aborted by the defensive iteration cap. Nonzero values indicate configuration corruption.",
	})

	lotLockTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lot_lock_timeouts_total",
		Help: "Bid submissions rejected because the lot's exclusive section could not be acquired in time.",
	})

	fanoutDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fanout_dropped_total",
		Help: "Live pushes dropped due to a full subscriber buffer. Subscribers recover via ledger backfill.",
	})

	fanoutSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fanout_subscribers",
		Help: "Currently connected fan-out subscribers.",
	})
)

// RecordEventsAppended counts n durably appended events.
func RecordEventsAppended(n int) {
	eventsAppended.Add(float64(n))
}

// RecordCascadeEvent counts one system-placed auto-bid.
func RecordCascadeEvent() {
	cascadeEvents.Inc()
}

// RecordCascadeLimitExceeded counts an aborted runaway cascade.
func RecordCascadeLimitExceeded() {
	cascadeLimitExceeded.Inc()
}

// RecordLotLockTimeout counts a submission that timed out waiting for its lot.
func RecordLotLockTimeout() {
	lotLockTimeouts.Inc()
}

// RecordFanoutDropped counts a live push dropped on a full buffer.
func RecordFanoutDropped() {
	fanoutDropped.Inc()
}

// UpdateSubscriberCount tracks connected fan-out subscribers.
func UpdateSubscriberCount(delta int) {
	fanoutSubscribers.Add(float64(delta))
}
