package docstore

import "github.com/prometheus/client_golang/prometheus"

var (
	// activeSubs gauges open query subscriptions.
	activeSubs = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "docstore_active_subscriptions",
			Help: "Current number of open query subscriptions.",
		},
	)

	// snapshotsDelivered counts snapshots handed to subscribers, by collection.
	snapshotsDelivered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docstore_snapshots_delivered_total",
			Help: "Total number of snapshots delivered to subscribers.",
		},
		[]string{"collection"},
	)

	// commits counts write commits by collection and result (ok|denied|error).
	commits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docstore_commits_total",
			Help: "Total number of document writes committed or rejected.",
		},
		[]string{"collection", "result"},
	)

	// pendingWrites gauges writes accepted but not yet committed.
	pendingWrites = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "docstore_pending_writes",
			Help: "Current number of local writes awaiting commit.",
		},
	)
)

func init() {
	prometheus.MustRegister(activeSubs, snapshotsDelivered, commits, pendingWrites)
}
