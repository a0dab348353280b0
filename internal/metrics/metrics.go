package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoreroom_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scoreroom_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	RoomsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scoreroom_rooms_created_total",
			Help: "Total rooms created",
		},
	)

	RoomsSettled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoreroom_rooms_settled_total",
			Help: "Total rooms settled",
		},
		[]string{"trigger"}, // "manual", "idle", "all_left", "degraded"
	)

	TransfersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scoreroom_transfers_total",
			Help: "Total point transfers applied",
		},
	)

	TransferConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scoreroom_transfer_conflicts_total",
			Help: "Total version conflicts hit while applying room writes",
		},
	)

	RoundsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoreroom_rounds_recorded_total",
			Help: "Total round records created",
		},
		[]string{"balanced"}, // "true" or "false"
	)

	UsersCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scoreroom_users_created_total",
			Help: "Total user profiles created on first contact",
		},
	)

	WatchSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scoreroom_watch_subscribers",
			Help: "Currently connected room watch subscribers",
		},
	)
)
