package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Click pipeline metrics. The redirect path is fire-and-forget, so these
// counters are the only place where dropped or failed writes show up.
var (
	ClicksEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shortit_clicks_enqueued_total",
		Help: "Click events accepted into the processing queue",
	})

	ClicksDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shortit_clicks_dropped_total",
		Help: "Click events dropped because the queue was full",
	})

	ClicksProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shortit_clicks_processed_total",
		Help: "Click rows successfully written",
	})

	ClickInsertFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shortit_click_insert_failures_total",
		Help: "Click row inserts that failed after all retries",
	})

	CounterIncrementFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shortit_counter_increment_failures_total",
		Help: "URL click-counter increments that failed",
	})

	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shortit_click_queue_depth",
		Help: "Click events currently buffered",
	})
)

var (
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shortit_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "status"},
	)

	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortit_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "status"},
	)
)
