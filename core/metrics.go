package core

import "github.com/prometheus/client_golang/prometheus"

// BatchesApplied counts batches merged into documents.
var BatchesApplied = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "quill",
	Subsystem: "merge",
	Name:      "batches_applied",
	Help:      "Number of batches applied.",
})

// OpsApplied counts operations contained in applied batches.
var OpsApplied = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "quill",
	Subsystem: "merge",
	Name:      "ops_applied",
	Help:      "Number of operations applied.",
})

// BatchesRejected counts rejected batches by reason.
var BatchesRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "quill",
	Subsystem: "merge",
	Name:      "batches_rejected",
	Help:      "Number of batches rejected.",
}, []string{"reason"})

// BatchesPending is the number of batches waiting for their dependencies.
var BatchesPending = prometheus.NewGauge(prometheus.GaugeOpts{
	Namespace: "quill",
	Subsystem: "merge",
	Name:      "batches_pending",
	Help:      "Number of batches waiting for dependencies.",
})

// MergeDuration observes the time spent applying batches.
var MergeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
	Namespace: "quill",
	Subsystem: "merge",
	Name:      "duration_seconds",
	Help:      "Time spent applying batches.",
	Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
})

// Collectors returns all metrics collectors so they can be registered by the caller.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		BatchesApplied,
		OpsApplied,
		BatchesRejected,
		BatchesPending,
		MergeDuration,
	}
}
