package scheduler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	batchCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "freeze_pipeline",
		Subsystem: "scheduler",
		Name:      "batches_total",
		Help:      "Number of batches joined.",
	})

	itemCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "freeze_pipeline",
		Subsystem: "scheduler",
		Name:      "items_total",
		Help:      "Number of work items completed, labeled by outcome.",
	}, []string{"outcome"})

	batchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "freeze_pipeline",
		Subsystem: "scheduler",
		Name:      "batch_duration_seconds",
		Help:      "Wall time from batch dispatch to join.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
	})
)

func init() {
	prometheus.MustRegister(batchCounter, itemCounter, batchDuration)
}

func recordBatch(succeeded, failed int, elapsed time.Duration) {
	batchCounter.Inc()
	itemCounter.WithLabelValues("success").Add(float64(succeeded))
	itemCounter.WithLabelValues("failure").Add(float64(failed))
	batchDuration.Observe(elapsed.Seconds())
}
