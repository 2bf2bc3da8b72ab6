package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	lastRunGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "freeze_pipeline",
		Subsystem: "run",
		Name:      "last_completed_timestamp_seconds",
		Help:      "Unix timestamp of the most recent completed pipeline run.",
	})
	lastRecordsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "freeze_pipeline",
		Subsystem: "run",
		Name:      "last_membership_records",
		Help:      "Membership records produced by the most recent run.",
	})
	lastCancellationsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "freeze_pipeline",
		Subsystem: "run",
		Name:      "last_cancellation_records",
		Help:      "Cancellation records produced by the most recent run.",
	})
	lastExceededGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "freeze_pipeline",
		Subsystem: "run",
		Name:      "last_exceeded_records",
		Help:      "Records classified Exceeded in the most recent run.",
	})
)

func init() {
	prometheus.MustRegister(lastRunGauge, lastRecordsGauge, lastCancellationsGauge, lastExceededGauge)
}

// RecordRunCompleted updates the run watermark gauges.
func RecordRunCompleted(ts time.Time, records, cancellations, exceeded int) {
	if !ts.IsZero() {
		lastRunGauge.Set(float64(ts.Unix()))
	}
	lastRecordsGauge.Set(float64(records))
	lastCancellationsGauge.Set(float64(cancellations))
	lastExceededGauge.Set(float64(exceeded))
}
