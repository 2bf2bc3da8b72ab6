package momence

import "github.com/prometheus/client_golang/prometheus"

var (
	attemptCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "freeze_pipeline",
		Subsystem: "upstream",
		Name:      "fetch_attempts_total",
		Help:      "Number of history fetch attempts issued, retries included.",
	})

	successCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "freeze_pipeline",
		Subsystem: "upstream",
		Name:      "fetch_success_total",
		Help:      "Number of history fetches that eventually succeeded.",
	})

	retryCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "freeze_pipeline",
		Subsystem: "upstream",
		Name:      "fetch_retries_total",
		Help:      "Number of retries scheduled, labeled by failure class.",
	}, []string{"class"})

	failureCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "freeze_pipeline",
		Subsystem: "upstream",
		Name:      "fetch_failures_total",
		Help:      "Number of terminal fetch failures, labeled by failure kind.",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(attemptCounter, successCounter, retryCounter, failureCounter)
}

func recordFetchAttempt() { attemptCounter.Inc() }
func recordFetchSuccess() { successCounter.Inc() }
func recordFetchRetry(class string) { retryCounter.WithLabelValues(class).Inc() }
func recordFetchFailure(kind string) { failureCounter.WithLabelValues(kind).Inc() }
