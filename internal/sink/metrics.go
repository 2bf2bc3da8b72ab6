package sink

import "github.com/prometheus/client_golang/prometheus"

var sinkWrites = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "freeze_pipeline_sink_writes_total",
		Help: "Sink write outcomes per sink.",
	},
	[]string{"sink", "outcome"},
)

func init() {
	prometheus.MustRegister(sinkWrites)
}

func recordSinkWrite(sink, outcome string) {
	sinkWrites.WithLabelValues(sink, outcome).Inc()
}
