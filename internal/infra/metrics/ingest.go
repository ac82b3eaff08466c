package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(ingestStepsTotal) }

var ingestStepsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ingest_steps_total",
		Help: "Message ingest steps by outcome.",
	},
	[]string{"step", "result"}, // step: user_upsert|message_insert|cache_invalidate
)

func IncIngestStep(step, result string) {
	ingestStepsTotal.WithLabelValues(norm(step), norm(result)).Inc()
}
