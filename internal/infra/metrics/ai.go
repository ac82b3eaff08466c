package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		analysisCallsTotal,
		analysisLatencyMs,
		analysisPromptMessages,
	)
}

var (
	analysisCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_calls_total",
			Help: "Calls to the text-generation provider by outcome.",
		},
		[]string{"provider", "result"},
	)

	analysisLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analysis_latency_ms",
			Help:    "Text-generation call latency distribution in milliseconds.",
			Buckets: []float64{100, 250, 500, 1000, 2000, 4000, 8000, 16000, 32000},
		},
		[]string{"provider", "success"},
	)

	analysisPromptMessages = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analysis_prompt_messages",
			Help:    "Number of messages that fit into the prompt budget.",
			Buckets: []float64{1, 5, 10, 25, 50, 75, 100},
		},
	)
)

func ObserveAnalysis(provider, result string, latencyMs int64, success bool) {
	analysisCallsTotal.WithLabelValues(norm(provider), norm(result)).Inc()
	analysisLatencyMs.WithLabelValues(norm(provider), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}

func ObservePromptMessages(n int) {
	analysisPromptMessages.Observe(float64(n))
}
