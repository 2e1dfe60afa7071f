package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics for the external LLM and embedding providers and
// for the recommendation pipeline itself.
var (
	CompletionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopmate",
			Name:      "completion_requests_total",
			Help:      "Total number of chat-completion requests",
		},
		[]string{"model", "status"},
	)

	CompletionRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shopmate",
			Name:      "completion_request_duration_seconds",
			Help:      "Chat-completion request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"model"},
	)

	CompletionTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopmate",
			Name:      "completion_tokens_total",
			Help:      "Total chat-completion tokens consumed",
		},
		[]string{"model", "type"}, // type: "prompt" / "total"
	)

	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopmate",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shopmate",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopmate",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	IntentExtractionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopmate",
			Name:      "intent_extractions_total",
			Help:      "Structured-intent extraction outcomes",
		},
		[]string{"outcome"}, // "structured" / "degraded"
	)

	RecommendationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopmate",
			Name:      "recommendations_total",
			Help:      "Recommendations served, by ranking path",
		},
		[]string{"path"}, // "ranked" / "fallback"
	)

	HistoryWriteFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shopmate",
			Name:      "history_write_failures_total",
			Help:      "History appends that failed and were swallowed",
		},
	)
)

var providerMetricsRegistered bool

// RegisterProviderMetrics registers pipeline and provider metrics.
// Must be called once from main.
func RegisterProviderMetrics() {
	if providerMetricsRegistered {
		return
	}
	prometheus.MustRegister(CompletionRequestsTotal)
	prometheus.MustRegister(CompletionRequestDuration)
	prometheus.MustRegister(CompletionTokensTotal)
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(EmbeddingCacheTotal)
	prometheus.MustRegister(IntentExtractionsTotal)
	prometheus.MustRegister(RecommendationsTotal)
	prometheus.MustRegister(HistoryWriteFailuresTotal)
	providerMetricsRegistered = true
}
