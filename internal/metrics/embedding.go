package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Embedding outcomes used as the status label of EmbeddingRequestsTotal.
const (
	EmbedOK            = "ok"
	EmbedConfiguration = "configuration"
	EmbedAPIError      = "api_error"
	EmbedEmptyResponse = "empty_response"
)

// Embedding collaborator and cache metrics.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hybridex",
			Subsystem: "embedding",
			Name:      "requests_total",
			Help:      "Embedding collaborator calls by outcome",
		},
		[]string{"provider", "model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hybridex",
			Subsystem: "embedding",
			Name:      "request_duration_seconds",
			Help:      "Embedding collaborator latency in seconds, failures included",
			Buckets:   []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hybridex",
			Subsystem: "embedding",
			Name:      "tokens_total",
			Help:      "Tokens billed by the embedding collaborator",
		},
		[]string{"provider", "model", "kind"},
	)

	// EmbeddingCacheTotal counts lookups as l1_hit, l2_hit or miss.
	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hybridex",
			Subsystem: "embedding",
			Name:      "cache_lookups_total",
			Help:      "Embedding cache lookups by tier",
		},
		[]string{"result"},
	)
)

var embeddingOnce sync.Once

// RegisterEmbeddingMetrics registers the embedding collectors on the default registry.
func RegisterEmbeddingMetrics() {
	embeddingOnce.Do(func() {
		prometheus.MustRegister(
			EmbeddingRequestsTotal,
			EmbeddingRequestDuration,
			EmbeddingTokensTotal,
			EmbeddingCacheTotal,
		)
	})
}
