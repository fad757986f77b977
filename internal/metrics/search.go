package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search pipeline Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hybridex",
			Name:      "search_requests_total",
			Help:      "Total number of search requests by mode and outcome",
		},
		[]string{"mode", "status"},
	)

	SearchStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hybridex",
			Name:      "search_stage_duration_seconds",
			Help:      "Search pipeline stage duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"mode", "stage"},
	)

	SearchStageErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hybridex",
			Name:      "search_stage_errors_total",
			Help:      "Search failures by stage",
		},
		[]string{"mode", "stage"},
	)

	SearchCandidates = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hybridex",
			Name:      "search_candidates",
			Help:      "Number of candidates entering fusion or rerank",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
		[]string{"stage"},
	)

	RerankRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hybridex",
			Name:      "rerank_requests_total",
			Help:      "Total number of reranking collaborator calls",
		},
		[]string{"provider", "model", "status"},
	)

	RerankRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hybridex",
			Name:      "rerank_request_duration_seconds",
			Help:      "Reranking collaborator call duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)
)

var searchMetricsOnce sync.Once

// RegisterSearchMetrics registers search and rerank metrics on the default registry.
func RegisterSearchMetrics() {
	searchMetricsOnce.Do(func() {
		prometheus.MustRegister(
			SearchRequestsTotal,
			SearchStageDuration,
			SearchStageErrorsTotal,
			SearchCandidates,
			RerankRequestsTotal,
			RerankRequestDuration,
		)
	})
}
