package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterSearchMetrics_Idempotent(t *testing.T) {
	RegisterSearchMetrics()
	RegisterSearchMetrics()
	RegisterEmbeddingMetrics()
	RegisterEmbeddingMetrics()
}

func TestSearchRequestsTotal_Labels(t *testing.T) {
	before := testutil.ToFloat64(SearchRequestsTotal.WithLabelValues("hybrid", "ok"))
	SearchRequestsTotal.WithLabelValues("hybrid", "ok").Inc()
	after := testutil.ToFloat64(SearchRequestsTotal.WithLabelValues("hybrid", "ok"))
	if after-before != 1 {
		t.Errorf("expected counter to grow by 1, got %f", after-before)
	}
}

func TestSearchStageDuration_Observes(t *testing.T) {
	SearchStageDuration.WithLabelValues("vector", "embed").Observe(0.01)
	if n := testutil.CollectAndCount(SearchStageDuration); n < 1 {
		t.Errorf("expected at least one series, got %d", n)
	}
}
