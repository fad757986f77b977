package hybridex

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Operation outcomes reported in the status label.
const (
	statusOK      = "ok"
	statusError   = "error"
	statusTimeout = "timeout"
)

type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	stages     *prometheus.CounterVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hybridex",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "SDK calls by operation and outcome.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hybridex",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK call latency in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
		stages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hybridex",
			Subsystem: "sdk",
			Name:      "stage_failures_total",
			Help:      "Failed SDK calls attributed to a retrieval stage.",
		}, []string{"stage"}),
	}
	if err := adopt(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := adopt(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := adopt(reg, &m.stages); err != nil {
		return nil, err
	}
	return m, nil
}

// adopt registers c, or swaps it for the collector already registered under
// the same descriptor so several clients can share one registry.
func adopt[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var dup prometheus.AlreadyRegisteredError
	if !errors.As(err, &dup) {
		return fmt.Errorf("hybridex: register metric: %w", err)
	}
	existing, ok := dup.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("hybridex: metric registered with type %T", dup.ExistingCollector)
	}
	*c = existing
	return nil
}

type observer struct {
	logger  *zap.Logger
	metrics *sdkMetrics
}

func newObserver(logger *zap.Logger, reg prometheus.Registerer) (*observer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	obs := &observer{logger: logger}
	if reg == nil {
		return obs, nil
	}
	m, err := newSDKMetrics(reg)
	if err != nil {
		return nil, err
	}
	obs.metrics = m
	return obs, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return statusOK
	case errors.Is(err, ErrTimeout):
		return statusTimeout
	default:
		return statusError
	}
}

// observe records one finished operation. Safe on a nil receiver.
func (o *observer) observe(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	elapsed := time.Since(start)
	stage, staged := StageOf(err)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, outcome(err)).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(elapsed.Seconds())
		if staged {
			o.metrics.stages.WithLabelValues(string(stage)).Inc()
		}
	}

	if err == nil {
		o.logger.Debug("operation completed", zap.String("op", op), zap.Duration("duration", elapsed))
		return
	}
	fields := []zap.Field{zap.String("op", op), zap.Duration("duration", elapsed), zap.Error(err)}
	if staged {
		fields = append(fields, zap.String("stage", string(stage)))
	}
	o.logger.Warn("operation failed", fields...)
}
