package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records cart session activity.
type CartMetrics struct {
	operations *prometheus.CounterVec
	mergeLines *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Cart session operations by operation, mode and outcome.",
	}, []string{"operation", "mode", "outcome"})
	mergeLines := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_merge_lines_total",
		Help: "Login merge line outcomes.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_operation_duration_seconds",
		Help:    "Duration of cart session operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(operations, mergeLines, duration)
	return &CartMetrics{
		operations: operations,
		mergeLines: mergeLines,
		duration:   duration,
	}
}

// IncOperation increments the operation counter.
func (c *CartMetrics) IncOperation(operation, mode, outcome string) {
	if c == nil || c.operations == nil {
		return
	}
	c.operations.WithLabelValues(normalizeLabel(operation), normalizeLabel(mode), normalizeLabel(outcome)).Inc()
}

// IncMergeLine increments the merge line counter for the given outcome.
func (c *CartMetrics) IncMergeLine(outcome string) {
	if c == nil || c.mergeLines == nil {
		return
	}
	c.mergeLines.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveDuration records the duration for the named operation.
func (c *CartMetrics) ObserveDuration(operation string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
