// Package metrics holds the Prometheus instrumentation for the engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolution outcome label values.
const (
	OutcomeMaterialized = "materialized"
	OutcomeDropped      = "dropped"
)

// Metrics holds all Prometheus metrics for the engine. Pass to components
// that need to record; a nil *Metrics disables recording.
type Metrics struct {
	ResolutionsTotal *prometheus.CounterVec
	DispatchesTotal  *prometheus.CounterVec
	DispatchDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		ResolutionsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "actiongate",
				Name:      "resolutions_total",
				Help:      "Descriptor resolutions by outcome and drop reason",
			},
			[]string{"outcome", "reason"}, // outcome=materialized/dropped
		),
		DispatchesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "actiongate",
				Name:      "dispatches_total",
				Help:      "Executed action commands by status class",
			},
			[]string{"key", "status"}, // status=2xx/4xx/5xx/error
		),
		DispatchDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "actiongate",
				Name:      "dispatch_duration_seconds",
				Help:      "Action dispatch duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"key"},
		),
	}
}

// RecordResolution counts one resolution outcome. Nil-safe.
func (m *Metrics) RecordResolution(outcome, reason string) {
	if m == nil {
		return
	}
	m.ResolutionsTotal.WithLabelValues(outcome, reason).Inc()
}

// RecordDispatch counts one dispatch and its duration. Nil-safe.
func (m *Metrics) RecordDispatch(key, status string, seconds float64) {
	if m == nil {
		return
	}
	m.DispatchesTotal.WithLabelValues(key, status).Inc()
	m.DispatchDuration.WithLabelValues(key).Observe(seconds)
}
