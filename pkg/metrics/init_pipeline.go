package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initPipelineMetrics() {
	r.BuildsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "statespace_builds_total",
			Help: "Total number of model derivations",
		},
		[]string{"status", "error"}, // ok/failed, error kind
	)

	r.BuildDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "statespace_build_duration_seconds",
			Help:    "Duration of model derivations in seconds",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
		},
	)

	r.ModelStates = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "statespace_model_states",
			Help:    "Number of state variables of derived models",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32},
		},
	)

	r.DependentStates = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "statespace_dependent_states_total",
			Help: "State candidates demoted by the rank analysis",
		},
	)

	r.ComponentsPerRun = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "statespace_components",
			Help:    "Number of components per derived network",
			Buckets: []float64{2, 4, 8, 16, 32, 64, 128},
		},
	)
}
