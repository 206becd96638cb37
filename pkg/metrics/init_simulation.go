package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSimulationMetrics() {
	r.SimulationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "statespace_simulations_total",
			Help: "Total number of transient simulations",
		},
		[]string{"method", "status"},
	)

	r.SimulationSteps = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "statespace_simulation_steps_total",
			Help: "Integration steps taken",
		},
		[]string{"method"},
	)

	r.SimulationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "statespace_simulation_duration_seconds",
			Help:    "Duration of transient simulations in seconds",
			Buckets: prometheus.ExponentialBuckets(1e-4, 4, 10),
		},
		[]string{"method"},
	)
}
