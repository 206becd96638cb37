package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics of the derivation pipeline and the integrator
type Registry struct {
	// Pipeline Metrics
	BuildsTotal      *prometheus.CounterVec
	BuildDuration    prometheus.Histogram
	ModelStates      prometheus.Histogram
	DependentStates  prometheus.Counter
	ComponentsPerRun prometheus.Histogram

	// Simulation Metrics
	SimulationsTotal   *prometheus.CounterVec
	SimulationSteps    *prometheus.CounterVec
	SimulationDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initPipelineMetrics()
	r.initSimulationMetrics()

	return r
}

// WriteToTextfile writes all metrics in the text exposition format, for the
// node exporter textfile collector.
func (r *Registry) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
