package metrics

import (
	"time"
)

// RecordBuild records one model derivation. errKind is empty on success.
func (r *Registry) RecordBuild(errKind string, duration time.Duration, components, states, dependent int) {
	r.BuildDuration.Observe(duration.Seconds())
	r.ComponentsPerRun.Observe(float64(components))

	if errKind != "" {
		r.BuildsTotal.WithLabelValues("failed", errKind).Inc()
		return
	}
	r.BuildsTotal.WithLabelValues("ok", "").Inc()
	r.ModelStates.Observe(float64(states))
	r.DependentStates.Add(float64(dependent))
}

// RecordSimulation records one transient run
func (r *Registry) RecordSimulation(method, status string, steps int, duration time.Duration) {
	r.SimulationsTotal.WithLabelValues(method, status).Inc()
	r.SimulationSteps.WithLabelValues(method).Add(float64(steps))
	r.SimulationDuration.WithLabelValues(method).Observe(duration.Seconds())
}
