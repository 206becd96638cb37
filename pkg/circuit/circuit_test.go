package circuit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProNinjaDev/statespace/internal/nettest"
	"github.com/ProNinjaDev/statespace/pkg/analysis"
	"github.com/ProNinjaDev/statespace/pkg/device"
	"github.com/ProNinjaDev/statespace/pkg/equation"
	"github.com/ProNinjaDev/statespace/pkg/metrics"
	"github.com/ProNinjaDev/statespace/pkg/statespace"
	"github.com/ProNinjaDev/statespace/pkg/topology"
	"github.com/ProNinjaDev/statespace/pkg/util"
)

func TestBuildSeriesRC(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	reg := metrics.NewRegistry()

	c := New("rc", nettest.SeriesRC(), WithLogger(logger), WithMetrics(reg))
	model, err := c.Build(nil)
	require.NoError(t, err)

	assert.Equal(t, "rc", c.Name())
	assert.Len(t, c.GetTree().Branches, 2)
	assert.Equal(t, []string{"R1"}, c.GetLoopMatrix().Chords)
	assert.Equal(t, 6, c.GetSystem().Len())
	assert.Same(t, model, c.GetModel())
	assert.Equal(t, []string{"U_C1"}, model.StateVariables)
	assert.Equal(t, 6, model.NumOutputs())

	for _, msg := range []string{"tree built", "loop matrix built", "equations assembled", "model reduced"} {
		assert.Contains(t, logs.String(), msg)
	}
	assert.Contains(t, logs.String(), "circuit=rc")
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.BuildsTotal.WithLabelValues("ok", "")))
}

func TestBuildFailures(t *testing.T) {
	cases := []struct {
		name       string
		components []device.Component
		outputs    []string
		kind       string
		target     error
	}{
		{
			name:       "duplicate names",
			components: []device.Component{device.NewResistor("R1", 1, 0, 1), device.NewResistor("R1", 1, 0, 2)},
			kind:       "invalid_component",
			target:     device.ErrInvalidComponent,
		},
		{
			name: "disconnected",
			components: []device.Component{
				device.NewVoltageSource("E1", 0, 1, 1), device.NewResistor("R1", 1, 0, 1),
				device.NewResistor("R2", 2, 3, 1),
			},
			kind:   "topology",
			target: topology.ErrTopology,
		},
		{
			name:       "unknown output",
			components: nettest.SeriesRC(),
			outputs:    []string{"U_X9"},
			kind:       "unknown_variable",
			target:     statespace.ErrUnknownVariable,
		},
		{
			name: "parallel sources",
			components: []device.Component{
				device.NewVoltageSource("E1", 0, 1, 1), device.NewVoltageSource("E2", 0, 1, 2),
			},
			outputs: []string{"I_E1"},
			kind:    "singular",
			target:  statespace.ErrSingularSystem,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg := metrics.NewRegistry()
			c := New(tc.name, tc.components, WithMetrics(reg))

			_, err := c.Build(tc.outputs)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.target)
			assert.Equal(t, tc.kind, ErrorKind(err))
			assert.Equal(t, 1.0, testutil.ToFloat64(reg.BuildsTotal.WithLabelValues("failed", tc.kind)))
		})
	}
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "", ErrorKind(nil))
	assert.Equal(t, "other", ErrorKind(errors.New("boom")))
	assert.Equal(t, "dimension", ErrorKind(fmt.Errorf("wrap: %w", &equation.DimensionError{Equations: 1, Variables: 2})))
}

func TestStageOrder(t *testing.T) {
	c := New("rc", nettest.SeriesRC())
	assert.ErrorIs(t, c.BuildLoopMatrix(), ErrStageOrder)
	assert.ErrorIs(t, c.AssembleEquations(), ErrStageOrder)
	assert.ErrorIs(t, c.Reduce(nil), ErrStageOrder)

	_, err := c.Simulate(context.Background(), analysis.NewTransient(1e-4, 1e-3, util.ForwardEuler), nil)
	assert.ErrorIs(t, err, ErrStageOrder)
}

func TestSimulate(t *testing.T) {
	reg := metrics.NewRegistry()
	c := New("rc", nettest.SeriesRC(), WithMetrics(reg))
	_, err := c.Build([]string{"U_C1"})
	require.NoError(t, err)

	results, err := c.Simulate(context.Background(), analysis.NewTransient(1e-4, 1e-2, util.TrapezoidalMethod), nil)
	require.NoError(t, err)
	require.Len(t, results[analysis.TimeKey], 101)
	assert.InDelta(t, 10*(1-0.36788), results["U_C1"][100], 0.05)

	assert.Equal(t, 1.0, testutil.ToFloat64(reg.SimulationsTotal.WithLabelValues("trapezoidal", "ok")))
	assert.Equal(t, 100.0, testutil.ToFloat64(reg.SimulationSteps.WithLabelValues("trapezoidal")))

	_, err = c.Simulate(context.Background(), analysis.NewTransient(0, 1e-2, util.ForwardEuler), nil)
	assert.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.SimulationsTotal.WithLabelValues("euler", "failed")))
}
