// Package circuit runs the model derivation pipeline over a component list
// and keeps every intermediate result.
package circuit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ProNinjaDev/statespace/pkg/analysis"
	"github.com/ProNinjaDev/statespace/pkg/device"
	"github.com/ProNinjaDev/statespace/pkg/equation"
	"github.com/ProNinjaDev/statespace/pkg/metrics"
	"github.com/ProNinjaDev/statespace/pkg/statespace"
	"github.com/ProNinjaDev/statespace/pkg/topology"
)

// ErrStageOrder is returned when a stage runs before the one it depends on.
var ErrStageOrder = errors.New("circuit: stage run out of order")

type Circuit struct {
	name       string
	components []device.Component
	logger     *slog.Logger
	metrics    *metrics.Registry

	tree   *topology.Tree
	loops  *topology.LoopMatrix
	system *equation.System
	model  *statespace.Model
}

type Option func(*Circuit)

// WithLogger sets the logger for stage records. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Circuit) {
		c.logger = logger
	}
}

// WithMetrics records builds and simulations into r.
func WithMetrics(r *metrics.Registry) Option {
	return func(c *Circuit) {
		c.metrics = r
	}
}

func New(name string, components []device.Component, opts ...Option) *Circuit {
	c := &Circuit{
		name:       name,
		components: components,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("circuit", name)
	return c
}

func (c *Circuit) Validate() error {
	if err := device.Validate(c.components); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	c.logger.Debug("components validated", "components", len(c.components))
	return nil
}

func (c *Circuit) BuildTree() error {
	tree, err := topology.Build(c.components)
	if err != nil {
		return fmt.Errorf("build tree: %w", err)
	}
	c.tree = tree
	c.logger.Debug("tree built", "branches", len(tree.Branches), "chords", len(tree.Chords))
	return nil
}

func (c *Circuit) BuildLoopMatrix() error {
	if c.tree == nil {
		return fmt.Errorf("%w: loop matrix needs the tree", ErrStageOrder)
	}
	lm, err := c.tree.LoopMatrix()
	if err != nil {
		return fmt.Errorf("build loop matrix: %w", err)
	}
	c.loops = lm
	c.logger.Debug("loop matrix built", "loops", len(lm.Chords), "branches", len(lm.Branches))
	return nil
}

func (c *Circuit) AssembleEquations() error {
	if c.loops == nil {
		return fmt.Errorf("%w: equations need the loop matrix", ErrStageOrder)
	}
	sys, err := equation.Assemble(c.components, c.loops)
	if err != nil {
		return fmt.Errorf("assemble equations: %w", err)
	}
	c.system = sys
	c.logger.Debug("equations assembled",
		"variables", len(sys.Variables), "rows", len(sys.Rows), "implicit", len(sys.Implicit))
	return nil
}

// Reduce derives the model and selects its outputs. Empty outputs select
// every variable.
func (c *Circuit) Reduce(outputs []string) error {
	if c.system == nil {
		return fmt.Errorf("%w: reduction needs the equations", ErrStageOrder)
	}
	model, err := statespace.Reduce(c.system, c.components)
	if err != nil {
		return fmt.Errorf("reduce: %w", err)
	}
	if err := model.SetOutputs(outputs); err != nil {
		return fmt.Errorf("set outputs: %w", err)
	}
	c.model = model
	c.logger.Debug("model reduced",
		"states", model.NumStates(), "inputs", model.NumInputs(), "outputs", model.NumOutputs(),
		"dependent", len(model.Reduced().Dependent))
	return nil
}

// Build runs every stage in order and returns the model.
func (c *Circuit) Build(outputs []string) (*statespace.Model, error) {
	start := time.Now()
	err := c.build(outputs)

	if c.metrics != nil {
		states, dependent := 0, 0
		if err == nil {
			states = c.model.NumStates()
			dependent = len(c.model.Reduced().Dependent)
		}
		c.metrics.RecordBuild(ErrorKind(err), time.Since(start), len(c.components), states, dependent)
	}
	if err != nil {
		return nil, err
	}
	return c.model, nil
}

func (c *Circuit) build(outputs []string) error {
	stages := []func() error{c.Validate, c.BuildTree, c.BuildLoopMatrix, c.AssembleEquations}
	for _, stage := range stages {
		if err := stage(); err != nil {
			return err
		}
	}
	return c.Reduce(outputs)
}

// Simulate runs tr over the built model and returns its series.
func (c *Circuit) Simulate(ctx context.Context, tr *analysis.Transient, initial map[string]float64) (map[string][]float64, error) {
	if c.model == nil {
		return nil, fmt.Errorf("%w: simulation needs the model", ErrStageOrder)
	}

	start := time.Now()
	err := tr.Setup(c.model, c.components, initial)
	if err == nil {
		err = tr.Execute(ctx)
	}

	if c.metrics != nil {
		status := "ok"
		if err != nil {
			status = "failed"
		}
		c.metrics.RecordSimulation(tr.Method().String(), status, tr.Steps(), time.Since(start))
	}
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}
	c.logger.Debug("simulation finished", "method", tr.Method().String(), "steps", tr.Steps())
	return tr.GetResults(), nil
}

// ErrorKind classifies a pipeline error for metrics labels. It returns ""
// for nil.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, device.ErrInvalidComponent):
		return "invalid_component"
	case errors.Is(err, topology.ErrTopology):
		return "topology"
	case errors.Is(err, equation.ErrDimension):
		return "dimension"
	case errors.Is(err, statespace.ErrSingularSystem):
		return "singular"
	case errors.Is(err, statespace.ErrUnknownVariable):
		return "unknown_variable"
	case errors.Is(err, statespace.ErrDuplicateOutput):
		return "duplicate_output"
	}
	return "other"
}

func (c *Circuit) Name() string                        { return c.name }
func (c *Circuit) GetComponents() []device.Component   { return c.components }
func (c *Circuit) GetTree() *topology.Tree             { return c.tree }
func (c *Circuit) GetLoopMatrix() *topology.LoopMatrix { return c.loops }
func (c *Circuit) GetSystem() *equation.System         { return c.system }
func (c *Circuit) GetModel() *statespace.Model         { return c.model }
