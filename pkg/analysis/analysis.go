// Package analysis runs fixed-step transient simulations of a state-space
// model and collects the output series.
package analysis

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/ProNinjaDev/statespace/pkg/device"
	"github.com/ProNinjaDev/statespace/pkg/statespace"
)

const TimeKey = "TIME"

type Analysis interface {
	Setup(model *statespace.Model, components []device.Component, initial map[string]float64) error
	Execute(ctx context.Context) error
	GetResults() map[string][]float64
}

type BaseAnalysis struct {
	Model   *statespace.Model
	results map[string][]float64 // key: variable name, value: result by time
}

func NewBaseAnalysis() *BaseAnalysis {
	return &BaseAnalysis{results: make(map[string][]float64)}
}

// StoreTimeResult appends one sample of every output.
func (a *BaseAnalysis) StoreTimeResult(time float64, outputs []float64) {
	a.results[TimeKey] = append(a.results[TimeKey], time)
	for i, name := range a.Model.OutputVariables {
		a.results[name] = append(a.results[name], outputs[i])
	}
}

func (a *BaseAnalysis) GetResults() map[string][]float64 {
	return a.results
}

// InputValues returns the excitation of each model input, taken from the
// component the input variable refers to.
func InputValues(model *statespace.Model, components []device.Component) ([]float64, error) {
	idx := device.Index(components)
	values := make([]float64, model.NumInputs())
	for i, name := range model.InputVariables {
		v, err := device.ParseVariable(name)
		if err != nil {
			return nil, err
		}
		comp, ok := idx[v.Component]
		if !ok {
			return nil, fmt.Errorf("input %s: component %q not found", name, v.Component)
		}
		values[i] = comp.Value
	}
	return values, nil
}

// InitialState orders named initial conditions by the model's state
// variables. Missing states start at zero.
func InitialState(model *statespace.Model, initial map[string]float64) ([]float64, error) {
	x := make([]float64, model.NumStates())
	position := make(map[string]int, len(x))
	for i, name := range model.StateVariables {
		position[name] = i
	}

	for name, value := range initial {
		v, err := device.ParseVariable(name)
		if err != nil {
			return nil, fmt.Errorf("initial condition: %w", err)
		}
		i, ok := position[v.String()]
		if !ok {
			return nil, fmt.Errorf("initial condition for %s: %w: not a state variable", name, statespace.ErrUnknownVariable)
		}
		x[i] = value
	}
	return x, nil
}

// mulVec sets dst = a*x and tolerates zero sizes.
func mulVec(dst []float64, a *mat.Dense, x []float64) {
	if len(dst) == 0 {
		return
	}
	if len(x) == 0 {
		clear(dst)
		return
	}
	mat.NewVecDense(len(dst), dst).MulVec(a, mat.NewVecDense(len(x), x))
}
