package analysis

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ProNinjaDev/statespace/pkg/device"
	"github.com/ProNinjaDev/statespace/pkg/matrix"
	"github.com/ProNinjaDev/statespace/pkg/statespace"
	"github.com/ProNinjaDev/statespace/pkg/util"
)

// Steps between context checks.
const checkEvery = 256

type Transient struct {
	BaseAnalysis
	timeStep float64
	stopTime float64
	method   util.IntegrationMethod
	order    int // Gear order

	x       []float64
	u       []float64
	bu      []float64   // B*u, constant over the run
	history [][]float64 // previous states, newest first
	solvers map[int]*matrix.CircuitMatrix
	steps   int
}

func NewTransient(tStep, tStop float64, method util.IntegrationMethod) *Transient {
	return &Transient{
		BaseAnalysis: *NewBaseAnalysis(),
		timeStep:     tStep,
		stopTime:     tStop,
		method:       method,
		order:        2,
	}
}

// SetOrder sets the Gear order (1..6).
func (tr *Transient) SetOrder(order int) {
	if order < 1 || order > 6 {
		order = 1
	}
	tr.order = order
}

func (tr *Transient) Setup(model *statespace.Model, components []device.Component, initial map[string]float64) error {
	if tr.timeStep <= 0 || tr.stopTime < 0 || math.IsNaN(tr.timeStep) || math.IsNaN(tr.stopTime) {
		return fmt.Errorf("invalid time parameters: step=%g stop=%g", tr.timeStep, tr.stopTime)
	}
	tr.Model = model
	tr.results = make(map[string][]float64)
	tr.history = nil
	tr.steps = 0

	tr.destroy()
	tr.solvers = nil
	if tr.method.Implicit() {
		tr.solvers = make(map[int]*matrix.CircuitMatrix)
	}

	var err error
	if tr.u, err = InputValues(model, components); err != nil {
		return err
	}
	if tr.x, err = InitialState(model, initial); err != nil {
		return err
	}

	tr.bu = make([]float64, model.NumStates())
	mulVec(tr.bu, model.B, tr.u)
	return nil
}

// Execute integrates from t = 0 to the stop time inclusive.
func (tr *Transient) Execute(ctx context.Context) error {
	if tr.Model == nil {
		return fmt.Errorf("model not set")
	}
	defer tr.destroy()

	total := int(math.Floor(tr.stopTime/tr.timeStep + 1e-9))
	tr.store(0)

	for k := 1; k <= total; k++ {
		if k%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		if tr.Model.NumStates() > 0 {
			if err := tr.step(); err != nil {
				return fmt.Errorf("step at t=%g: %v", float64(k)*tr.timeStep, err)
			}
		}
		tr.steps++
		tr.store(float64(k) * tr.timeStep)
	}
	return ctx.Err()
}

func (tr *Transient) Method() util.IntegrationMethod {
	return tr.method
}

// Steps returns the number of integration steps taken.
func (tr *Transient) Steps() int {
	return tr.steps
}

func (tr *Transient) step() error {
	switch {
	case !tr.method.Implicit():
		return tr.forwardEuler()
	case tr.method == util.TrapezoidalMethod:
		return tr.trapezoidal()
	default:
		return tr.backwardDifference()
	}
}

// x[n+1] = x[n] + h*(A*x[n] + B*u)
func (tr *Transient) forwardEuler() error {
	dx := make([]float64, len(tr.x))
	mulVec(dx, tr.Model.A, tr.x)
	for i := range tr.x {
		tr.x[i] += tr.timeStep * (dx[i] + tr.bu[i])
	}
	return nil
}

// (2/h*I - A)*x[n+1] = (2/h*I + A)*x[n] + 2*B*u
func (tr *Transient) trapezoidal() error {
	coeffs := util.GetIntegratorCoeffs(util.TrapezoidalMethod, 2, tr.timeStep)
	ax := make([]float64, len(tr.x))
	mulVec(ax, tr.Model.A, tr.x)

	rhs := make([]float64, len(tr.x))
	for i := range rhs {
		rhs[i] = coeffs[0]*tr.x[i] + ax[i] + 2*tr.bu[i]
	}
	return tr.solve(2, coeffs[0], rhs)
}

// Backward differentiation: (c0*I - A)*x[n+1] = -sum(ci*x[n+1-i]) + B*u.
// The order ramps up while the history fills.
func (tr *Transient) backwardDifference() error {
	order := 1
	if tr.method == util.GearMethod {
		order = min(tr.order, len(tr.history)+1)
	}
	coeffs := util.GetIntegratorCoeffs(tr.method, order, tr.timeStep)

	rhs := make([]float64, len(tr.x))
	for i := range rhs {
		rhs[i] = tr.bu[i] - coeffs[1]*tr.x[i]
		for k := 2; k < len(coeffs); k++ {
			rhs[i] -= coeffs[k] * tr.history[k-2][i]
		}
	}

	if tr.method == util.GearMethod {
		tr.history = append([][]float64{append([]float64(nil), tr.x...)}, tr.history...)
		if len(tr.history) > tr.order-1 {
			tr.history = tr.history[:tr.order-1]
		}
	}
	return tr.solve(order, coeffs[0], rhs)
}

// solve factors c0*I - A once per key and solves for the next state.
func (tr *Transient) solve(key int, c0 float64, rhs []float64) error {
	n := len(tr.x)
	m, ok := tr.solvers[key]
	if !ok {
		var err error
		if m, err = matrix.NewMatrix(n); err != nil {
			return err
		}
		negA := mat.DenseCopyOf(tr.Model.A)
		negA.Scale(-1, negA)
		if err := m.LoadDense(c0, negA); err != nil {
			m.Destroy()
			return err
		}
		tr.solvers[key] = m
	}

	if err := m.SetRHS(rhs); err != nil {
		return err
	}
	if err := m.Solve(); err != nil {
		return err
	}
	copy(tr.x, m.Solution()[1:n+1])
	return nil
}

func (tr *Transient) store(t float64) {
	p := tr.Model.NumOutputs()
	y := make([]float64, p)
	if p > 0 {
		cx := make([]float64, p)
		du := make([]float64, p)
		mulVec(cx, tr.Model.C, tr.x)
		mulVec(du, tr.Model.D, tr.u)
		for i := range y {
			y[i] = cx[i] + du[i]
		}
	}
	tr.StoreTimeResult(t, y)
}

func (tr *Transient) destroy() {
	for key, m := range tr.solvers {
		m.Destroy()
		delete(tr.solvers, key)
	}
}
