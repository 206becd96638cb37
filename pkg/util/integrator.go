package util

import (
	"fmt"
	"strings"
)

type IntegrationMethod int

const (
	ForwardEuler IntegrationMethod = iota
	BackwardEuler
	TrapezoidalMethod
	GearMethod
)

func (m IntegrationMethod) String() string {
	switch m {
	case ForwardEuler:
		return "euler"
	case BackwardEuler:
		return "backward"
	case TrapezoidalMethod:
		return "trapezoidal"
	case GearMethod:
		return "gear"
	}
	return fmt.Sprintf("IntegrationMethod(%d)", int(m))
}

// Implicit reports whether a step needs a linear solve.
func (m IntegrationMethod) Implicit() bool {
	return m != ForwardEuler
}

func ParseIntegrationMethod(s string) (IntegrationMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "euler", "forward", "fe":
		return ForwardEuler, nil
	case "backward", "be":
		return BackwardEuler, nil
	case "trapezoidal", "trap", "tr":
		return TrapezoidalMethod, nil
	case "gear", "bdf":
		return GearMethod, nil
	}
	return 0, fmt.Errorf("unknown integration method: %q", s)
}

type BackwardDifferentialFormula struct {
	coefficients []float64
	beta         float64
}

var BdfCoefficients = [6]BackwardDifferentialFormula{
	{[]float64{1.0}, 1.0},
	{[]float64{4.0 / 3.0, -1.0 / 3.0}, 2.0 / 3.0},
	{[]float64{18.0 / 11.0, -9.0 / 11.0, 2.0 / 11.0}, 6.0 / 11.0},
	{[]float64{48.0 / 25.0, -36.0 / 25.0, 16.0 / 25.0, -3.0 / 25.0}, 12.0 / 25.0},
	{[]float64{300.0 / 137.0, -300.0 / 137.0, 200.0 / 137.0, -75.0 / 137.0, 12.0 / 137.0}, 60.0 / 137.0},
	{[]float64{360.0 / 147.0, -450.0 / 147.0, 400.0 / 147.0, -225.0 / 147.0, 72.0 / 147.0, -10.0 / 147.0}, 60.0 / 147.0},
}

// GetIntegratorCoeffs returns the coefficients of x[n+1], x[n], x[n-1], ...
// in the discretized derivative. Trapezoidal returns the x[n+1] scale only.
func GetIntegratorCoeffs(method IntegrationMethod, order int, dt float64) []float64 {
	switch method {
	case TrapezoidalMethod:
		return GetTrapezoidalCoeffs(dt)
	case BackwardEuler:
		return GetBDFcoeffs(1, dt)
	default:
		return GetBDFcoeffs(order, dt)
	}
}

func GetBDFcoeffs(order int, dt float64) []float64 {
	if order < 1 || order > 6 {
		order = 1
	}

	bdf := BdfCoefficients[order-1]
	coeffs := make([]float64, order+1)
	scale := 1.0 / (bdf.beta * dt)
	coeffs[0] = scale

	for i := 1; i <= order; i++ {
		coeffs[i] = -bdf.coefficients[i-1] * scale
	}

	return coeffs
}

func GetTrapezoidalCoeffs(dt float64) []float64 {
	return []float64{2.0 / dt}
}
