// Package equation assembles the linear equations of a network: one loop
// equation per chord, one cutset equation per tree branch and one device
// equation per resistor and VCCS.
package equation

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/ProNinjaDev/statespace/internal/linalg"
	"github.com/ProNinjaDev/statespace/pkg/device"
	"github.com/ProNinjaDev/statespace/pkg/util"
)

type Family int

const (
	KVL Family = iota
	KCL
	Ohm
	Transconductance
)

func (f Family) String() string {
	switch f {
	case KVL:
		return "KVL"
	case KCL:
		return "KCL"
	case Ohm:
		return "Ohm"
	case Transconductance:
		return "VCCS"
	}
	return fmt.Sprintf("Family(%d)", int(f))
}

// Relation is a constitutive law that has no algebraic row: the derivative
// law of a capacitor or inductor, or the excitation of a source.
type Relation int

const (
	Derivative Relation = iota
	Excitation
)

func (r Relation) String() string {
	if r == Excitation {
		return "excitation"
	}
	return "derivative"
}

// Equation is one row of coefficients over the system's variables, equal
// to zero.
type Equation struct {
	Family    Family
	Component string
	Coeffs    []float64
}

type Implicit struct {
	Relation  Relation
	Component string
}

type System struct {
	Variables []device.Variable
	Rows      []Equation
	Implicit  []Implicit

	index map[device.Variable]int
}

func newSystem(vars []device.Variable) *System {
	s := &System{
		Variables: vars,
		index:     make(map[device.Variable]int, len(vars)),
	}
	for i, v := range vars {
		s.index[v] = i
	}
	return s
}

// Len counts algebraic rows and implicit relations together. It equals the
// variable count for a well-posed network.
func (s *System) Len() int {
	return len(s.Rows) + len(s.Implicit)
}

// Index returns the column of v.
func (s *System) Index(v device.Variable) (int, bool) {
	i, ok := s.index[v]
	return i, ok
}

// Matrix returns the algebraic rows as a dense matrix.
func (s *System) Matrix() *mat.Dense {
	rows := make([][]float64, len(s.Rows))
	for i, eq := range s.Rows {
		rows[i] = eq.Coeffs
	}
	return linalg.FromRows(rows, len(s.Variables))
}

// Format renders row i as a readable sum, e.g. "U_R1 - 100*I_R1 = 0".
func (s *System) Format(i int) string {
	var sb strings.Builder
	for j, c := range s.Rows[i].Coeffs {
		if c == 0 {
			continue
		}
		name := s.Variables[j].String()
		switch {
		case sb.Len() == 0 && c < 0:
			sb.WriteString("-")
		case sb.Len() > 0 && c < 0:
			sb.WriteString(" - ")
		case sb.Len() > 0:
			sb.WriteString(" + ")
		}
		if a := math.Abs(c); a != 1 {
			sb.WriteString(util.FormatValue(a) + "*")
		}
		sb.WriteString(name)
	}
	if sb.Len() == 0 {
		sb.WriteString("0")
	}
	sb.WriteString(" = 0")
	return sb.String()
}
