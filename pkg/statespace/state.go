package statespace

import (
	"maps"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/ProNinjaDev/statespace/internal/linalg"
	"github.com/ProNinjaDev/statespace/pkg/device"
)

type Role int

const (
	State Role = iota
	Input
	Other
)

func (r Role) String() string {
	switch r {
	case State:
		return "state"
	case Input:
		return "input"
	}
	return "other"
}

// Column is one variable of the reduction together with its role and the
// component it belongs to. Columns and matrix columns move together.
type Column struct {
	Variable  device.Variable
	Role      Role
	Component device.Component
}

// ReductionState is the value passed between reduction stages. Each stage
// returns a new state and leaves its input untouched.
type ReductionState struct {
	Columns []Column
	Rows    *mat.Dense

	// Extended lists rows whose other-block is zero.
	Extended []int
	// Dependent lists state candidates demoted by the rank analysis.
	Dependent []device.Variable
	// Pivots maps a column to its defining row after full reduction.
	Pivots map[int]int
	// Free lists other-block columns left without a pivot.
	Free []int
}

func (st *ReductionState) clone() *ReductionState {
	return &ReductionState{
		Columns:   slices.Clone(st.Columns),
		Rows:      linalg.Clone(st.Rows),
		Extended:  slices.Clone(st.Extended),
		Dependent: slices.Clone(st.Dependent),
		Pivots:    maps.Clone(st.Pivots),
		Free:      slices.Clone(st.Free),
	}
}

func (st *ReductionState) count(role Role) int {
	n := 0
	for _, c := range st.Columns {
		if c.Role == role {
			n++
		}
	}
	return n
}

// NumStates returns the size of the leading state block.
func (st *ReductionState) NumStates() int { return st.count(State) }

// NumInputs returns the size of the input block.
func (st *ReductionState) NumInputs() int { return st.count(Input) }

// NumRows tolerates an empty matrix.
func (st *ReductionState) NumRows() int {
	r, _ := linalg.Dims(st.Rows)
	return r
}

// Column returns the position of v.
func (st *ReductionState) Column(v device.Variable) (int, bool) {
	for i, c := range st.Columns {
		if c.Variable == v {
			return i, true
		}
	}
	return -1, false
}

