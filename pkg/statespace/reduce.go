// Package statespace reduces an assembled network system to the model
// dX/dt = A*X + B*V, Y = C*X + D*V.
package statespace

import (
	"fmt"
	"math"

	"github.com/ProNinjaDev/statespace/internal/consts"
	"github.com/ProNinjaDev/statespace/internal/linalg"
	"github.com/ProNinjaDev/statespace/pkg/device"
	"github.com/ProNinjaDev/statespace/pkg/equation"
)

// Reduce runs the reduction stages over the algebraic rows of sys:
// classification, extended rows, rank analysis of the state candidates,
// Gauss-Jordan elimination of the other block, and extraction of A and B.
func Reduce(sys *equation.System, components []device.Component) (*Model, error) {
	st, err := classify(sys, components)
	if err != nil {
		return nil, err
	}

	st = markExtended(st)
	if st, err = appendDerivativeRows(st); err != nil {
		return nil, err
	}
	st = demoteDependent(st)
	st = eliminate(st)

	return extract(st, sys.Variables)
}

// classify orders the columns as [state | input | other], keeping the global
// order inside each block.
func classify(sys *equation.System, components []device.Component) (*ReductionState, error) {
	if sys.Len() != len(sys.Variables) {
		return nil, &equation.DimensionError{Equations: sys.Len(), Variables: len(sys.Variables)}
	}

	idx := device.Index(components)
	blocks := make([][]int, 3)
	columns := make([]Column, len(sys.Variables))
	for i, v := range sys.Variables {
		comp, ok := idx[v.Component]
		if !ok {
			return nil, &equation.DimensionError{Detail: fmt.Sprintf("variable %s has no component", v)}
		}

		role := Other
		if q, ok := comp.StateQuantity(); ok && q == v.Quantity {
			role = State
		} else if q, ok := comp.InputQuantity(); ok && q == v.Quantity {
			role = Input
		}
		columns[i] = Column{Variable: v, Role: role, Component: comp}
		blocks[role] = append(blocks[role], i)
	}

	order := append(append(blocks[State], blocks[Input]...), blocks[Other]...)
	st := &ReductionState{
		Columns: make([]Column, len(order)),
		Rows:    linalg.PermuteCols(sys.Matrix(), order),
	}
	for k, src := range order {
		st.Columns[k] = columns[src]
	}
	return st, nil
}

// markExtended records the rows that involve state and input variables only.
func markExtended(st *ReductionState) *ReductionState {
	out := st.clone()
	out.Extended = nil

	start := st.NumStates() + st.NumInputs()
	for i := 0; i < st.NumRows(); i++ {
		extended := true
		for j := start; j < len(st.Columns); j++ {
			if math.Abs(st.Rows.At(i, j)) > consts.TOLERANCE {
				extended = false
				break
			}
		}
		if extended {
			out.Extended = append(out.Extended, i)
		}
	}
	return out
}

// appendDerivativeRows differentiates each extended row: a capacitor voltage
// coefficient k becomes k/C on the capacitor current, an inductor current
// coefficient k becomes k/L on the inductor voltage. Constant inputs drop out.
func appendDerivativeRows(st *ReductionState) (*ReductionState, error) {
	var derived [][]float64
	for _, r := range st.Extended {
		row := make([]float64, len(st.Columns))
		nonzero := false

		for j, col := range st.Columns {
			q, ok := col.Component.StateQuantity()
			if !ok || q != col.Variable.Quantity {
				continue
			}
			k := st.Rows.At(r, j)
			if k == 0 {
				continue
			}
			if math.Abs(col.Component.Value) < consts.TOLERANCE {
				return nil, &SingularSystemError{Variable: col.Variable.String(), Reason: "device value is zero"}
			}

			companion, _ := st.Column(col.Variable.Companion())
			row[companion] += k / col.Component.Value
			nonzero = nonzero || math.Abs(row[companion]) > consts.TOLERANCE
		}

		if nonzero {
			derived = append(derived, row)
		}
	}

	out := st.clone()
	if len(derived) > 0 {
		out.Rows = linalg.AppendRows(st.Rows, derived)
	}
	return out, nil
}

// demoteDependent runs a full-pivot rank analysis over the extended rows and
// the state columns. Pivot columns are determined by the others and move to
// the end of the other block.
func demoteDependent(st *ReductionState) *ReductionState {
	s := st.NumStates()
	if s == 0 || len(st.Extended) == 0 {
		return st.clone()
	}

	stateCols := make([]int, s)
	for j := range stateCols {
		stateCols[j] = j
	}
	block := linalg.Sub(st.Rows, st.Extended, stateCols)
	pivotOrder, rank := linalg.FullPivot(block, consts.TOLERANCE)
	if rank == 0 {
		return st.clone()
	}

	dependent := make(map[int]bool, rank)
	for _, j := range pivotOrder[:rank] {
		dependent[j] = true
	}

	order := make([]int, 0, len(st.Columns))
	for j := range st.Columns {
		if !dependent[j] {
			order = append(order, j)
		}
	}
	order = append(order, pivotOrder[:rank]...)

	out := st.clone()
	out.Rows = linalg.PermuteCols(st.Rows, order)
	for k, src := range order {
		out.Columns[k] = st.Columns[src]
	}
	for k := len(order) - rank; k < len(order); k++ {
		out.Columns[k].Role = Other
		out.Dependent = append(out.Dependent, out.Columns[k].Variable)
	}
	return out
}

// eliminate brings the other block to reduced row-echelon form.
func eliminate(st *ReductionState) *ReductionState {
	out := st.clone()
	start := st.NumStates() + st.NumInputs()
	out.Pivots = linalg.GaussJordan(out.Rows, start, consts.TOLERANCE)

	out.Free = nil
	for j := start; j < len(out.Columns); j++ {
		if _, ok := out.Pivots[j]; !ok {
			out.Free = append(out.Free, j)
		}
	}
	return out
}

// extract reads A and B off the reduced system. The derivative of a
// capacitor voltage is I_C/C and of an inductor current U_L/L, so each state
// row comes from the defining equation of its companion variable.
func extract(st *ReductionState, global []device.Variable) (*Model, error) {
	s, m := st.NumStates(), st.NumInputs()
	model := &Model{
		StateVariables: make([]string, s),
		InputVariables: make([]string, m),
		A:              linalg.NewDense(s, s),
		B:              linalg.NewDense(s, m),
		C:              linalg.NewDense(0, s),
		D:              linalg.NewDense(0, m),
		reduced:        st,
		variables:      global,
	}
	for j := 0; j < s; j++ {
		model.StateVariables[j] = st.Columns[j].Variable.String()
	}
	for j := 0; j < m; j++ {
		model.InputVariables[j] = st.Columns[s+j].Variable.String()
	}

	for i := 0; i < s; i++ {
		col := st.Columns[i]
		value := col.Component.Value
		if math.Abs(value) < consts.TOLERANCE {
			return nil, &SingularSystemError{Variable: col.Variable.String(), Reason: "device value is zero"}
		}

		companion, ok := st.Column(col.Variable.Companion())
		if !ok {
			return nil, &SingularSystemError{Variable: col.Variable.String(), Reason: "companion variable missing"}
		}
		row, err := st.definingRow(companion)
		if err != nil {
			return nil, err
		}

		for j := 0; j < s; j++ {
			model.A.Set(i, j, -st.Rows.At(row, j)/value)
		}
		for j := 0; j < m; j++ {
			model.B.Set(i, j, -st.Rows.At(row, s+j)/value)
		}
	}
	return model, nil
}

// definingRow returns the pivot row of col and checks that it does not
// depend on a column the elimination left undetermined.
func (st *ReductionState) definingRow(col int) (int, error) {
	name := st.Columns[col].Variable.String()
	row, ok := st.Pivots[col]
	if !ok {
		return -1, &SingularSystemError{Variable: name, Reason: "no defining equation"}
	}
	for _, f := range st.Free {
		if math.Abs(st.Rows.At(row, f)) > consts.TOLERANCE {
			return -1, &SingularSystemError{
				Variable: name,
				Reason:   fmt.Sprintf("defining equation depends on undetermined %s", st.Columns[f].Variable),
			}
		}
	}
	return row, nil
}
