package statespace

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/ProNinjaDev/statespace/internal/linalg"
	"github.com/ProNinjaDev/statespace/pkg/device"
)

// Model is a continuous-time state-space model. A matrix with a zero
// dimension is an empty mat.Dense; use the Num* methods for sizes.
type Model struct {
	StateVariables  []string
	InputVariables  []string
	OutputVariables []string

	A *mat.Dense // n x n
	B *mat.Dense // n x m
	C *mat.Dense // p x n
	D *mat.Dense // p x m

	reduced   *ReductionState
	variables []device.Variable
}

func (m *Model) NumStates() int  { return len(m.StateVariables) }
func (m *Model) NumInputs() int  { return len(m.InputVariables) }
func (m *Model) NumOutputs() int { return len(m.OutputVariables) }

// Variables returns every variable name of the network in global order.
func (m *Model) Variables() []string {
	names := make([]string, len(m.variables))
	for i, v := range m.variables {
		names[i] = v.String()
	}
	return names
}

// Reduced returns a copy of the fully reduced system the model was read from.
func (m *Model) Reduced() *ReductionState {
	return m.reduced.clone()
}

// SetOutputs replaces the output list and recomputes C and D. An empty list
// selects every variable and a name may appear only once. A and B are left
// as they are; on error the previous outputs stay in place.
func (m *Model) SetOutputs(names []string) error {
	if len(names) == 0 {
		names = m.Variables()
	}

	s, in := m.NumStates(), m.NumInputs()
	outputs := make([]string, len(names))
	seen := make(map[string]bool, len(names))
	c := linalg.NewDense(len(names), s)
	d := linalg.NewDense(len(names), in)

	for i, name := range names {
		v, err := device.ParseVariable(name)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrUnknownVariable, name)
		}
		col, ok := m.reduced.Column(v)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownVariable, name)
		}
		if seen[v.String()] {
			return fmt.Errorf("%w: %q", ErrDuplicateOutput, name)
		}
		seen[v.String()] = true
		outputs[i] = v.String()

		switch m.reduced.Columns[col].Role {
		case State:
			c.Set(i, col, 1)
		case Input:
			d.Set(i, col-s, 1)
		default:
			row, err := m.reduced.definingRow(col)
			if err != nil {
				return err
			}
			for j := 0; j < s; j++ {
				c.Set(i, j, -m.reduced.Rows.At(row, j))
			}
			for j := 0; j < in; j++ {
				d.Set(i, j, -m.reduced.Rows.At(row, s+j))
			}
		}
	}

	m.OutputVariables = outputs
	m.C = c
	m.D = d
	return nil
}
