package equation

import (
	"errors"
	"fmt"

	"github.com/ProNinjaDev/statespace/internal/linalg"
	"github.com/ProNinjaDev/statespace/pkg/device"
	"github.com/ProNinjaDev/statespace/pkg/topology"
)

// Assemble writes the loop, cutset and device equations of the network over
// the global variable order. The loop matrix must cover every component
// exactly once as a chord or a tree branch.
func Assemble(components []device.Component, lm *topology.LoopMatrix) (*System, error) {
	rows, cols := linalg.Dims(lm.M)
	wantRows, wantCols := len(lm.Chords), len(lm.Branches)
	if wantRows == 0 || wantCols == 0 {
		wantRows, wantCols = 0, 0
	}
	if rows != wantRows || cols != wantCols {
		return nil, &DimensionError{
			Detail: fmt.Sprintf("loop matrix is %dx%d for %d chords and %d branches",
				rows, cols, len(lm.Chords), len(lm.Branches)),
		}
	}

	idx := device.Index(components)
	chords, err := lookup(idx, lm.Chords)
	if err != nil {
		return nil, err
	}
	branches, err := lookup(idx, lm.Branches)
	if err != nil {
		return nil, err
	}

	s := newSystem(device.Variables(components))

	for i, chord := range chords {
		row := s.newRow()
		s.add(row, device.VoltageOf(chord.Name), voltageSign(chord))
		for j, branch := range branches {
			if m := lm.M.At(i, j); m != 0 {
				s.add(row, device.VoltageOf(branch.Name), m*voltageSign(branch))
			}
		}
		s.Rows = append(s.Rows, Equation{Family: KVL, Component: chord.Name, Coeffs: row})
	}

	for j, branch := range branches {
		row := s.newRow()
		s.add(row, device.CurrentOf(branch.Name), 1)
		for i, chord := range chords {
			if m := lm.M.At(i, j); m != 0 {
				s.add(row, device.CurrentOf(chord.Name), -m)
			}
		}
		s.Rows = append(s.Rows, Equation{Family: KCL, Component: branch.Name, Coeffs: row})
	}

	graph := topology.NewGraph(branches)
	for _, c := range components {
		switch c.Kind {
		case device.Resistor:
			row := s.newRow()
			s.add(row, device.VoltageOf(c.Name), 1)
			s.add(row, device.CurrentOf(c.Name), -c.Value)
			s.Rows = append(s.Rows, Equation{Family: Ohm, Component: c.Name, Coeffs: row})

		case device.VCCS:
			row, err := s.transconductance(graph, c)
			if err != nil {
				return nil, err
			}
			s.Rows = append(s.Rows, Equation{Family: Transconductance, Component: c.Name, Coeffs: row})

		case device.Capacitor, device.Inductor:
			s.Implicit = append(s.Implicit, Implicit{Relation: Derivative, Component: c.Name})

		case device.VoltageSource, device.CurrentSource:
			s.Implicit = append(s.Implicit, Implicit{Relation: Excitation, Component: c.Name})
		}
	}

	if s.Len() != len(s.Variables) {
		return nil, &DimensionError{Equations: s.Len(), Variables: len(s.Variables)}
	}
	return s, nil
}

// transconductance writes I_G = S * (V(c1) - V(c2)), the control voltage
// being the signed sum of branch voltages on the tree path from c1 to c2.
func (s *System) transconductance(graph *topology.Graph, c device.Component) ([]float64, error) {
	if c.ControlNode1 == nil || c.ControlNode2 == nil {
		return nil, &device.InvalidComponentError{Component: c.Name, Reason: "VCCS without control nodes"}
	}

	path, err := graph.Path(*c.ControlNode1, *c.ControlNode2)
	if err != nil {
		var te *topology.TopologyError
		if errors.As(err, &te) {
			te.Component = c.Name
		}
		return nil, err
	}

	row := s.newRow()
	s.add(row, device.CurrentOf(c.Name), 1)
	for _, step := range path {
		s.add(row, device.VoltageOf(step.Branch.Name), -c.Value*float64(step.Sign))
	}
	return row, nil
}

// Voltage sources enter a loop as rises, everything else as drops.
func voltageSign(c device.Component) float64 {
	if c.Kind == device.VoltageSource {
		return -1
	}
	return 1
}

func (s *System) newRow() []float64 {
	return make([]float64, len(s.Variables))
}

func (s *System) add(row []float64, v device.Variable, value float64) {
	row[s.index[v]] += value
}

func lookup(idx map[string]device.Component, names []string) ([]device.Component, error) {
	out := make([]device.Component, len(names))
	for i, name := range names {
		c, ok := idx[name]
		if !ok {
			return nil, &DimensionError{Detail: fmt.Sprintf("loop matrix names unknown component %q", name)}
		}
		out[i] = c
	}
	return out, nil
}
