package topology

import (
	"errors"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/ProNinjaDev/statespace/internal/linalg"
	"github.com/ProNinjaDev/statespace/pkg/device"
)

// LoopMatrix is the signed incidence of chords (rows) against tree branches
// (columns). Entry (i, j) is +1 or -1 when branch j lies on the loop closed by
// chord i, traversed with or against its own direction.
type LoopMatrix struct {
	M        *mat.Dense
	Chords   []string
	Branches []string
}

// BuildLoopMatrix walks each chord's tree path from its Node1 to its Node2.
func BuildLoopMatrix(branches, chords []device.Component) (*LoopMatrix, error) {
	return buildLoopMatrix(NewGraph(branches), branches, chords)
}

func buildLoopMatrix(g *Graph, branches, chords []device.Component) (*LoopMatrix, error) {
	lm := &LoopMatrix{
		M:        linalg.NewDense(len(chords), len(branches)),
		Chords:   make([]string, len(chords)),
		Branches: make([]string, len(branches)),
	}

	column := make(map[string]int, len(branches))
	for j, b := range branches {
		lm.Branches[j] = b.Name
		column[b.Name] = j
	}

	for i, c := range chords {
		lm.Chords[i] = c.Name

		path, err := g.Path(c.Node1, c.Node2)
		if err != nil {
			var te *TopologyError
			if errors.As(err, &te) {
				te.Component = c.Name
			}
			return nil, err
		}
		for _, step := range path {
			lm.M.Set(i, column[step.Branch.Name], float64(step.Sign))
		}
	}
	return lm, nil
}

// At returns M[chord, branch] by name, zero when either is unknown.
func (lm *LoopMatrix) At(chord, branch string) float64 {
	i := slices.Index(lm.Chords, chord)
	j := slices.Index(lm.Branches, branch)
	if i < 0 || j < 0 {
		return 0
	}
	return lm.M.At(i, j)
}
