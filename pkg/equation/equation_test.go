package equation

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ProNinjaDev/statespace/internal/nettest"
	"github.com/ProNinjaDev/statespace/pkg/device"
	"github.com/ProNinjaDev/statespace/pkg/topology"
)

func assemble(t *testing.T, comps []device.Component) *System {
	t.Helper()
	tree, err := topology.Build(comps)
	require.NoError(t, err)
	lm, err := tree.LoopMatrix()
	require.NoError(t, err)
	s, err := Assemble(comps, lm)
	require.NoError(t, err)
	return s
}

func TestAssembleSeriesRC(t *testing.T) {
	s := assemble(t, nettest.SeriesRC())

	// U_C1 I_C1 U_E1 I_E1 U_R1 I_R1
	want := [][]float64{
		{-1, 0, 1, 0, 1, 0},   // KVL R1
		{0, 0, 0, 1, 0, 1},    // KCL E1
		{0, 1, 0, 0, 0, 1},    // KCL C1
		{0, 0, 0, 0, 1, -100}, // Ohm R1
	}
	require.Len(t, s.Rows, len(want))
	for i, row := range want {
		assert.Equal(t, row, s.Rows[i].Coeffs, s.Format(i))
	}
	assert.Equal(t, []Family{KVL, KCL, KCL, Ohm},
		[]Family{s.Rows[0].Family, s.Rows[1].Family, s.Rows[2].Family, s.Rows[3].Family})

	assert.Equal(t, []Implicit{{Excitation, "E1"}, {Derivative, "C1"}}, s.Implicit)
	assert.Equal(t, 6, s.Len())
	assert.Equal(t, "U_R1 - 100*I_R1 = 0", s.Format(3))

	i, ok := s.Index(device.CurrentOf("R1"))
	assert.True(t, ok)
	assert.Equal(t, 5, i)

	r, c := s.Matrix().Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 6, c)
}

func TestAssembleVCCS(t *testing.T) {
	comps := []device.Component{
		device.NewVoltageSource("E1", 0, 1, 1),
		device.NewResistor("R1", 1, 2, 10),
		device.NewResistor("R2", 2, 0, 10),
		device.NewVCCS("G1", 2, 0, 1, 0, 0.5),
	}
	s := assemble(t, comps)

	var row []float64
	for _, eq := range s.Rows {
		if eq.Family == Transconductance {
			row = eq.Coeffs
		}
	}
	require.NotNil(t, row)

	at := func(v device.Variable) float64 {
		i, ok := s.Index(v)
		require.True(t, ok)
		return row[i]
	}
	// Control path 1 -> 0 runs through E1 against its direction.
	assert.Equal(t, 1.0, at(device.CurrentOf("G1")))
	assert.Equal(t, 0.5, at(device.VoltageOf("E1")))
	assert.Equal(t, 0.0, at(device.VoltageOf("R1")))
}

func TestDroppedChordIsDimensionError(t *testing.T) {
	comps := append(nettest.SeriesRC(), device.NewResistor("R2", 2, 0, 50))
	tree, err := topology.Build(comps)
	require.NoError(t, err)
	require.Len(t, tree.Chords, 2)

	lm, err := topology.BuildLoopMatrix(tree.Branches, tree.Chords[:1])
	require.NoError(t, err)

	_, err = Assemble(comps, lm)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDimension))

	var de *DimensionError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 7, de.Equations)
	assert.Equal(t, 8, de.Variables)
}

func TestLoopMatrixShapeMismatch(t *testing.T) {
	comps := nettest.SeriesRC()
	lm := &topology.LoopMatrix{
		M:        mat.NewDense(2, 2, nil),
		Chords:   []string{"R1"},
		Branches: []string{"E1", "C1"},
	}
	_, err := Assemble(comps, lm)
	assert.True(t, errors.Is(err, ErrDimension))

	lm = &topology.LoopMatrix{
		M:        mat.NewDense(1, 2, []float64{-1, -1}),
		Chords:   []string{"R9"},
		Branches: []string{"E1", "C1"},
	}
	_, err = Assemble(comps, lm)
	assert.True(t, errors.Is(err, ErrDimension))
}

func TestEquationCount(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("connected networks give 2n equations over 2n variables", prop.ForAll(
		func(seed int64, size, extra int) bool {
			comps := nettest.Random(rand.New(rand.NewSource(seed)), size, extra)
			tree, err := topology.Build(comps)
			if err != nil {
				return false
			}
			lm, err := tree.LoopMatrix()
			if err != nil {
				return false
			}
			s, err := Assemble(comps, lm)
			if err != nil {
				return false
			}
			return s.Len() == 2*len(comps) && len(s.Variables) == 2*len(comps)
		},
		gen.Int64(),
		gen.IntRange(2, 10),
		gen.IntRange(0, 10),
	))

	properties.TestingRun(t)
}
