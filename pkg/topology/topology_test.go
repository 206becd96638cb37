package topology

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProNinjaDev/statespace/internal/nettest"
	"github.com/ProNinjaDev/statespace/pkg/device"
)

func names(components []device.Component) []string {
	out := make([]string, len(components))
	for i, c := range components {
		out[i] = c.Name
	}
	return out
}

func TestBuildSeriesRC(t *testing.T) {
	tree, err := Build(nettest.SeriesRC())
	require.NoError(t, err)

	assert.Equal(t, []string{"E1", "C1"}, names(tree.Branches))
	assert.Equal(t, []string{"R1"}, names(tree.Chords))

	lm, err := tree.LoopMatrix()
	require.NoError(t, err)
	assert.Equal(t, []string{"R1"}, lm.Chords)
	assert.Equal(t, []string{"E1", "C1"}, lm.Branches)
	assert.Equal(t, -1.0, lm.At("R1", "E1"))
	assert.Equal(t, -1.0, lm.At("R1", "C1"))
}

func TestLoopSignFollowsBranchDirection(t *testing.T) {
	comps := []device.Component{
		device.NewVoltageSource("E1", 1, 0, 10),
		device.NewResistor("R1", 1, 2, 100),
		device.NewCapacitor("C1", 2, 0, 1e-4),
	}
	tree, err := Build(comps)
	require.NoError(t, err)

	lm, err := tree.LoopMatrix()
	require.NoError(t, err)
	assert.Equal(t, 1.0, lm.At("R1", "E1"))
	assert.Equal(t, -1.0, lm.At("R1", "C1"))
	assert.Equal(t, 0.0, lm.At("R1", "missing"))
}

func TestTreePriorityAndChordOrder(t *testing.T) {
	comps := []device.Component{
		device.NewCapacitor("C2", 1, 0, 1e-6),
		device.NewInductor("L1", 1, 2, 1e-3),
		device.NewResistor("R1", 1, 2, 10),
		device.NewCurrentSource("J1", 2, 0, 1),
		device.NewVoltageSource("E1", 1, 0, 5),
		device.NewResistor("R2", 2, 0, 20),
		device.NewCapacitor("C1", 2, 0, 1e-6),
	}
	tree, err := Build(comps)
	require.NoError(t, err)

	// E1 wins nodes 0-1 over C2, C1 wins 0-2 over the resistors.
	assert.Equal(t, []string{"E1", "C1"}, names(tree.Branches))
	assert.Equal(t, []string{"R1", "R2", "L1", "J1", "C2"}, names(tree.Chords))
}

func TestDisconnectedNetwork(t *testing.T) {
	comps := []device.Component{
		device.NewResistor("R1", 1, 2, 10),
		device.NewResistor("R2", 3, 4, 10),
	}
	_, err := Build(comps)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTopology))
}

func TestNodesJoinedOnlyByChords(t *testing.T) {
	comps := []device.Component{
		device.NewVoltageSource("E1", 0, 1, 1),
		device.NewInductor("L1", 1, 2, 1e-3),
		device.NewCurrentSource("J1", 2, 0, 1),
	}
	_, err := Build(comps)

	var te *TopologyError
	require.True(t, errors.As(err, &te))
	assert.NotEmpty(t, te.Component)
}

func TestLoopMatrixMissingPath(t *testing.T) {
	branches := []device.Component{device.NewResistor("R1", 0, 1, 1)}
	chords := []device.Component{device.NewResistor("R2", 1, 2, 1)}

	_, err := BuildLoopMatrix(branches, chords)
	var te *TopologyError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "R2", te.Component)
}

func TestPath(t *testing.T) {
	g := NewGraph([]device.Component{
		device.NewResistor("A", 0, 1, 1),
		device.NewResistor("B", 2, 1, 1),
		device.NewResistor("C", 2, 3, 1),
	})

	path, err := g.Path(0, 3)
	require.NoError(t, err)
	require.Len(t, path, 3)
	assert.Equal(t, []int{1, -1, 1}, []int{path[0].Sign, path[1].Sign, path[2].Sign})
	assert.Equal(t, 3, path[2].To)

	path, err = g.Path(2, 2)
	require.NoError(t, err)
	assert.Empty(t, path)

	_, err = g.Path(0, 7)
	assert.True(t, errors.Is(err, ErrTopology))
}

func TestPathProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("tree paths are simple and end at the query nodes", prop.ForAll(
		func(seed int64, size, from, to int) bool {
			rng := rand.New(rand.NewSource(seed))
			tree, err := Build(nettest.Random(rng, size, size))
			if err != nil {
				return false
			}

			from, to = from%size, to%size
			path, err := tree.Graph().Path(from, to)
			if err != nil {
				return false
			}
			if from == to {
				return len(path) == 0
			}

			seen := map[int]bool{from: true}
			current := from
			for _, step := range path {
				if step.From != current {
					return false
				}
				if seen[step.To] {
					return false
				}
				seen[step.To] = true
				current = step.To
			}
			return current == to
		},
		gen.Int64(),
		gen.IntRange(2, 12),
		gen.IntRange(0, 100),
		gen.IntRange(0, 100),
	))

	properties.Property("tree has nodes-1 branches", prop.ForAll(
		func(seed int64, size int) bool {
			rng := rand.New(rand.NewSource(seed))
			comps := nettest.Random(rng, size, size)
			tree, err := Build(comps)
			if err != nil {
				return false
			}
			return len(tree.Branches) == size-1 && len(tree.Branches)+len(tree.Chords) == len(comps)
		},
		gen.Int64(),
		gen.IntRange(2, 12),
	))

	properties.TestingRun(t)
}
