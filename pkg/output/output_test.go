package output

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProNinjaDev/statespace/internal/nettest"
	"github.com/ProNinjaDev/statespace/pkg/analysis"
	"github.com/ProNinjaDev/statespace/pkg/equation"
	"github.com/ProNinjaDev/statespace/pkg/statespace"
	"github.com/ProNinjaDev/statespace/pkg/topology"
)

func sampleResults() map[string][]float64 {
	return map[string][]float64{
		analysis.TimeKey: {0, 0.001, 0.002},
		"U_C1":           {0, 0.5, 0.75},
		"I_R1":           {0.1, 0.05, 0.025},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []string{"U_C1", "I_R1"}, sampleResults()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"TIME", "U_C1", "I_R1"}, records[0])
	assert.Equal(t, []string{"0.001", "0.5", "0.05"}, records[2])
}

func TestWriteCSVErrors(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteCSV(&buf, []string{"U_C1"}, map[string][]float64{"U_C1": {1}}))

	results := sampleResults()
	results["U_C1"] = results["U_C1"][:2]
	assert.Error(t, WriteCSV(&buf, []string{"U_C1"}, results))
	assert.Error(t, WriteCSV(&buf, []string{"U_X"}, sampleResults()))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Voltage across C1", Title("U_C1"))
	assert.Equal(t, "Current through L_out", Title("I_L_out"))
	assert.Equal(t, "TIME", Title("TIME"))
}

func TestSavePlots(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")
	paths, err := SavePlots(dir, []string{"U_C1", "I_R1"}, sampleResults())
	require.NoError(t, err)
	require.Len(t, paths, 2)

	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
	assert.Equal(t, "U_C1.png", filepath.Base(paths[0]))

	_, err = SavePlots(dir, []string{"U_C1"}, map[string][]float64{})
	assert.Error(t, err)
}

func TestPrintModel(t *testing.T) {
	components := nettest.SeriesRC()
	tree, err := topology.Build(components)
	require.NoError(t, err)
	lm, err := tree.LoopMatrix()
	require.NoError(t, err)
	sys, err := equation.Assemble(components, lm)
	require.NoError(t, err)
	model, err := statespace.Reduce(sys, components)
	require.NoError(t, err)
	require.NoError(t, model.SetOutputs([]string{"U_C1"}))

	var buf bytes.Buffer
	PrintModel(&buf, model)
	out := buf.String()

	assert.Contains(t, out, "States  (1): U_C1")
	assert.Contains(t, out, "Inputs  (1): U_E1")
	assert.Contains(t, out, "A (1x1):")
	assert.Contains(t, out, "-100.0000")
	assert.Contains(t, out, "D (1x1):")
}

func TestPrintResults(t *testing.T) {
	results := map[string][]float64{analysis.TimeKey: make([]float64, 10), "U_C1": make([]float64, 10)}
	for i := range 10 {
		results[analysis.TimeKey][i] = float64(i) * 1e-3
	}

	var buf bytes.Buffer
	PrintResults(&buf, []string{"U_C1"}, results, 4)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

	// header, column names, rule, rows 0, 3, 6, 9
	assert.Len(t, lines, 7)
	assert.Contains(t, lines[len(lines)-1], "9.000 ms")
}
