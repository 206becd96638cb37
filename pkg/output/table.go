package output

import (
	"fmt"
	"io"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/ProNinjaDev/statespace/pkg/analysis"
	"github.com/ProNinjaDev/statespace/pkg/statespace"
	"github.com/ProNinjaDev/statespace/pkg/util"
)

// PrintModel writes the variable lists and the A, B, C, D matrices.
func PrintModel(w io.Writer, model *statespace.Model) {
	fmt.Fprintf(w, "States  (%d): %s\n", model.NumStates(), strings.Join(model.StateVariables, ", "))
	fmt.Fprintf(w, "Inputs  (%d): %s\n", model.NumInputs(), strings.Join(model.InputVariables, ", "))
	fmt.Fprintf(w, "Outputs (%d): %s\n", model.NumOutputs(), strings.Join(model.OutputVariables, ", "))

	printMatrix(w, "A", model.A, model.StateVariables, model.StateVariables)
	printMatrix(w, "B", model.B, model.StateVariables, model.InputVariables)
	printMatrix(w, "C", model.C, model.OutputVariables, model.StateVariables)
	printMatrix(w, "D", model.D, model.OutputVariables, model.InputVariables)
}

func printMatrix(w io.Writer, name string, m *mat.Dense, rows, cols []string) {
	fmt.Fprintf(w, "\n%s (%dx%d):\n", name, len(rows), len(cols))
	if len(rows) == 0 || len(cols) == 0 {
		fmt.Fprintln(w, "  (empty)")
		return
	}

	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}

	fmt.Fprintf(w, "  %-*s", width, "")
	for _, c := range cols {
		fmt.Fprintf(w, " %10s", c)
	}
	fmt.Fprintln(w)
	for i, r := range rows {
		fmt.Fprintf(w, "  %-*s", width, r)
		for j := range cols {
			fmt.Fprintf(w, " %s", util.FormatMagnitude(m.At(i, j)))
		}
		fmt.Fprintln(w)
	}
}

// PrintResults writes the transient series as a table. With maxRows > 0 at
// most that many evenly spaced time points are shown, the last one always
// included.
func PrintResults(w io.Writer, outputs []string, results map[string][]float64, maxRows int) {
	times := results[analysis.TimeKey]
	fmt.Fprintf(w, "\nTransient Analysis Results (%d time points):\n", len(times))

	fmt.Fprintf(w, "%10s", "Time")
	for _, name := range outputs {
		fmt.Fprintf(w, "  %12s", name)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("-", 10+14*len(outputs)))

	stride := 1
	if maxRows > 0 && len(times) > maxRows {
		stride = (len(times) + maxRows - 1) / maxRows
	}
	for i := 0; i < len(times); i++ {
		if i%stride != 0 && i != len(times)-1 {
			continue
		}
		fmt.Fprintf(w, "%10s", util.FormatTime(times[i]))
		for _, name := range outputs {
			fmt.Fprintf(w, "  %12s", util.FormatValueFactor(results[name][i], unitOf(name)))
		}
		fmt.Fprintln(w)
	}
}

func unitOf(name string) string {
	if strings.HasPrefix(strings.ToUpper(name), "I_") {
		return "A"
	}
	return "V"
}
