package output

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ProNinjaDev/statespace/pkg/analysis"
	"github.com/ProNinjaDev/statespace/pkg/device"
)

const (
	plotWidth  = 8 * vg.Inch
	plotHeight = 5 * vg.Inch
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// Title describes an output variable, e.g. "Voltage across C1".
func Title(name string) string {
	v, err := device.ParseVariable(name)
	if err != nil {
		return name
	}
	if v.Quantity == device.Voltage {
		return "Voltage across " + v.Component
	}
	return "Current through " + v.Component
}

func axisLabel(name string) string {
	v, err := device.ParseVariable(name)
	if err != nil {
		return name
	}
	if v.Quantity == device.Voltage {
		return v.String() + ", V"
	}
	return v.String() + ", A"
}

// SavePlots writes one PNG chart per output into dir and returns the file
// paths in output order.
func SavePlots(dir string, outputs []string, results map[string][]float64) ([]string, error) {
	times, ok := results[analysis.TimeKey]
	if !ok {
		return nil, fmt.Errorf("results have no %s series", analysis.TimeKey)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(outputs))
	for _, name := range outputs {
		values := results[name]
		if len(values) != len(times) {
			return paths, fmt.Errorf("series %s has %d points, want %d", name, len(values), len(times))
		}

		p := plot.New()
		p.Title.Text = Title(name)
		p.X.Label.Text = "t, s"
		p.Y.Label.Text = axisLabel(name)
		p.Add(plotter.NewGrid())

		xys := make(plotter.XYs, len(times))
		for i := range times {
			xys[i].X = times[i]
			xys[i].Y = values[i]
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return paths, fmt.Errorf("plot %s: %w", name, err)
		}
		p.Add(line)

		path := filepath.Join(dir, unsafeFileChars.ReplaceAllString(name, "_")+".png")
		if err := p.Save(plotWidth, plotHeight, path); err != nil {
			return paths, fmt.Errorf("save plot %s: %w", name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
