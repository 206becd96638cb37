// Package output renders simulation results and models: CSV files, PNG
// charts and plain-text tables.
package output

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/ProNinjaDev/statespace/pkg/analysis"
	"github.com/ProNinjaDev/statespace/pkg/util"
)

// WriteCSV writes one row per time point: the time followed by each output
// in the given order.
func WriteCSV(w io.Writer, outputs []string, results map[string][]float64) (retErr error) {
	times, ok := results[analysis.TimeKey]
	if !ok {
		return fmt.Errorf("results have no %s series", analysis.TimeKey)
	}
	for _, name := range outputs {
		if len(results[name]) != len(times) {
			return fmt.Errorf("series %s has %d points, want %d", name, len(results[name]), len(times))
		}
	}

	csvWriter := csv.NewWriter(w)
	defer func() {
		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil && retErr == nil {
			retErr = fmt.Errorf("flush csv: %w", err)
		}
	}()

	header := append([]string{analysis.TimeKey}, outputs...)
	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(header))
	for i, t := range times {
		record[0] = util.FormatValue(t)
		for j, name := range outputs {
			record[j+1] = util.FormatValue(results[name][i])
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	return nil
}
