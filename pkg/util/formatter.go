package util

import (
	"fmt"
	"math"
	"strconv"
)

func FormatValueFactor(value float64, unit string) string {
	absValue := math.Abs(value)
	switch {
	case absValue >= 1e6:
		return fmt.Sprintf("%.3f M%s", value/1e6, unit)
	case absValue >= 1e3:
		return fmt.Sprintf("%.3f k%s", value/1e3, unit)
	case absValue >= 1 || absValue == 0:
		return fmt.Sprintf("%.3f %s", value, unit)
	case absValue >= 1e-3:
		return fmt.Sprintf("%.3f m%s", value*1e3, unit)
	case absValue >= 1e-6:
		return fmt.Sprintf("%.3f u%s", value*1e6, unit)
	case absValue >= 1e-9:
		return fmt.Sprintf("%.3f n%s", value*1e9, unit)
	case absValue >= 1e-12:
		return fmt.Sprintf("%.3f p%s", value*1e12, unit)
	default:
		return fmt.Sprintf("%.3e %s", value, unit)
	}
}

// FormatValue prints the shortest representation that round-trips.
func FormatValue(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}

// FormatMagnitude prints a matrix entry in a fixed-width column.
func FormatMagnitude(value float64) string {
	if value == 0 {
		return fmt.Sprintf("%10s", "0")
	}
	abs := math.Abs(value)
	if abs >= 1e4 || abs < 1e-3 {
		return fmt.Sprintf("%10.3e", value) // "-1.000e+04"
	}
	return fmt.Sprintf("%10.4f", value) // "  -100.0000"
}

func FormatTime(t float64) string {
	return FormatValueFactor(t, "s")
}
