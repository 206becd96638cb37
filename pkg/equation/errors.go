package equation

import (
	"errors"
	"fmt"
)

var ErrDimension = errors.New("equation: system dimension mismatch")

// DimensionError reports a system whose equation count does not match its
// variable count, or a loop matrix that does not fit the network.
type DimensionError struct {
	Equations int
	Variables int
	Detail    string
}

func (e *DimensionError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%v: %s", ErrDimension, e.Detail)
	}
	return fmt.Sprintf("%v: %d equations for %d variables", ErrDimension, e.Equations, e.Variables)
}

func (e *DimensionError) Unwrap() error {
	return ErrDimension
}
