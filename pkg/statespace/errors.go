package statespace

import (
	"errors"
	"fmt"
)

var (
	ErrSingularSystem  = errors.New("statespace: singular system")
	ErrUnknownVariable = errors.New("statespace: unknown variable")
	ErrDuplicateOutput = errors.New("statespace: duplicate output")
)

// SingularSystemError names the variable whose defining equation could not
// be found or used.
type SingularSystemError struct {
	Variable string
	Reason   string
}

func (e *SingularSystemError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrSingularSystem, e.Variable, e.Reason)
}

func (e *SingularSystemError) Unwrap() error {
	return ErrSingularSystem
}
