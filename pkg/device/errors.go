package device

import (
	"errors"
	"fmt"
)

var ErrInvalidComponent = errors.New("device: invalid component")

// InvalidComponentError identifies the rejected component and why.
type InvalidComponentError struct {
	Component string
	Reason    string
}

func (e *InvalidComponentError) Error() string {
	if e.Component == "" {
		return fmt.Sprintf("%v: %s", ErrInvalidComponent, e.Reason)
	}
	return fmt.Sprintf("%v %q: %s", ErrInvalidComponent, e.Component, e.Reason)
}

func (e *InvalidComponentError) Unwrap() error {
	return ErrInvalidComponent
}
