package topology

import (
	"errors"
	"fmt"
)

var ErrTopology = errors.New("topology: invalid network topology")

// TopologyError reports a network whose tree cannot connect the nodes a
// chord or a control port needs.
type TopologyError struct {
	Component string
	From      int
	To        int
	Reason    string
}

func (e *TopologyError) Error() string {
	if e.Component == "" {
		return fmt.Sprintf("%v: %s", ErrTopology, e.Reason)
	}
	return fmt.Sprintf("%v: %s (%s, nodes %d-%d)", ErrTopology, e.Reason, e.Component, e.From, e.To)
}

func (e *TopologyError) Unwrap() error {
	return ErrTopology
}
