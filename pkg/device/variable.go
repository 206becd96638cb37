package device

import (
	"fmt"
	"slices"
	"strings"
)

type Quantity int

const (
	Voltage Quantity = iota
	Current
)

func (q Quantity) Prefix() string {
	if q == Current {
		return "I"
	}
	return "U"
}

func (q Quantity) String() string {
	if q == Current {
		return "current"
	}
	return "voltage"
}

// Variable is one unknown of the network: the voltage across or the current
// through a named component. It prints as U_<name> or I_<name>.
type Variable struct {
	Quantity  Quantity
	Component string
}

func VoltageOf(name string) Variable { return Variable{Quantity: Voltage, Component: name} }
func CurrentOf(name string) Variable { return Variable{Quantity: Current, Component: name} }

func (v Variable) String() string {
	return v.Quantity.Prefix() + "_" + v.Component
}

// Companion returns the other variable of the same component.
func (v Variable) Companion() Variable {
	if v.Quantity == Voltage {
		return CurrentOf(v.Component)
	}
	return VoltageOf(v.Component)
}

// ParseVariable parses U_<name> or I_<name>. Only the first underscore
// separates the prefix, so component names may contain underscores.
func ParseVariable(s string) (Variable, error) {
	prefix, name, ok := strings.Cut(strings.TrimSpace(s), "_")
	if !ok || name == "" {
		return Variable{}, fmt.Errorf("invalid variable name: %q", s)
	}
	switch strings.ToUpper(prefix) {
	case "U", "V":
		return VoltageOf(name), nil
	case "I":
		return CurrentOf(name), nil
	}
	return Variable{}, fmt.Errorf("invalid variable prefix in %q", s)
}

// Variables returns the global variable order: components sorted by name,
// each contributing its voltage then its current.
func Variables(components []Component) []Variable {
	names := make([]string, 0, len(components))
	for _, c := range components {
		names = append(names, c.Name)
	}
	slices.Sort(names)

	vars := make([]Variable, 0, 2*len(names))
	for _, name := range names {
		vars = append(vars, VoltageOf(name), CurrentOf(name))
	}
	return vars
}
