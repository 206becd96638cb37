package device

import (
	"fmt"
	"strings"
)

type Kind int

const (
	Resistor Kind = iota + 1
	Capacitor
	Inductor
	VoltageSource
	CurrentSource
	VCCS // Voltage-controlled current source
)

var kindLetters = map[Kind]string{
	Resistor:      "R",
	Capacitor:     "C",
	Inductor:      "L",
	VoltageSource: "E",
	CurrentSource: "J",
	VCCS:          "G",
}

var kindUnits = map[Kind]string{
	Resistor:      "Ohm",
	Capacitor:     "F",
	Inductor:      "H",
	VoltageSource: "V",
	CurrentSource: "A",
	VCCS:          "S",
}

func (k Kind) String() string {
	if s, ok := kindLetters[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) Unit() string { return kindUnits[k] }

func (k Kind) Valid() bool {
	_, ok := kindLetters[k]
	return ok
}

// ParseKind accepts the component letters R, C, L, E, J, G and the SPICE
// aliases V (voltage source) and I (current source).
func ParseKind(s string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "R":
		return Resistor, nil
	case "C":
		return Capacitor, nil
	case "L":
		return Inductor, nil
	case "E", "V":
		return VoltageSource, nil
	case "J", "I":
		return CurrentSource, nil
	case "G":
		return VCCS, nil
	}
	return 0, fmt.Errorf("unknown component type: %q", s)
}

// Component is a two-terminal lumped element. For VCCS the control voltage is
// measured between ControlNode1 and ControlNode2.
type Component struct {
	Name  string `validate:"required,excludesall= \t"`
	Kind  Kind   `validate:"kind"`
	Value float64
	Node1 int
	Node2 int `validate:"nefield=Node1"`

	ControlNode1 *int `validate:"required_if=Kind 6"`
	ControlNode2 *int `validate:"required_if=Kind 6"`

	// ControlComponent names a controlling component instead of control
	// nodes. Parsed for completeness, rejected by Validate.
	ControlComponent string
}

func New(kind Kind, name string, node1, node2 int, value float64) Component {
	return Component{
		Name:  name,
		Kind:  kind,
		Value: value,
		Node1: node1,
		Node2: node2,
	}
}

func NewResistor(name string, node1, node2 int, r float64) Component {
	return New(Resistor, name, node1, node2, r)
}

func NewCapacitor(name string, node1, node2 int, c float64) Component {
	return New(Capacitor, name, node1, node2, c)
}

func NewInductor(name string, node1, node2 int, l float64) Component {
	return New(Inductor, name, node1, node2, l)
}

func NewVoltageSource(name string, node1, node2 int, e float64) Component {
	return New(VoltageSource, name, node1, node2, e)
}

func NewCurrentSource(name string, node1, node2 int, j float64) Component {
	return New(CurrentSource, name, node1, node2, j)
}

func NewVCCS(name string, node1, node2, ctrl1, ctrl2 int, s float64) Component {
	c := New(VCCS, name, node1, node2, s)
	c.ControlNode1 = &ctrl1
	c.ControlNode2 = &ctrl2
	return c
}

// Other returns the terminal opposite to node.
func (c Component) Other(node int) int {
	if node == c.Node1 {
		return c.Node2
	}
	return c.Node1
}

// StateQuantity reports which of the component's variables is an energy
// storage candidate: capacitor voltage or inductor current.
func (c Component) StateQuantity() (Quantity, bool) {
	switch c.Kind {
	case Capacitor:
		return Voltage, true
	case Inductor:
		return Current, true
	}
	return 0, false
}

// InputQuantity reports which variable an independent source excites.
func (c Component) InputQuantity() (Quantity, bool) {
	switch c.Kind {
	case VoltageSource:
		return Voltage, true
	case CurrentSource:
		return Current, true
	}
	return 0, false
}

func (c Component) String() string {
	if c.Kind == VCCS && c.ControlNode1 != nil && c.ControlNode2 != nil {
		return fmt.Sprintf("%s (%s) %d-%d ctrl %d-%d %g %s",
			c.Name, c.Kind, c.Node1, c.Node2, *c.ControlNode1, *c.ControlNode2, c.Value, c.Kind.Unit())
	}
	return fmt.Sprintf("%s (%s) %d-%d %g %s", c.Name, c.Kind, c.Node1, c.Node2, c.Value, c.Kind.Unit())
}

// Index maps component names to components.
func Index(components []Component) map[string]Component {
	idx := make(map[string]Component, len(components))
	for _, c := range components {
		idx[c.Name] = c
	}
	return idx
}
