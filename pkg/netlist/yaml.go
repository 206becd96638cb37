package netlist

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ProNinjaDev/statespace/pkg/device"
	"github.com/ProNinjaDev/statespace/pkg/util"
)

// CircuitConfig is the YAML form of a netlist.
type CircuitConfig struct {
	Title      string            `yaml:"title"`
	Components []ComponentConfig `yaml:"components"`
	Simulation *SimulationConfig `yaml:"simulation"`
}

type ComponentConfig struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Value   Value  `yaml:"value"`
	Nodes   []Node `yaml:"nodes"`
	Control []Node `yaml:"control"` // VCCS control nodes
	Ctrl    string `yaml:"ctrl"`    // VCCS controlling component, unsupported
}

type SimulationConfig struct {
	Step    *Value           `yaml:"step"`
	Stop    *Value           `yaml:"stop"`
	Method  string           `yaml:"method"`
	Outputs []string         `yaml:"outputs"`
	Initial map[string]Value `yaml:"initial"`
}

// Value accepts plain numbers and SPICE scaled values such as "10k".
type Value float64

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: value must be a scalar", node.Line)
	}
	f, err := ParseValue(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*v = Value(f)
	return nil
}

// Node accepts both numeric and named nodes.
type Node string

func (n *Node) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode || node.Value == "" {
		return fmt.Errorf("line %d: node must be a scalar", node.Line)
	}
	*n = Node(node.Value)
	return nil
}

// ParseYAML reads a circuit described as YAML and returns the same data as
// Parse would for the equivalent netlist.
func ParseYAML(data []byte) (*NetlistData, error) {
	var config CircuitConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	netlistData := newNetlistData()
	netlistData.Title = config.Title

	for i, cc := range config.Components {
		elem, err := cc.element()
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i+1, err)
		}
		netlistData.Elements = append(netlistData.Elements, *elem)
	}

	if config.Simulation != nil {
		if err := config.Simulation.apply(&netlistData.Simulation); err != nil {
			return nil, err
		}
	}

	if err := netlistData.resolve(); err != nil {
		return nil, err
	}
	return netlistData, nil
}

func (cc ComponentConfig) element() (*Element, error) {
	kind, err := device.ParseKind(cc.Type)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cc.Name, err)
	}
	if len(cc.Nodes) != 2 {
		return nil, fmt.Errorf("%s: want 2 nodes, got %d", cc.Name, len(cc.Nodes))
	}

	elem := &Element{
		Type:   kind.String(),
		Name:   cc.Name,
		Value:  float64(cc.Value),
		Params: make(map[string]string),
	}
	for _, n := range cc.Nodes {
		elem.Nodes = append(elem.Nodes, string(n))
	}

	if kind != device.VCCS {
		if len(cc.Control) > 0 || cc.Ctrl != "" {
			return nil, fmt.Errorf("%s: only a VCCS takes a control", cc.Name)
		}
		return elem, nil
	}

	switch {
	case cc.Ctrl != "":
		elem.Params["ctrl"] = cc.Ctrl
	case len(cc.Control) == 2:
		elem.Nodes = append(elem.Nodes, string(cc.Control[0]), string(cc.Control[1]))
	default:
		return nil, fmt.Errorf("%s: want 2 control nodes, got %d", cc.Name, len(cc.Control))
	}
	return elem, nil
}

func (sc *SimulationConfig) apply(sim *Simulation) error {
	if sc.Step != nil {
		sim.Step = float64(*sc.Step)
	}
	if sc.Stop != nil {
		sim.Stop = float64(*sc.Stop)
	}
	if sc.Method != "" {
		method, err := util.ParseIntegrationMethod(sc.Method)
		if err != nil {
			return err
		}
		sim.Method = method
	}
	for _, name := range sc.Outputs {
		v, err := device.ParseVariable(name)
		if err != nil {
			return err
		}
		sim.Outputs = append(sim.Outputs, v.String())
	}
	for name, value := range sc.Initial {
		v, err := device.ParseVariable(name)
		if err != nil {
			return err
		}
		sim.Initial[v.String()] = float64(value)
	}
	return nil
}
