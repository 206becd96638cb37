package netlist

import (
	"bufio"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/ProNinjaDev/statespace/internal/consts"
	"github.com/ProNinjaDev/statespace/pkg/device"
	"github.com/ProNinjaDev/statespace/pkg/util"
)

// Simulation holds the transient settings of a netlist.
type Simulation struct {
	Step    float64                // integration step
	Stop    float64                // stop time
	Method  util.IntegrationMethod // integration method
	Outputs []string               // output variables, empty for all
	Initial map[string]float64     // initial conditions by state variable
}

type NetlistData struct {
	Title      string             // Circuit title
	Elements   []Element          // Circuit elements as written
	Components []device.Component // Elements with resolved nodes
	Nodes      map[string]int     // Node name and index
	Simulation Simulation
}

type Element struct {
	Type   string            // Part type (R, C, L, E, J, G)
	Name   string            // Part name
	Nodes  []string          // Node names, control nodes last for G
	Value  float64           // Part value
	Params map[string]string // Named parameters, e.g. ctrl for G
	Line   int               // Source line
}

var unitMap = map[string]float64{
	"T":   1e12,  // tera
	"G":   1e9,   // giga
	"meg": 1e6,   // mega
	"K":   1e3,   // kilo
	"k":   1e3,   // kilo
	"m":   1e-3,  // milli
	"u":   1e-6,  // micro
	"n":   1e-9,  // nano
	"p":   1e-12, // pico
	"f":   1e-15, // femto
}

// Unit text allowed after the scale suffix.
const unitWords = `F|H|V|A|S|s|(?i:ohm)`

var (
	valuePattern = regexp.MustCompile(`^([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)((?i:meg)|[TGKkmunpf])?(?:` + unitWords + `)?$`)
	spacePattern = regexp.MustCompile(`\s+`)
)

func newNetlistData() *NetlistData {
	return &NetlistData{
		Nodes: map[string]int{"0": 0},
		Simulation: Simulation{
			Step:    consts.DEFAULT_STEP,
			Stop:    consts.DEFAULT_STOP,
			Method:  util.ForwardEuler,
			Initial: make(map[string]float64),
		},
	}
}

// Parse reads a SPICE-like netlist. The first line is the title. Lines
// starting with '*' are comments, a trailing '*' starts an inline comment and
// a leading '+' continues the previous line.
func Parse(input string) (*NetlistData, error) {
	scanner := bufio.NewScanner(strings.NewReader(input))
	netlistData := newNetlistData()

	// Title or comment
	if scanner.Scan() {
		netlistData.Title = strings.TrimPrefix(scanner.Text(), "*")
		netlistData.Title = strings.TrimSpace(netlistData.Title)
	}

	var (
		currentLine  string
		currentStart int
		lineNo       = 1
	)
	flush := func() error {
		if currentLine == "" {
			return nil
		}
		line := currentLine
		currentLine = ""
		if err := parseLine(netlistData, line, currentStart); err != nil {
			return fmt.Errorf("line %d: %w", currentStart, err)
		}
		return nil
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if len(line) == 0 {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}

		// Full comment line
		if strings.HasPrefix(line, "*") {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}

		// Inline comment
		if idx := strings.Index(line, "*"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}

		if strings.HasPrefix(line, "+") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "+"))
			if currentLine == "" {
				return nil, fmt.Errorf("line %d: continuation without a preceding line", lineNo)
			}
			currentLine += " " + line
			continue
		}

		if err := flush(); err != nil {
			return nil, err
		}
		if strings.EqualFold(strings.Fields(line)[0], ".end") {
			break
		}
		currentLine = line
		currentStart = lineNo
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}

	if err := netlistData.resolve(); err != nil {
		return nil, err
	}
	return netlistData, nil
}

func parseLine(netlistData *NetlistData, line string, lineNo int) error {
	line = spacePattern.ReplaceAllString(line, " ")

	if strings.HasPrefix(line, ".") {
		return parseDotOperator(netlistData, line)
	}

	element, err := parseElement(line)
	if err != nil {
		return err
	}
	element.Line = lineNo

	netlistData.Elements = append(netlistData.Elements, *element)
	return nil
}

// Parse .tran, .ic, .print, .end
func parseDotOperator(netlistData *NetlistData, line string) error {
	var err error

	fields := strings.Fields(line)
	sim := &netlistData.Simulation

	switch strings.ToLower(fields[0]) {
	case ".tran":
		if len(fields) < 3 || len(fields) > 4 {
			return fmt.Errorf("tran needs step, stop and an optional method")
		}
		sim.Step, err = ParseValue(fields[1])
		if err != nil {
			return fmt.Errorf("invalid step: %w", err)
		}
		sim.Stop, err = ParseValue(fields[2])
		if err != nil {
			return fmt.Errorf("invalid stop: %w", err)
		}
		if len(fields) == 4 {
			sim.Method, err = util.ParseIntegrationMethod(fields[3])
			if err != nil {
				return err
			}
		}

	case ".ic":
		if len(fields) < 2 {
			return fmt.Errorf("ic needs at least one VAR=value pair")
		}
		for _, pair := range fields[1:] {
			name, val, ok := strings.Cut(pair, "=")
			if !ok {
				return fmt.Errorf("invalid initial condition %q, want VAR=value", pair)
			}
			v, err := device.ParseVariable(name)
			if err != nil {
				return err
			}
			value, err := ParseValue(val)
			if err != nil {
				return fmt.Errorf("initial condition %s: %w", v, err)
			}
			sim.Initial[v.String()] = value
		}

	case ".print":
		if len(fields) < 2 {
			return fmt.Errorf("print needs at least one variable")
		}
		for _, name := range fields[1:] {
			v, err := device.ParseVariable(name)
			if err != nil {
				return err
			}
			sim.Outputs = append(sim.Outputs, v.String())
		}

	case ".end":

	default:
		return fmt.Errorf("unsupported directive: %s", fields[0])
	}

	return nil
}

func parseElement(line string) (*Element, error) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return nil, fmt.Errorf("invalid element format: %s", line)
	}

	kind, err := device.ParseKind(fields[0][:1])
	if err != nil {
		return nil, fmt.Errorf("element %s: %w", fields[0], err)
	}

	elem := &Element{
		Name:   fields[0],
		Type:   kind.String(),
		Params: make(map[string]string),
	}

	switch kind {
	case device.VCCS:
		// G name n+ n- c+ c- value | G name n+ n- CTRL=comp value
		if len(fields) == 5 {
			key, comp, ok := strings.Cut(fields[3], "=")
			if !ok || !strings.EqualFold(key, "ctrl") || comp == "" {
				return nil, fmt.Errorf("element %s: want control nodes or CTRL=<component>", elem.Name)
			}
			elem.Nodes = fields[1:3]
			elem.Params["ctrl"] = comp
		} else if len(fields) == 6 {
			elem.Nodes = fields[1:5]
		} else {
			return nil, fmt.Errorf("element %s: want name n+ n- c+ c- value", elem.Name)
		}

	case device.VoltageSource, device.CurrentSource:
		// Optional DC keyword before the value
		if len(fields) == 5 && strings.EqualFold(fields[3], "dc") {
			fields = slices.Delete(slices.Clone(fields), 3, 4)
		}
		fallthrough

	default:
		if len(fields) != 4 {
			return nil, fmt.Errorf("element %s: want name n1 n2 value", elem.Name)
		}
		elem.Nodes = fields[1:3]
	}

	elem.Value, err = ParseValue(fields[len(fields)-1])
	if err != nil {
		return nil, fmt.Errorf("element %s: %w", elem.Name, err)
	}
	return elem, nil
}

// ParseValue parses a number with an optional SPICE scale suffix, e.g. 10k,
// 4.7u, 1meg or 1e-3. A unit may follow the suffix (100nF, 1kOhm) and is
// ignored. Scale letters are case-sensitive apart from meg.
func ParseValue(val string) (float64, error) {
	matches := valuePattern.FindStringSubmatch(strings.TrimSpace(val))
	if matches == nil {
		return 0, fmt.Errorf("invalid value format: %s", val)
	}

	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, err
	}

	// factor
	if suffix := matches[2]; suffix != "" {
		if len(suffix) > 1 {
			suffix = strings.ToLower(suffix)
		}
		num *= unitMap[suffix]
	}

	return num, nil
}

// resolve numbers the nodes and builds the components. "0" and "gnd" are
// ground, numeric names keep their number and other names are numbered after
// the largest numeric node in order of appearance.
func (n *NetlistData) resolve() error {
	next := 1
	for _, elem := range n.Elements {
		for _, name := range elem.Nodes {
			if idx, err := strconv.Atoi(name); err == nil {
				if idx < 0 {
					return fmt.Errorf("line %d: element %s: negative node %d", elem.Line, elem.Name, idx)
				}
				n.Nodes[name] = idx
				next = max(next, idx+1)
			}
		}
	}

	node := func(name string) int {
		if strings.EqualFold(name, "gnd") {
			return 0
		}
		if idx, ok := n.Nodes[name]; ok {
			return idx
		}
		n.Nodes[name] = next
		next++
		return n.Nodes[name]
	}

	n.Components = make([]device.Component, 0, len(n.Elements))
	for _, elem := range n.Elements {
		kind, err := device.ParseKind(elem.Type)
		if err != nil {
			return err
		}

		var comp device.Component
		if kind == device.VCCS && len(elem.Nodes) == 4 {
			comp = device.NewVCCS(elem.Name,
				node(elem.Nodes[0]), node(elem.Nodes[1]),
				node(elem.Nodes[2]), node(elem.Nodes[3]), elem.Value)
		} else {
			comp = device.New(kind, elem.Name, node(elem.Nodes[0]), node(elem.Nodes[1]), elem.Value)
			comp.ControlComponent = elem.Params["ctrl"]
		}
		n.Components = append(n.Components, comp)
	}
	return nil
}
