// Package nettest builds sample networks for tests.
package nettest

import (
	"fmt"
	"math/rand"

	"github.com/ProNinjaDev/statespace/pkg/device"
)

// SeriesRC is a 10 V source charging a 1e-4 F capacitor through 100 Ohm.
// The source's EMF points from node 0 to node 1.
func SeriesRC() []device.Component {
	return []device.Component{
		device.NewVoltageSource("E1", 0, 1, 10),
		device.NewResistor("R1", 1, 2, 100),
		device.NewCapacitor("C1", 2, 0, 1e-4),
	}
}

// SeriesRLC adds a 10 mH inductor between the resistor and the capacitor.
func SeriesRLC() []device.Component {
	return []device.Component{
		device.NewVoltageSource("E1", 0, 1, 5),
		device.NewResistor("R1", 1, 2, 10),
		device.NewInductor("L1", 2, 3, 1e-2),
		device.NewCapacitor("C1", 3, 0, 1e-4),
	}
}

// Random returns a connected network on the given number of nodes (at least
// two). A voltage source sits between nodes 0 and 1, every further node is
// attached to an earlier one through a resistor or capacitor, and extra
// components of any kind close loops. The spanning attachments keep the
// tree connected.
func Random(rng *rand.Rand, nodes, extra int) []device.Component {
	if nodes < 2 {
		nodes = 2
	}
	comps := []device.Component{device.NewVoltageSource("E0", 0, 1, 1+rng.Float64()*9)}

	for n := 2; n < nodes; n++ {
		to := rng.Intn(n)
		if rng.Intn(2) == 0 {
			comps = append(comps, device.NewResistor(fmt.Sprintf("RS%d", n), to, n, 1+rng.Float64()*1e3))
		} else {
			comps = append(comps, device.NewCapacitor(fmt.Sprintf("CS%d", n), to, n, 1e-6+rng.Float64()*1e-4))
		}
	}

	for i := 0; i < extra; i++ {
		a := rng.Intn(nodes)
		b := rng.Intn(nodes)
		if a == b {
			b = (a + 1) % nodes
		}
		name := fmt.Sprintf("X%d", i)
		switch rng.Intn(5) {
		case 0:
			comps = append(comps, device.NewResistor("R"+name, a, b, 1+rng.Float64()*1e3))
		case 1:
			comps = append(comps, device.NewCapacitor("C"+name, a, b, 1e-6+rng.Float64()*1e-4))
		case 2:
			comps = append(comps, device.NewInductor("L"+name, a, b, 1e-3+rng.Float64()*1e-1))
		case 3:
			comps = append(comps, device.NewCurrentSource("J"+name, a, b, rng.Float64()))
		default:
			c1 := rng.Intn(nodes)
			c2 := (c1 + 1 + rng.Intn(nodes-1)) % nodes
			comps = append(comps, device.NewVCCS("G"+name, a, b, c1, c2, rng.Float64()*1e-2))
		}
	}
	return comps
}
