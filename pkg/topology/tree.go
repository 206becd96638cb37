// Package topology splits a network into a spanning tree and chords and
// encodes the fundamental loops the chords close.
package topology

import (
	"fmt"
	"slices"

	"github.com/ProNinjaDev/statespace/pkg/device"
)

// Tree-eligible kinds in the order they are offered to the tree.
var treeOrder = []device.Kind{device.VoltageSource, device.Capacitor, device.Resistor}

var chordPriority = map[device.Kind]int{
	device.Resistor:      1,
	device.Inductor:      2,
	device.CurrentSource: 3,
	device.Capacitor:     4,
	device.VoltageSource: 5,
}

type Tree struct {
	Branches []device.Component
	Chords   []device.Component

	graph *Graph
}

// Build selects a spanning tree: voltage sources first, then capacitors,
// then resistors, each admitted when it joins two separate node groups.
// Inductors, current sources and VCCS are always chords.
func Build(components []device.Component) (*Tree, error) {
	groups := newUnionFind()
	for _, c := range components {
		groups.add(c.Node1)
		groups.add(c.Node2)
	}

	t := &Tree{}
	inTree := make(map[string]bool)
	for _, kind := range treeOrder {
		for _, c := range components {
			if c.Kind != kind {
				continue
			}
			if groups.union(c.Node1, c.Node2) {
				t.Branches = append(t.Branches, c)
				inTree[c.Name] = true
			}
		}
	}

	for _, c := range components {
		if !inTree[c.Name] {
			t.Chords = append(t.Chords, c)
		}
	}
	slices.SortStableFunc(t.Chords, func(a, b device.Component) int {
		return priority(a.Kind) - priority(b.Kind)
	})

	if err := checkSpanning(components, groups); err != nil {
		return nil, err
	}

	t.graph = NewGraph(t.Branches)
	return t, nil
}

// Graph returns the branch adjacency of the tree.
func (t *Tree) Graph() *Graph {
	if t.graph == nil {
		t.graph = NewGraph(t.Branches)
	}
	return t.graph
}

// LoopMatrix builds the fundamental loop matrix of the tree's chords.
func (t *Tree) LoopMatrix() (*LoopMatrix, error) {
	return buildLoopMatrix(t.Graph(), t.Branches, t.Chords)
}

func priority(k device.Kind) int {
	if p, ok := chordPriority[k]; ok {
		return p
	}
	return 99
}

// checkSpanning fails when the tree leaves more than one node group. A
// network that is connected only through chords gets a distinct reason.
func checkSpanning(components []device.Component, tree *unionFind) error {
	roots := tree.roots()
	if len(roots) <= 1 {
		return nil
	}

	all := newUnionFind()
	for _, c := range components {
		all.add(c.Node1)
		all.add(c.Node2)
		all.union(c.Node1, c.Node2)
	}
	if n := len(all.roots()); n > 1 {
		return &TopologyError{Reason: fmt.Sprintf("network is disconnected into %d parts", n)}
	}

	// Name a chord that bridges two tree groups.
	for _, c := range components {
		if tree.find(c.Node1) != tree.find(c.Node2) {
			return &TopologyError{
				Component: c.Name,
				From:      c.Node1,
				To:        c.Node2,
				Reason:    "nodes are joined only through L, J or G components",
			}
		}
	}
	return &TopologyError{Reason: "tree does not span the network"}
}

type unionFind struct {
	parent map[int]int
	order  []int
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[int]int)}
}

func (u *unionFind) add(n int) {
	if _, ok := u.parent[n]; !ok {
		u.parent[n] = n
		u.order = append(u.order, n)
	}
}

func (u *unionFind) find(n int) int {
	for u.parent[n] != n {
		u.parent[n] = u.parent[u.parent[n]]
		n = u.parent[n]
	}
	return n
}

// union merges the groups of a and b and reports whether they were separate.
func (u *unionFind) union(a, b int) bool {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return false
	}
	u.parent[rb] = ra
	return true
}

func (u *unionFind) roots() []int {
	var roots []int
	for _, n := range u.order {
		if u.find(n) == n {
			roots = append(roots, n)
		}
	}
	return roots
}
