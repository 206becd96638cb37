package topology

import (
	"container/list"
	"fmt"

	"github.com/ProNinjaDev/statespace/pkg/device"
)

// PathStep is one tree branch on a path. Sign is +1 when the walk enters the
// branch at its Node1 and leaves at Node2, -1 otherwise.
type PathStep struct {
	Branch device.Component
	From   int
	To     int
	Sign   int
}

type edge struct {
	branch int
	to     int
}

// Graph is the undirected adjacency of tree branches keyed by node.
type Graph struct {
	branches []device.Component
	adj      map[int][]edge
}

func NewGraph(branches []device.Component) *Graph {
	g := &Graph{
		branches: branches,
		adj:      make(map[int][]edge),
	}
	for i, b := range branches {
		g.adj[b.Node1] = append(g.adj[b.Node1], edge{branch: i, to: b.Node2})
		g.adj[b.Node2] = append(g.adj[b.Node2], edge{branch: i, to: b.Node1})
	}
	return g
}

// Path returns the unique branch sequence leading from start to end. The
// path between a node and itself is empty.
func (g *Graph) Path(start, end int) ([]PathStep, error) {
	if start == end {
		return nil, nil
	}
	if _, ok := g.adj[start]; !ok {
		return nil, &TopologyError{From: start, To: end, Reason: fmt.Sprintf("node %d is not on the tree", start)}
	}
	if _, ok := g.adj[end]; !ok {
		return nil, &TopologyError{From: start, To: end, Reason: fmt.Sprintf("node %d is not on the tree", end)}
	}

	queue := list.New()
	parent := make(map[int]edge) // node -> branch used to reach it
	visited := map[int]bool{start: true}
	queue.PushBack(start)

	for queue.Len() > 0 {
		node := queue.Remove(queue.Front()).(int)
		if node == end {
			break
		}
		for _, e := range g.adj[node] {
			if visited[e.to] {
				continue
			}
			visited[e.to] = true
			parent[e.to] = edge{branch: e.branch, to: node}
			queue.PushBack(e.to)
		}
	}

	if !visited[end] {
		return nil, &TopologyError{From: start, To: end, Reason: "no tree path between nodes"}
	}

	var branches []int
	for node := end; node != start; node = parent[node].to {
		branches = append(branches, parent[node].branch)
	}
	for i, j := 0, len(branches)-1; i < j; i, j = i+1, j-1 {
		branches[i], branches[j] = branches[j], branches[i]
	}

	steps := make([]PathStep, 0, len(branches))
	current := start
	for _, bi := range branches {
		b := g.branches[bi]
		step := PathStep{Branch: b, From: current}
		if current == b.Node1 {
			step.Sign = 1
		} else {
			step.Sign = -1
		}
		current = b.Other(current)
		step.To = current
		steps = append(steps, step)
	}
	return steps, nil
}
