package graph

import (
	"github.com/kobex777/anymaps/pkg/geometry"
	"github.com/kobex777/anymaps/pkg/layout"
	"github.com/kobex777/anymaps/pkg/topology"
)

// Build creates a fresh Graph from a laid-out topology. Nodes take their
// position from pos (origin when missing) and have no manual size; edges
// have no control point. Edge styles come from spec when given.
func Build(t *topology.Topology, pos layout.Positions, spec *topology.Spec) Graph {
	g := Graph{
		Nodes: make([]Node, 0, len(t.Nodes)),
		Edges: make([]Edge, 0, len(t.Edges)),
	}
	for _, n := range t.Nodes {
		g.Nodes = append(g.Nodes, Node{
			ID:          n.ID,
			Kind:        n.Kind,
			Label:       n.Label,
			Description: n.Description,
			Icon:        n.Icon,
			Position:    pos[n.ID],
		})
	}
	for _, e := range t.Edges {
		g.Edges = append(g.Edges, Edge{
			ID:     e.ID,
			Source: e.Source,
			Target: e.Target,
			Label:  e.Label,
			Style:  spec.StyleOf(e.Source, e.Target),
		})
	}
	return g
}

// Topology projects g onto its position-free structure.
func (g *Graph) Topology() *topology.Topology {
	t := &topology.Topology{
		Nodes: make([]topology.Node, len(g.Nodes)),
		Edges: make([]topology.Edge, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		t.Nodes[i] = topology.Node{ID: n.ID, Label: n.Label, Kind: n.Kind, Description: n.Description, Icon: n.Icon}
	}
	for i, e := range g.Edges {
		t.Edges[i] = topology.Edge{ID: e.ID, Source: e.Source, Target: e.Target, Label: e.Label}
	}
	return t
}

// ManualSizes returns the sizes users set explicitly, keyed by node id.
func (g *Graph) ManualSizes() map[string]layout.Size {
	out := make(map[string]layout.Size)
	for _, n := range g.Nodes {
		if n.Size != nil {
			out[n.ID] = *n.Size
		}
	}
	return out
}

// EffectiveSizes returns the box size of every node.
func (g *Graph) EffectiveSizes() map[string]layout.Size {
	out := make(map[string]layout.Size, len(g.Nodes))
	for i := range g.Nodes {
		out[g.Nodes[i].ID] = g.Nodes[i].EffectiveSize()
	}
	return out
}

// Positions returns the current position of every node.
func (g *Graph) Positions() layout.Positions {
	out := make(layout.Positions, len(g.Nodes))
	for _, n := range g.Nodes {
		out[n.ID] = n.Position
	}
	return out
}

// Bounds returns the rectangle enclosing every node box.
func (g *Graph) Bounds() geometry.Rect {
	return layout.Bounds(g.Positions(), g.EffectiveSizes())
}
