package canvas

import (
	"context"

	"github.com/kobex777/anymaps/pkg/geometry"
	"github.com/kobex777/anymaps/pkg/graph"
	"github.com/kobex777/anymaps/pkg/layout"
	"github.com/kobex777/anymaps/pkg/topology"
)

// =============================================================================
// Manual edits
// =============================================================================
//
// Edits never relayout. Structural edits rewrite the specification and graph
// syntax from the edited graph so a later enhancement sees them. Every
// successful edit dispatches a silent save.

// AddNode adds a topic at a canvas position.
func (s *Session) AddNode(ctx context.Context, label string, kind topology.Kind, at geometry.Point) (graph.Node, error) {
	var n graph.Node
	err := s.edit(ctx, true, func(g *graph.Graph) (err error) {
		n, err = g.AddNode(graph.Node{Label: label, Kind: kind, Position: at})
		return err
	})
	return n, err
}

// EditNode changes the label, description, icon or kind of a node.
func (s *Session) EditNode(ctx context.Context, id string, patch graph.NodePatch) error {
	return s.edit(ctx, true, func(g *graph.Graph) error {
		return g.UpdateNode(id, patch)
	})
}

// DeleteNode removes a node and its incident edges.
func (s *Session) DeleteNode(ctx context.Context, id string) error {
	return s.edit(ctx, true, func(g *graph.Graph) error {
		removed, err := g.RemoveNode(id)
		if err == nil {
			s.opts.Logger.Debug("deleted node", "id", id, "edges", removed)
		}
		return err
	})
}

// Connect adds a solid edge between two nodes.
func (s *Session) Connect(ctx context.Context, source, target, label string) (graph.Edge, error) {
	var e graph.Edge
	err := s.edit(ctx, true, func(g *graph.Graph) (err error) {
		e, err = g.Connect(source, target, label)
		return err
	})
	return e, err
}

// Reconnect moves an edge to new endpoints and clears its control point.
func (s *Session) Reconnect(ctx context.Context, edgeID, source, target string) error {
	return s.edit(ctx, true, func(g *graph.Graph) error {
		return g.Reconnect(edgeID, source, target)
	})
}

// Disconnect removes an edge.
func (s *Session) Disconnect(ctx context.Context, edgeID string) error {
	return s.edit(ctx, true, func(g *graph.Graph) error {
		return g.Disconnect(edgeID)
	})
}

// Resize sets the manual size of a node. Later enhancements keep it.
func (s *Session) Resize(ctx context.Context, id string, size layout.Size) error {
	return s.edit(ctx, false, func(g *graph.Graph) error {
		return g.Resize(id, size)
	})
}

// Move places a node at p.
func (s *Session) Move(ctx context.Context, id string, p geometry.Point) error {
	return s.edit(ctx, false, func(g *graph.Graph) error {
		return g.Move(id, p)
	})
}

// SetControlPoint commits an edge's control point. nil restores the default
// straight curve.
func (s *Session) SetControlPoint(ctx context.Context, edgeID string, cp *geometry.Point) error {
	return s.edit(ctx, false, func(g *graph.Graph) error {
		return g.SetControlPoint(edgeID, cp)
	})
}

// DragMidpoint commits a drag of an edge's visible midpoint handle to m and
// returns the resulting control point.
func (s *Session) DragMidpoint(ctx context.Context, edgeID string, m geometry.Point) (geometry.Point, error) {
	var cp geometry.Point
	err := s.edit(ctx, false, func(g *graph.Graph) error {
		d, err := g.BeginDrag(edgeID)
		if err != nil {
			return err
		}
		d.Move(m)
		cp = d.Commit()
		return g.SetControlPoint(edgeID, &cp)
	})
	return cp, err
}

// Curve returns the current curve of an edge.
func (s *Session) Curve(edgeID string) (geometry.Curve, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Curve(edgeID)
}

// edit applies fn to a copy of the graph and swaps it in on success.
func (s *Session) edit(ctx context.Context, structural bool, fn func(*graph.Graph) error) error {
	s.mu.Lock()
	g := s.graph.Clone()
	if err := fn(&g); err != nil {
		s.mu.Unlock()
		return err
	}
	s.graph = g
	if structural {
		s.syncSpec()
	}
	s.mu.Unlock()

	s.SaveAsync(ctx)
	return nil
}

// syncSpec rebuilds the specification and syntax from the graph, keeping the
// title and summary.
func (s *Session) syncSpec() {
	spec := &topology.Spec{Title: s.title}
	if s.spec != nil {
		spec.Summary = s.spec.Summary
	}
	for _, n := range s.graph.Nodes {
		if n.Kind == topology.KindRoot && spec.CentralTopic == "" {
			spec.CentralTopic = n.Label
		}
		spec.Nodes = append(spec.Nodes, topology.NodeSpec{
			ID:          n.ID,
			Label:       n.Label,
			Description: n.Description,
			Type:        topology.TypeForKind(n.Kind),
			Icon:        n.Icon,
		})
	}
	for _, e := range s.graph.Edges {
		spec.Edges = append(spec.Edges, topology.EdgeSpec{Source: e.Source, Target: e.Target, Label: e.Label, Style: e.Style})
	}
	s.spec = spec
	s.syntax = topology.Format(s.graph.Topology())
}
