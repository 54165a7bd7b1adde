package graph

import (
	"slices"
	"strings"

	"github.com/google/uuid"

	errs "github.com/kobex777/anymaps/pkg/errors"
	"github.com/kobex777/anymaps/pkg/geometry"
	"github.com/kobex777/anymaps/pkg/layout"
	"github.com/kobex777/anymaps/pkg/topology"
)

// NewNodeID returns a fresh id for a user-created node.
func NewNodeID() string { return "node-" + shortID() }

// NewEdgeID returns a fresh id for a user-created edge.
func NewEdgeID() string { return "edge-" + shortID() }

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// NodePatch lists the node fields an edit may change. Nil fields are kept.
type NodePatch struct {
	Label       *string        `json:"label,omitempty"`
	Description *string        `json:"description,omitempty"`
	Icon        *string        `json:"icon,omitempty"`
	Kind        *topology.Kind `json:"kind,omitempty"`
}

// AddNode appends n. An empty id is replaced with [NewNodeID].
func (g *Graph) AddNode(n Node) (Node, error) {
	if err := errs.ValidateLabel(n.Label); err != nil {
		return Node{}, err
	}
	if n.ID == "" {
		n.ID = NewNodeID()
	}
	if g.Node(n.ID) != nil {
		return Node{}, errs.New(errs.ErrCodeInvalidInput, "node %q already exists", n.ID)
	}
	kind, err := topology.ParseKind(string(n.Kind))
	if err != nil {
		return Node{}, err
	}
	if kind == topology.KindRoot && g.Root() != nil {
		return Node{}, errs.New(errs.ErrCodeInvalidInput, "map already has a root (%s)", g.Root().ID)
	}
	n.Kind = kind
	if !n.Position.IsFinite() {
		return Node{}, errs.New(errs.ErrCodeInvalidInput, "node position must be finite")
	}
	g.Nodes = append(g.Nodes, n)
	return n, nil
}

// UpdateNode applies p to the node with the given id. The patch is checked
// in full before any field changes. The root keeps its kind and no second
// root may be made.
func (g *Graph) UpdateNode(id string, p NodePatch) error {
	n := g.Node(id)
	if n == nil {
		return notFound("node", id)
	}
	if p.Label != nil {
		if err := errs.ValidateLabel(*p.Label); err != nil {
			return err
		}
	}
	if p.Kind != nil && *p.Kind != n.Kind {
		kind, err := topology.ParseKind(string(*p.Kind))
		if err != nil {
			return err
		}
		switch {
		case n.Kind == topology.KindRoot:
			return errs.New(errs.ErrCodeInvalidInput, "cannot change the kind of root %q", id)
		case kind == topology.KindRoot && g.Root() != nil:
			return errs.New(errs.ErrCodeInvalidInput, "map already has a root (%s)", g.Root().ID)
		}
		n.Kind = kind
	}
	if p.Label != nil {
		n.Label = *p.Label
	}
	if p.Description != nil {
		n.Description = *p.Description
	}
	if p.Icon != nil {
		n.Icon = *p.Icon
	}
	return nil
}

// RemoveNode deletes a node and every edge touching it. It returns the
// number of edges removed.
func (g *Graph) RemoveNode(id string) (int, error) {
	if g.Node(id) == nil {
		return 0, notFound("node", id)
	}
	g.Nodes = slices.DeleteFunc(g.Nodes, func(n Node) bool { return n.ID == id })
	before := len(g.Edges)
	g.Edges = slices.DeleteFunc(g.Edges, func(e Edge) bool { return e.Source == id || e.Target == id })
	return before - len(g.Edges), nil
}

// Connect adds an edge from source to target. Self loops and a second edge
// for the same pair are rejected.
func (g *Graph) Connect(source, target, label string) (Edge, error) {
	if g.Node(source) == nil {
		return Edge{}, notFound("node", source)
	}
	if g.Node(target) == nil {
		return Edge{}, notFound("node", target)
	}
	if source == target {
		return Edge{}, errs.New(errs.ErrCodeInvalidInput, "cannot connect %q to itself", source)
	}
	if g.EdgeByPair(source, target) != nil {
		return Edge{}, errs.New(errs.ErrCodeInvalidInput, "%s and %s are already connected", source, target)
	}
	e := Edge{ID: NewEdgeID(), Source: source, Target: target, Label: label, Style: topology.StyleSolid}
	g.Edges = append(g.Edges, e)
	return e, nil
}

// Reconnect moves an edge to new endpoints. The stored control point is
// dropped because it was shaped for the old anchors.
func (g *Graph) Reconnect(edgeID, source, target string) error {
	e := g.Edge(edgeID)
	if e == nil {
		return notFound("edge", edgeID)
	}
	if g.Node(source) == nil {
		return notFound("node", source)
	}
	if g.Node(target) == nil {
		return notFound("node", target)
	}
	if source == target {
		return errs.New(errs.ErrCodeInvalidInput, "cannot connect %q to itself", source)
	}
	if other := g.EdgeByPair(source, target); other != nil && other.ID != edgeID {
		return errs.New(errs.ErrCodeInvalidInput, "%s and %s are already connected", source, target)
	}
	e.Source, e.Target, e.ControlPoint = source, target, nil
	return nil
}

// Disconnect removes the edge with the given id.
func (g *Graph) Disconnect(edgeID string) error {
	if g.Edge(edgeID) == nil {
		return notFound("edge", edgeID)
	}
	g.Edges = slices.DeleteFunc(g.Edges, func(e Edge) bool { return e.ID == edgeID })
	return nil
}

// Resize records a manual size for a node.
func (g *Graph) Resize(id string, s layout.Size) error {
	n := g.Node(id)
	if n == nil {
		return notFound("node", id)
	}
	if !s.Valid() {
		return errs.New(errs.ErrCodeInvalidInput, "size must be positive, got %gx%g", s.Width, s.Height)
	}
	n.Size = &s
	return nil
}

// Move sets a node's position. Control points of attached edges are left
// unchanged.
func (g *Graph) Move(id string, p geometry.Point) error {
	n := g.Node(id)
	if n == nil {
		return notFound("node", id)
	}
	if !p.IsFinite() {
		return errs.New(errs.ErrCodeInvalidInput, "node position must be finite")
	}
	n.Position = p
	return nil
}

// SetControlPoint stores an explicit control point on an edge. A nil point
// restores the default curve.
func (g *Graph) SetControlPoint(edgeID string, cp *geometry.Point) error {
	e := g.Edge(edgeID)
	if e == nil {
		return notFound("edge", edgeID)
	}
	if cp != nil {
		if !cp.IsFinite() {
			return errs.New(errs.ErrCodeInvalidInput, "control point must be finite")
		}
		c := *cp
		cp = &c
	}
	e.ControlPoint = cp
	return nil
}

// Curve returns the connector geometry of an edge. In a right-growing map it
// leaves the right side of the source box and enters the left side of the
// target box; in a downward map it runs from bottom to top.
func (g *Graph) Curve(edgeID string) (geometry.Curve, error) {
	e := g.Edge(edgeID)
	if e == nil {
		return geometry.Curve{}, notFound("edge", edgeID)
	}
	src, dst := g.Node(e.Source), g.Node(e.Target)
	if src == nil || dst == nil {
		return geometry.Curve{}, errs.New(errs.ErrCodeInvalidInput, "edge %s references a missing node", edgeID)
	}
	from, to := src.Box(), dst.Box()
	if g.Direction == layout.DirectionDown {
		return geometry.NewCurve(from.Bottom(), to.Top(), e.ControlPoint), nil
	}
	return geometry.NewCurve(from.Right(), to.Left(), e.ControlPoint), nil
}

// BeginDrag starts a handle drag on an edge.
func (g *Graph) BeginDrag(edgeID string) (*geometry.Drag, error) {
	c, err := g.Curve(edgeID)
	if err != nil {
		return nil, err
	}
	cp := c.P1
	return geometry.BeginDrag(c.P0, c.P2, &cp), nil
}

func notFound(what, id string) error {
	return errs.New(errs.ErrCodeNotFound, "%s %q not found", what, id)
}
