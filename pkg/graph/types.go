package graph

import (
	"maps"

	"github.com/kobex777/anymaps/pkg/geometry"
	"github.com/kobex777/anymaps/pkg/layout"
	"github.com/kobex777/anymaps/pkg/topology"
)

// =============================================================================
// Graph - Interactive Mind Map
// =============================================================================

// Graph is the interactive node/edge model of a mind map.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`

	// Direction is the axis the map was laid out along. It picks the sides
	// connectors attach to; empty means [layout.DirectionRight].
	Direction layout.Direction `json:"direction,omitempty" bson:"direction,omitempty"`
}

// =============================================================================
// Node - Positioned Topic
// =============================================================================

// Node is a topic on the canvas.
type Node struct {
	ID          string         `json:"id" bson:"id"`
	Kind        topology.Kind  `json:"kind" bson:"kind"`
	Label       string         `json:"label" bson:"label"`
	Description string         `json:"description,omitempty" bson:"description,omitempty"`
	Icon        string         `json:"icon,omitempty" bson:"icon,omitempty"`
	Position    geometry.Point `json:"position" bson:"position"`
	Size        *layout.Size   `json:"size,omitempty" bson:"size,omitempty"` // set only after a manual resize
	Data        map[string]any `json:"data,omitempty" bson:"data,omitempty"`
}

// EffectiveSize returns the manual size if set, else the kind default.
func (n *Node) EffectiveSize() layout.Size {
	if n.Size != nil && n.Size.Valid() {
		return *n.Size
	}
	return layout.DefaultSize(n.Kind)
}

// Box returns the node's bounding box.
func (n *Node) Box() geometry.Rect {
	s := n.EffectiveSize()
	return geometry.Rect{Min: n.Position, Width: s.Width, Height: s.Height}
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

func (n Node) clone() Node {
	if n.Size != nil {
		s := *n.Size
		n.Size = &s
	}
	n.Data = maps.Clone(n.Data)
	return n
}

// =============================================================================
// Edge - Curved Connector
// =============================================================================

// Edge is a connector between two topics.
type Edge struct {
	ID           string          `json:"id" bson:"id"`
	Source       string          `json:"source" bson:"source"`
	Target       string          `json:"target" bson:"target"`
	Label        string          `json:"label,omitempty" bson:"label,omitempty"`
	Style        string          `json:"style,omitempty" bson:"style,omitempty"`
	ControlPoint *geometry.Point `json:"controlPoint,omitempty" bson:"control_point,omitempty"`
}

func (e Edge) clone() Edge {
	if e.ControlPoint != nil {
		cp := *e.ControlPoint
		e.ControlPoint = &cp
	}
	return e
}

// Pair is the reconciliation key of an edge.
type Pair struct {
	Source, Target string
}

// Pair returns the (source, target) key of e.
func (e *Edge) Pair() Pair { return Pair{e.Source, e.Target} }
