package topology

import (
	"slices"

	errs "github.com/kobex777/anymaps/pkg/errors"
)

// RootID is the reserved id of the root node in every parsed topology.
const RootID = "central"

// Kind classifies a node by its depth below the root.
type Kind string

// Node kinds.
const (
	KindRoot      Kind = "root"
	KindPrimary   Kind = "primary"
	KindSecondary Kind = "secondary"
)

// Kinds lists every node kind.
var Kinds = []Kind{KindRoot, KindPrimary, KindSecondary}

// Valid reports whether k is one of [Kinds].
func (k Kind) Valid() bool {
	return slices.Contains(Kinds, k)
}

// ParseKind parses a node kind. An empty name selects [KindSecondary].
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return KindSecondary, nil
	}
	k := Kind(s)
	if !k.Valid() {
		return "", errs.New(errs.ErrCodeInvalidInput, "invalid node kind %q (must be root, primary or secondary)", s)
	}
	return k, nil
}

// KindForDepth returns the kind of a node at the given depth below the root.
func KindForDepth(depth int) Kind {
	switch {
	case depth <= 0:
		return KindRoot
	case depth == 1:
		return KindPrimary
	default:
		return KindSecondary
	}
}

// Node is a topic in the mind map.
type Node struct {
	ID          string `json:"id" bson:"id"`
	Label       string `json:"label" bson:"label"`
	Kind        Kind   `json:"kind" bson:"kind"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	Icon        string `json:"icon,omitempty" bson:"icon,omitempty"`
}

// Edge connects a parent topic to a child topic.
type Edge struct {
	ID     string `json:"id" bson:"id"`
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
	Label  string `json:"label,omitempty" bson:"label,omitempty"`
}

// Topology is a position-free node/edge graph. Node and edge order is
// significant: layout and formatting walk them in slice order.
type Topology struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Root returns the first node of kind root, or nil.
func (t *Topology) Root() *Node {
	for i := range t.Nodes {
		if t.Nodes[i].Kind == KindRoot {
			return &t.Nodes[i]
		}
	}
	return nil
}

// Node returns the node with the given id, or nil.
func (t *Topology) Node(id string) *Node {
	for i := range t.Nodes {
		if t.Nodes[i].ID == id {
			return &t.Nodes[i]
		}
	}
	return nil
}

// Children returns the targets of edges leaving id, in edge order.
func (t *Topology) Children(id string) []string {
	var out []string
	for _, e := range t.Edges {
		if e.Source == id {
			out = append(out, e.Target)
		}
	}
	return out
}

// Parent returns the source of the first edge entering id.
func (t *Topology) Parent(id string) (string, bool) {
	for _, e := range t.Edges {
		if e.Target == id {
			return e.Source, true
		}
	}
	return "", false
}

// NodeIDs returns all node ids in order.
func (t *Topology) NodeIDs() []string {
	ids := make([]string, len(t.Nodes))
	for i, n := range t.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// Validate checks that node ids are unique and non-empty, that every edge
// references existing nodes and that at most one root exists.
func (t *Topology) Validate() error {
	seen := make(map[string]bool, len(t.Nodes))
	roots := 0
	for _, n := range t.Nodes {
		if n.ID == "" {
			return errs.New(errs.ErrCodeInvalidInput, "node with empty id")
		}
		if seen[n.ID] {
			return errs.New(errs.ErrCodeInvalidInput, "duplicate node id %q", n.ID)
		}
		seen[n.ID] = true
		if n.Kind == KindRoot {
			roots++
		}
	}
	if roots > 1 {
		return errs.New(errs.ErrCodeInvalidInput, "topology has %d roots", roots)
	}
	for _, e := range t.Edges {
		if !seen[e.Source] {
			return errs.New(errs.ErrCodeInvalidInput, "edge %s: unknown source %q", e.ID, e.Source)
		}
		if !seen[e.Target] {
			return errs.New(errs.ErrCodeInvalidInput, "edge %s: unknown target %q", e.ID, e.Target)
		}
	}
	return nil
}

// Clone returns a deep copy of t.
func (t *Topology) Clone() *Topology {
	return &Topology{Nodes: slices.Clone(t.Nodes), Edges: slices.Clone(t.Edges)}
}
