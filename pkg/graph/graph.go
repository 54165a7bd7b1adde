package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	errs "github.com/kobex777/anymaps/pkg/errors"
	"github.com/kobex777/anymaps/pkg/topology"
)

// =============================================================================
// Lookup
// =============================================================================

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// Edge returns the edge with the given id, or nil.
func (g *Graph) Edge(id string) *Edge {
	for i := range g.Edges {
		if g.Edges[i].ID == id {
			return &g.Edges[i]
		}
	}
	return nil
}

// EdgeByPair returns the first edge from source to target, or nil.
func (g *Graph) EdgeByPair(source, target string) *Edge {
	for i := range g.Edges {
		if g.Edges[i].Source == source && g.Edges[i].Target == target {
			return &g.Edges[i]
		}
	}
	return nil
}

// IsEmpty reports whether g has no nodes.
func (g *Graph) IsEmpty() bool { return len(g.Nodes) == 0 }

// Clone returns a deep copy of g.
func (g *Graph) Clone() Graph {
	out := Graph{
		Nodes:     make([]Node, len(g.Nodes)),
		Edges:     make([]Edge, len(g.Edges)),
		Direction: g.Direction,
	}
	for i, n := range g.Nodes {
		out.Nodes[i] = n.clone()
	}
	for i, e := range g.Edges {
		out.Edges[i] = e.clone()
	}
	return out
}

// Root returns the root node, or nil when the graph has none.
func (g *Graph) Root() *Node {
	for i := range g.Nodes {
		if g.Nodes[i].Kind == topology.KindRoot {
			return &g.Nodes[i]
		}
	}
	return nil
}

// Validate checks node id uniqueness, node kinds, that there is at most one
// root, and that every edge references existing nodes. An unset kind is
// accepted.
func (g *Graph) Validate() error {
	seen := make(map[string]bool, len(g.Nodes))
	roots := 0
	for _, n := range g.Nodes {
		if n.ID == "" {
			return errs.New(errs.ErrCodeInvalidInput, "node with empty id")
		}
		if seen[n.ID] {
			return errs.New(errs.ErrCodeInvalidInput, "duplicate node id %q", n.ID)
		}
		seen[n.ID] = true
		if n.Kind != "" && !n.Kind.Valid() {
			return errs.New(errs.ErrCodeInvalidInput, "node %q has invalid kind %q", n.ID, n.Kind)
		}
		if n.Kind == topology.KindRoot {
			roots++
		}
	}
	if roots > 1 {
		return errs.New(errs.ErrCodeInvalidInput, "graph has %d roots, want at most one", roots)
	}
	edgeIDs := make(map[string]bool, len(g.Edges))
	for _, e := range g.Edges {
		if edgeIDs[e.ID] {
			return errs.New(errs.ErrCodeInvalidInput, "duplicate edge id %q", e.ID)
		}
		edgeIDs[e.ID] = true
		if !seen[e.Source] || !seen[e.Target] {
			return errs.New(errs.ErrCodeInvalidInput, "edge %s references a missing node (%s -> %s)", e.ID, e.Source, e.Target)
		}
	}
	return nil
}

// =============================================================================
// Serialization API
// =============================================================================

// Marshal converts a Graph to indented JSON bytes.
func Marshal(g Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes a Graph as indented JSON to w.
func Write(g Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}

// WriteFile writes a Graph to a JSON file.
func WriteFile(g Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(g, f)
}

// Unmarshal decodes JSON bytes into a validated Graph.
func Unmarshal(data []byte) (Graph, error) {
	return Read(bytes.NewReader(data))
}

// Read decodes a JSON graph from r and validates it.
func Read(r io.Reader) (Graph, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return Graph{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode graph")
	}
	if err := g.Validate(); err != nil {
		return Graph{}, err
	}
	return g, nil
}

// ReadFile reads and validates a JSON graph file.
func ReadFile(path string) (Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return Graph{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
