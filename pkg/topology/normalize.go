package topology

import (
	"fmt"
	"strings"
)

// Normalize converts a specification into a Topology.
//
// Node fields pass through and the node type selects the kind. Edges carry no
// identity in a specification, so each gets a synthetic id edge-<index> from
// its input position. Edges naming unknown nodes are dropped.
func Normalize(s *Spec) *Topology {
	t := &Topology{}
	if s == nil {
		return t
	}

	known := make(map[string]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		if n.ID == "" || known[n.ID] {
			continue
		}
		known[n.ID] = true
		t.Nodes = append(t.Nodes, Node{
			ID:          n.ID,
			Label:       n.Label,
			Kind:        KindForType(n.Type),
			Description: n.Description,
			Icon:        n.Icon,
		})
	}

	for i, e := range s.Edges {
		if !known[e.Source] || !known[e.Target] {
			continue
		}
		t.Edges = append(t.Edges, Edge{
			ID:     fmt.Sprintf("edge-%d", i),
			Source: e.Source,
			Target: e.Target,
			Label:  e.Label,
		})
	}
	return t
}

// FromTopology builds a specification from a topology, for when the
// generation service only returned graph syntax.
func FromTopology(t *Topology, title string) *Spec {
	s := &Spec{Title: title}
	if root := t.Root(); root != nil {
		s.CentralTopic = root.Label
		if s.Title == "" {
			s.Title = root.Label
		}
	}
	for _, n := range t.Nodes {
		s.Nodes = append(s.Nodes, NodeSpec{
			ID:          n.ID,
			Label:       n.Label,
			Description: n.Description,
			Type:        TypeForKind(n.Kind),
			Icon:        n.Icon,
		})
	}
	for _, e := range t.Edges {
		s.Edges = append(s.Edges, EdgeSpec{Source: e.Source, Target: e.Target, Label: e.Label, Style: StyleSolid})
	}
	return s
}

// Changes summarises the structural difference between two specifications,
// for example "Added 3 nodes, Removed 1 node". Nodes are compared by id;
// connections by count.
func Changes(old, updated *Spec) string {
	oldIDs := nodeIDSet(old)
	newIDs := nodeIDSet(updated)

	added, removed := 0, 0
	for id := range newIDs {
		if !oldIDs[id] {
			added++
		}
	}
	for id := range oldIDs {
		if !newIDs[id] {
			removed++
		}
	}
	edgeDiff := edgeCount(updated) - edgeCount(old)

	var parts []string
	if added > 0 {
		parts = append(parts, "Added "+plural(added, "node"))
	}
	if removed > 0 {
		parts = append(parts, "Removed "+plural(removed, "node"))
	}
	switch {
	case edgeDiff > 0:
		parts = append(parts, "Added "+plural(edgeDiff, "connection"))
	case edgeDiff < 0:
		parts = append(parts, "Removed "+plural(-edgeDiff, "connection"))
	}
	if len(parts) == 0 {
		return "No structural changes"
	}
	return strings.Join(parts, ", ")
}

func nodeIDSet(s *Spec) map[string]bool {
	set := make(map[string]bool)
	if s == nil {
		return set
	}
	for _, n := range s.Nodes {
		set[n.ID] = true
	}
	return set
}

func edgeCount(s *Spec) int {
	if s == nil {
		return 0
	}
	return len(s.Edges)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
