package topology

import (
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	topo := &Topology{
		Nodes: []Node{
			{ID: "central", Label: "Topic", Kind: KindRoot},
			{ID: "a", Label: "Sub A", Kind: KindPrimary, Icon: "fa fa-book"},
			{ID: "a1", Label: "f(x)", Kind: KindSecondary},
			{ID: "b", Label: "Sub B", Kind: KindPrimary},
		},
		Edges: []Edge{
			{Source: "central", Target: "a"},
			{Source: "a", Target: "a1"},
			{Source: "central", Target: "b"},
		},
	}
	want := strings.Join([]string{
		"mindmap",
		"  root((Topic))",
		"    Sub A",
		"      ::icon(fa fa-book)",
		"      [f(x)]",
		"    Sub B",
		"",
	}, "\n")
	if got := Format(topo); got != want {
		t.Errorf("Format() =\n%s\nwant\n%s", got, want)
	}
}

func TestFormat_ParseIsIdempotent(t *testing.T) {
	inputs := []string{
		"mindmap\n  root((Topic))\n    Sub A\n      Leaf 1\n    Sub B",
		"mindmap\n  Plain\n    (Rounded)\n      [Square]\n        {Diamond}\n    )Bang(\n    root",
		"mindmap\n    root((Deep))\n      A\n        B\n          C\n      D",
		"mindmap\n  root((X))\n    [(tricky)]\n    [[nested]]\n    Same\n    Same",
	}
	for _, in := range inputs {
		first, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", in, err)
		}
		second, err := Parse(Format(first))
		if err != nil {
			t.Fatalf("Parse(Format()) error: %v", err)
		}
		if len(first.Nodes) != len(second.Nodes) || len(first.Edges) != len(second.Edges) {
			t.Fatalf("shape %d/%d, want %d/%d", len(second.Nodes), len(second.Edges), len(first.Nodes), len(first.Edges))
		}
		for i := range first.Nodes {
			if first.Nodes[i].Label != second.Nodes[i].Label || first.Nodes[i].Kind != second.Nodes[i].Kind {
				t.Errorf("node %d = %+v, want %+v", i, second.Nodes[i], first.Nodes[i])
			}
		}
		if got, want := parentIndexes(second), parentIndexes(first); !equalInts(got, want) {
			t.Errorf("parent indexes = %v, want %v", got, want)
		}
	}
}

func TestFormat_Empty(t *testing.T) {
	if got := Format(&Topology{}); got != "mindmap\n" {
		t.Errorf("Format(empty) = %q", got)
	}
}

func TestFormat_UnreachableNodesKept(t *testing.T) {
	topo := &Topology{Nodes: []Node{
		{ID: "central", Label: "R", Kind: KindRoot},
		{ID: "x", Label: "Loose", Kind: KindPrimary},
	}}
	out, err := Parse(Format(topo))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(out.Nodes) != 2 {
		t.Errorf("len(Nodes) = %d, want 2", len(out.Nodes))
	}
}

func TestCleanSyntax(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain", "mindmap\n  root((A))", "mindmap\n  root((A))"},
		{"fenced", "```mermaid\nmindmap\n  root((A))\n```", "mindmap\n  root((A))"},
		{"bare fence", "```\nmindmap\n```", "mindmap"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanSyntax(tt.in); got != tt.want {
				t.Errorf("CleanSyntax() = %q, want %q", got, tt.want)
			}
		})
	}
}

// parentIndexes maps each node position to the position of its parent (-1
// for none), so shapes can be compared independently of ids.
func parentIndexes(t *Topology) []int {
	pos := make(map[string]int, len(t.Nodes))
	for i, n := range t.Nodes {
		pos[n.ID] = i
	}
	out := make([]int, len(t.Nodes))
	for i, n := range t.Nodes {
		out[i] = -1
		if p, ok := t.Parent(n.ID); ok {
			out[i] = pos[p]
		}
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
