package topology

import (
	"strings"
	"testing"

	errs "github.com/kobex777/anymaps/pkg/errors"
)

func TestParse_Scenario(t *testing.T) {
	topo, err := Parse("mindmap\n  root((Topic))\n    Sub A\n      Leaf 1\n    Sub B")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	wantNodes := []Node{
		{ID: "central", Label: "Topic", Kind: KindRoot},
		{ID: "sub_a_1", Label: "Sub A", Kind: KindPrimary},
		{ID: "leaf_1_2", Label: "Leaf 1", Kind: KindSecondary},
		{ID: "sub_b_3", Label: "Sub B", Kind: KindPrimary},
	}
	if len(topo.Nodes) != len(wantNodes) {
		t.Fatalf("len(Nodes) = %d, want %d", len(topo.Nodes), len(wantNodes))
	}
	for i, want := range wantNodes {
		if topo.Nodes[i] != want {
			t.Errorf("Nodes[%d] = %+v, want %+v", i, topo.Nodes[i], want)
		}
	}

	wantEdges := []Edge{
		{ID: "edge_0", Source: "central", Target: "sub_a_1"},
		{ID: "edge_1", Source: "sub_a_1", Target: "leaf_1_2"},
		{ID: "edge_2", Source: "central", Target: "sub_b_3"},
	}
	if len(topo.Edges) != len(wantEdges) {
		t.Fatalf("len(Edges) = %d, want %d", len(topo.Edges), len(wantEdges))
	}
	for i, want := range wantEdges {
		if topo.Edges[i] != want {
			t.Errorf("Edges[%d] = %+v, want %+v", i, topo.Edges[i], want)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no declaration", "  root((Topic))\n    Sub"},
		{"declaration only", "mindmap\n\n   \n"},
		{"declaration with suffix", "mindmap2\n  Topic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatal("Parse() error = nil, want error")
			}
			if !errs.IsParse(err) {
				t.Errorf("Parse() error code = %v, want %v", errs.GetCode(err), errs.ErrCodeParse)
			}
		})
	}
}

func TestParse_DeclarationCaseAndPreamble(t *testing.T) {
	topo, err := Parse("%% generated\n  MindMap  \n  root((A))\n    B")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(topo.Nodes) != 2 {
		t.Errorf("len(Nodes) = %d, want 2", len(topo.Nodes))
	}
}

func TestParse_BlankLinesDoNotShiftIndices(t *testing.T) {
	topo, err := Parse("mindmap\n\n  root((A))\n\n\n    B\n")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if got := topo.Nodes[1].ID; got != "b_1" {
		t.Errorf("Nodes[1].ID = %q, want %q", got, "b_1")
	}
}

func TestParse_FirstLineIsAlwaysRoot(t *testing.T) {
	topo, err := Parse("mindmap\n  Plain Topic\n    Child")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	root := topo.Root()
	if root == nil || root.ID != RootID || root.Label != "Plain Topic" {
		t.Errorf("Root() = %+v, want central/Plain Topic", root)
	}
}

func TestParse_RelativeDepth(t *testing.T) {
	// The root sits at four spaces; depths are measured from there.
	topo, err := Parse("mindmap\n    root((A))\n      B\n        C\n          D")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	kinds := []Kind{KindRoot, KindPrimary, KindSecondary, KindSecondary}
	for i, want := range kinds {
		if got := topo.Nodes[i].Kind; got != want {
			t.Errorf("Nodes[%d].Kind = %v, want %v", i, got, want)
		}
	}
}

func TestParse_StackPopsToSibling(t *testing.T) {
	input := strings.Join([]string{
		"mindmap",
		"  root((R))",
		"    A",
		"      A1",
		"        A1x",
		"    B",
		"      B1",
	}, "\n")
	topo, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	parents := map[string]string{}
	for _, e := range topo.Edges {
		parents[e.Target] = e.Source
	}
	want := map[string]string{
		"a_1":   "central",
		"a1_2":  "a_1",
		"a1x_3": "a1_2",
		"b_4":   "central",
		"b1_5":  "b_4",
	}
	for child, parent := range want {
		if parents[child] != parent {
			t.Errorf("parent(%s) = %q, want %q", child, parents[child], parent)
		}
	}
}

func TestParse_EmptyLabelsDropped(t *testing.T) {
	topo, err := Parse("mindmap\n  root((A))\n    ()\n    []\n    B")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(topo.Nodes) != 2 {
		t.Fatalf("len(Nodes) = %d, want 2", len(topo.Nodes))
	}
	if len(topo.Edges) != 1 {
		t.Errorf("len(Edges) = %d, want 1", len(topo.Edges))
	}
	if got := topo.Nodes[1].ID; got != "b_3" {
		t.Errorf("Nodes[1].ID = %q, want %q", got, "b_3")
	}
}

func TestParse_ShallowerLineAttachesToRoot(t *testing.T) {
	topo, err := Parse("mindmap\n    root((A))\n  Stray\n      Child")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(topo.Edges) != 2 {
		t.Fatalf("len(Edges) = %d, want 2", len(topo.Edges))
	}
	if e := topo.Edges[0]; e.Source != RootID || e.Target != "stray_1" {
		t.Errorf("Edges[0] = %+v, want central -> stray_1", e)
	}
	if got := topo.Nodes[1].Kind; got != KindPrimary {
		t.Errorf("Stray kind = %v, want primary", got)
	}
	if err := topo.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestParse_Icons(t *testing.T) {
	topo, err := Parse("mindmap\n  root((A))\n    B\n      ::icon(fa fa-book)\n    C")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(topo.Nodes) != 3 {
		t.Fatalf("len(Nodes) = %d, want 3", len(topo.Nodes))
	}
	if got := topo.Nodes[1].Icon; got != "fa fa-book" {
		t.Errorf("Nodes[1].Icon = %q, want %q", got, "fa fa-book")
	}
}

func TestParse_DuplicateLabelsGetDistinctIDs(t *testing.T) {
	topo, err := Parse("mindmap\n  root((A))\n    Same\n    Same")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if topo.Nodes[1].ID == topo.Nodes[2].ID {
		t.Errorf("duplicate ids %q", topo.Nodes[1].ID)
	}
	if err := topo.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestCleanLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"((Stadium))", "Stadium"},
		{"(Rounded)", "Rounded"},
		{"[Square]", "Square"},
		{"{Diamond}", "Diamond"},
		{")Bang(", "Bang"},
		{"root((Topic))", "Topic"},
		{"root(Topic)", "Topic"},
		{"root[Topic]", "Topic"},
		{"root", "Root"},
		{"ROOT", "Root"},
		{"id1[Labelled]", "Labelled"},
		{"Plain text", "Plain text"},
		{"Functions (Python)", "Functions (Python)"},
		{"((unbalanced)", "((unbalanced)"},
		{"[ padded ]", "padded"},
		{"()", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := cleanLabel(tt.in); got != tt.want {
				t.Errorf("cleanLabel(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSlugID(t *testing.T) {
	tests := []struct {
		label string
		index int
		want  string
	}{
		{"Data Types", 1, "data_types_1"},
		{"  C++ & Rust!  ", 4, "c_rust_4"},
		{"A very long label that keeps going", 7, "a_very_long_label_th_7"},
		{"!!!", 3, "node_3"},
		{"日本語", 2, "node_2"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := slugID(tt.label, tt.index); got != tt.want {
				t.Errorf("slugID(%q, %d) = %q, want %q", tt.label, tt.index, got, tt.want)
			}
		})
	}
}

func TestIndentLevel(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{"A", 0},
		{" A", 0},
		{"  A", 1},
		{"   A", 1},
		{"    A", 2},
		{"\tA", 1},
		{"\t  A", 2},
	}
	for _, tt := range tests {
		if got := indentLevel(tt.line); got != tt.want {
			t.Errorf("indentLevel(%q) = %d, want %d", tt.line, got, tt.want)
		}
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"valid", "mindmap\n  root((A))", true},
		{"no declaration", "root((A))", false},
		{"only empty labels", "mindmap\n  ()\n  []", false},
		{"nothing after declaration", "mindmap", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.input); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}
