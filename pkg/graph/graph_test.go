package graph

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	errs "github.com/kobex777/anymaps/pkg/errors"
	"github.com/kobex777/anymaps/pkg/geometry"
	"github.com/kobex777/anymaps/pkg/layout"
	"github.com/kobex777/anymaps/pkg/topology"
)

func scenario(t *testing.T) Graph {
	t.Helper()
	topo, err := topology.Parse("mindmap\n  root((Topic))\n    Sub A\n      Leaf 1\n    Sub B")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	pos, err := layout.Compute(topo, nil, layout.Options{})
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	return Build(topo, pos, nil)
}

func TestBuild(t *testing.T) {
	g := scenario(t)

	if len(g.Nodes) != 4 || len(g.Edges) != 3 {
		t.Fatalf("Build() = %d nodes, %d edges, want 4, 3", len(g.Nodes), len(g.Edges))
	}
	root := g.Node("central")
	if root == nil {
		t.Fatal("root node missing")
	}
	if root.Kind != topology.KindRoot || root.Label != "Topic" {
		t.Errorf("root = %+v", root)
	}
	if root.Position != geometry.Pt(0, 60) {
		t.Errorf("root.Position = %v, want (0, 60)", root.Position)
	}
	for _, n := range g.Nodes {
		if n.Size != nil {
			t.Errorf("node %s has a manual size after Build", n.ID)
		}
	}
	for _, e := range g.Edges {
		if e.ControlPoint != nil {
			t.Errorf("edge %s has a control point after Build", e.ID)
		}
		if e.Style != topology.StyleSolid {
			t.Errorf("edge %s style = %q, want solid", e.ID, e.Style)
		}
	}
}

func TestBuild_StylesFromSpec(t *testing.T) {
	spec := &topology.Spec{
		Title: "T",
		Nodes: []topology.NodeSpec{{ID: "a", Label: "A", Type: "central"}, {ID: "b", Label: "B"}},
		Edges: []topology.EdgeSpec{{Source: "a", Target: "b", Style: topology.StyleDashed}},
	}
	topo := topology.Normalize(spec)
	g := Build(topo, layout.Positions{}, spec)
	if got := g.Edges[0].Style; got != topology.StyleDashed {
		t.Errorf("Style = %q, want dashed", got)
	}
	if got := g.Node("b").Position; got != (geometry.Point{}) {
		t.Errorf("missing position = %v, want origin", got)
	}
}

func TestTopologyProjection(t *testing.T) {
	g := scenario(t)
	topo := g.Topology()
	if len(topo.Nodes) != len(g.Nodes) || len(topo.Edges) != len(g.Edges) {
		t.Fatalf("Topology() sizes mismatch")
	}
	for i, n := range topo.Nodes {
		if n.ID != g.Nodes[i].ID || n.Label != g.Nodes[i].Label || n.Kind != g.Nodes[i].Kind {
			t.Errorf("node %d = %+v, want %+v", i, n, g.Nodes[i])
		}
	}
}

func TestCurve_Anchors(t *testing.T) {
	g := scenario(t)
	e := g.EdgeByPair("central", "sub_a_1")
	if e == nil {
		t.Fatal("edge central -> sub_a_1 missing")
	}

	c, err := g.Curve(e.ID)
	if err != nil {
		t.Fatalf("Curve() error: %v", err)
	}
	// Root box 350x200 at (0,60); topic box 280x120 at (450,0).
	if c.P0 != geometry.Pt(350, 160) {
		t.Errorf("P0 = %v, want (350, 160)", c.P0)
	}
	if c.P2 != geometry.Pt(450, 60) {
		t.Errorf("P2 = %v, want (450, 60)", c.P2)
	}
	if c.P1 != geometry.DefaultControl(c.P0, c.P2) {
		t.Errorf("P1 = %v, want default control", c.P1)
	}

	cp := geometry.Pt(400, -50)
	if err := g.SetControlPoint(e.ID, &cp); err != nil {
		t.Fatalf("SetControlPoint() error: %v", err)
	}
	c, _ = g.Curve(e.ID)
	if c.P1 != cp {
		t.Errorf("P1 = %v, want %v", c.P1, cp)
	}
}

func TestCurve_DirectionPicksSides(t *testing.T) {
	// Root box 350x200 at (0,60); topic box 280x120 at (450,0).
	tests := []struct {
		dir    layout.Direction
		p0, p2 geometry.Point
	}{
		{"", geometry.Pt(350, 160), geometry.Pt(450, 60)},
		{layout.DirectionRight, geometry.Pt(350, 160), geometry.Pt(450, 60)},
		{layout.DirectionDown, geometry.Pt(175, 260), geometry.Pt(590, 0)},
	}
	for _, tt := range tests {
		t.Run(string(tt.dir), func(t *testing.T) {
			g := scenario(t)
			g.Direction = tt.dir
			e := g.EdgeByPair("central", "sub_a_1")
			c, err := g.Curve(e.ID)
			if err != nil {
				t.Fatalf("Curve() error: %v", err)
			}
			if c.P0 != tt.p0 || c.P2 != tt.p2 {
				t.Errorf("Curve() = %v -> %v, want %v -> %v", c.P0, c.P2, tt.p0, tt.p2)
			}
			if clone := g.Clone(); clone.Direction != tt.dir {
				t.Errorf("Clone().Direction = %q, want %q", clone.Direction, tt.dir)
			}
		})
	}
}

func TestCurve_FollowsResize(t *testing.T) {
	g := scenario(t)
	e := g.EdgeByPair("central", "sub_a_1")
	if err := g.Resize("central", layout.Size{Width: 100, Height: 40}); err != nil {
		t.Fatalf("Resize() error: %v", err)
	}
	c, _ := g.Curve(e.ID)
	if c.P0 != geometry.Pt(100, 80) {
		t.Errorf("P0 = %v, want (100, 80)", c.P0)
	}
}

func TestBeginDrag(t *testing.T) {
	g := scenario(t)
	e := g.EdgeByPair("central", "sub_b_3")

	d, err := g.BeginDrag(e.ID)
	if err != nil {
		t.Fatalf("BeginDrag() error: %v", err)
	}
	d.Move(geometry.Pt(400, 300))
	cp := d.Commit()
	if err := g.SetControlPoint(e.ID, &cp); err != nil {
		t.Fatalf("SetControlPoint() error: %v", err)
	}
	c, _ := g.Curve(e.ID)
	if !c.Midpoint().Equals(geometry.Pt(400, 300), geometry.Epsilon) {
		t.Errorf("Midpoint() = %v, want (400, 300)", c.Midpoint())
	}
}

func TestEdits(t *testing.T) {
	g := scenario(t)

	n, err := g.AddNode(Node{Label: "New", Position: geometry.Pt(10, 10)})
	if err != nil {
		t.Fatalf("AddNode() error: %v", err)
	}
	if !strings.HasPrefix(n.ID, "node-") {
		t.Errorf("AddNode() id = %q, want node- prefix", n.ID)
	}
	if n.Kind != topology.KindSecondary {
		t.Errorf("AddNode() kind = %q, want secondary", n.Kind)
	}

	e, err := g.Connect("central", n.ID, "")
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	if _, err := g.Connect("central", n.ID, ""); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("duplicate Connect() error = %v, want INVALID_INPUT", err)
	}
	if _, err := g.Connect(n.ID, n.ID, ""); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("self Connect() error = %v, want INVALID_INPUT", err)
	}

	label := "Renamed"
	if err := g.UpdateNode(n.ID, NodePatch{Label: &label}); err != nil {
		t.Fatalf("UpdateNode() error: %v", err)
	}
	if got := g.Node(n.ID).Label; got != label {
		t.Errorf("Label = %q, want %q", got, label)
	}
	empty := " "
	if err := g.UpdateNode(n.ID, NodePatch{Label: &empty}); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("UpdateNode(blank) error = %v, want INVALID_INPUT", err)
	}

	cp := geometry.Pt(1, 2)
	_ = g.SetControlPoint(e.ID, &cp)
	if err := g.Reconnect(e.ID, "sub_a_1", n.ID); err != nil {
		t.Fatalf("Reconnect() error: %v", err)
	}
	if got := g.Edge(e.ID); got.Source != "sub_a_1" || got.ControlPoint != nil {
		t.Errorf("Reconnect() edge = %+v, want source sub_a_1 and no control point", got)
	}

	removed, err := g.RemoveNode("sub_a_1")
	if err != nil {
		t.Fatalf("RemoveNode() error: %v", err)
	}
	if removed != 3 {
		t.Errorf("RemoveNode() removed %d edges, want 3", removed)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() after edits: %v", err)
	}

	if err := g.Disconnect("edge_2"); err != nil {
		t.Fatalf("Disconnect() error: %v", err)
	}
	if len(g.Edges) != 0 {
		t.Errorf("Edges = %v, want none", g.Edges)
	}
}

func TestEdits_NotFound(t *testing.T) {
	g := scenario(t)
	checks := map[string]error{
		"UpdateNode":      g.UpdateNode("missing", NodePatch{}),
		"Disconnect":      g.Disconnect("missing"),
		"Reconnect":       g.Reconnect("missing", "central", "sub_a_1"),
		"Resize":          g.Resize("missing", layout.Size{Width: 1, Height: 1}),
		"Move":            g.Move("missing", geometry.Pt(0, 0)),
		"SetControlPoint": g.SetControlPoint("missing", nil),
	}
	for name, err := range checks {
		if !errs.Is(err, errs.ErrCodeNotFound) {
			t.Errorf("%s() error = %v, want NOT_FOUND", name, err)
		}
	}
	if _, err := g.RemoveNode("missing"); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("RemoveNode() error = %v, want NOT_FOUND", err)
	}
}

func kindPtr(k topology.Kind) *topology.Kind { return &k }

func TestEdits_Kinds(t *testing.T) {
	tests := []struct {
		name string
		edit func(g *Graph) error
		ok   bool
	}{
		{"AddPrimary", func(g *Graph) error {
			_, err := g.AddNode(Node{Label: "New", Kind: topology.KindPrimary})
			return err
		}, true},
		{"AddUnknownKind", func(g *Graph) error {
			_, err := g.AddNode(Node{Label: "New", Kind: "banana"})
			return err
		}, false},
		{"AddSecondRoot", func(g *Graph) error {
			_, err := g.AddNode(Node{Label: "New", Kind: topology.KindRoot})
			return err
		}, false},
		{"PatchUnknownKind", func(g *Graph) error {
			return g.UpdateNode("sub_a_1", NodePatch{Kind: kindPtr("bogus")})
		}, false},
		{"PatchToSecondRoot", func(g *Graph) error {
			return g.UpdateNode("sub_a_1", NodePatch{Kind: kindPtr(topology.KindRoot)})
		}, false},
		{"DemoteRoot", func(g *Graph) error {
			return g.UpdateNode("central", NodePatch{Kind: kindPtr(topology.KindSecondary)})
		}, false},
		{"RootKeepsKind", func(g *Graph) error {
			return g.UpdateNode("central", NodePatch{Kind: kindPtr(topology.KindRoot)})
		}, true},
		{"PromoteSecondary", func(g *Graph) error {
			return g.UpdateNode("leaf_1_2", NodePatch{Kind: kindPtr(topology.KindPrimary)})
		}, true},
		{"PromoteWithoutRoot", func(g *Graph) error {
			if _, err := g.RemoveNode("central"); err != nil {
				return err
			}
			return g.UpdateNode("sub_a_1", NodePatch{Kind: kindPtr(topology.KindRoot)})
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := scenario(t)
			err := tt.edit(&g)
			if tt.ok && err != nil {
				t.Fatalf("edit error = %v, want nil", err)
			}
			if !tt.ok && !errs.Is(err, errs.ErrCodeInvalidInput) {
				t.Fatalf("edit error = %v, want INVALID_INPUT", err)
			}
			if err := g.Validate(); err != nil {
				t.Errorf("Validate() after edit: %v", err)
			}
		})
	}
}

func TestUpdateNode_RejectedPatchChangesNothing(t *testing.T) {
	g := scenario(t)
	label := "Renamed"
	err := g.UpdateNode("central", NodePatch{Label: &label, Kind: kindPtr(topology.KindPrimary)})
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Fatalf("UpdateNode() error = %v, want INVALID_INPUT", err)
	}
	if got := g.Node("central"); got.Label != "Topic" || got.Kind != topology.KindRoot {
		t.Errorf("central = %q/%s, want Topic/root", got.Label, got.Kind)
	}
}

func TestResize_RejectsInvalid(t *testing.T) {
	g := scenario(t)
	if err := g.Resize("central", layout.Size{Width: 0, Height: 10}); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("Resize() error = %v, want INVALID_INPUT", err)
	}
}

func TestClone_IsDeep(t *testing.T) {
	g := scenario(t)
	_ = g.Resize("central", layout.Size{Width: 10, Height: 10})
	cp := geometry.Pt(5, 5)
	_ = g.SetControlPoint("edge_0", &cp)

	c := g.Clone()
	c.Node("central").Size.Width = 99
	c.Edge("edge_0").ControlPoint.X = 99

	if g.Node("central").Size.Width != 10 {
		t.Error("Clone shares node size")
	}
	if g.Edge("edge_0").ControlPoint.X != 5 {
		t.Error("Clone shares control point")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		g    Graph
		ok   bool
	}{
		{"Empty", Graph{}, true},
		{"DuplicateNode", Graph{Nodes: []Node{{ID: "a"}, {ID: "a"}}}, false},
		{"EmptyID", Graph{Nodes: []Node{{ID: ""}}}, false},
		{"DanglingEdge", Graph{Nodes: []Node{{ID: "a"}}, Edges: []Edge{{ID: "e", Source: "a", Target: "b"}}}, false},
		{"UnknownKind", Graph{Nodes: []Node{{ID: "a", Kind: "banana"}}}, false},
		{"TwoRoots", Graph{Nodes: []Node{{ID: "a", Kind: topology.KindRoot}, {ID: "b", Kind: topology.KindRoot}}}, false},
		{"DuplicateEdge", Graph{
			Nodes: []Node{{ID: "a"}, {ID: "b"}},
			Edges: []Edge{{ID: "e", Source: "a", Target: "b"}, {ID: "e", Source: "b", Target: "a"}},
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.g.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() error = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	g := scenario(t)
	_ = g.Resize("sub_b_3", layout.Size{Width: 300, Height: 150})
	cp := geometry.Pt(420, 250)
	_ = g.SetControlPoint("edge_2", &cp)

	data, err := Marshal(g)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if !bytes.Contains(data, []byte(`"controlPoint"`)) {
		t.Errorf("Marshal() output lacks controlPoint: %s", data)
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if s := got.Node("sub_b_3").Size; s == nil || s.Width != 300 {
		t.Errorf("size lost: %v", s)
	}
	if p := got.Edge("edge_2").ControlPoint; p == nil || *p != cp {
		t.Errorf("control point lost: %v", p)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.json")

	if err := WriteFile(scenario(t), path); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	g, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if len(g.Nodes) != 4 {
		t.Errorf("ReadFile() nodes = %d, want 4", len(g.Nodes))
	}

	if _, err := ReadFile(filepath.Join(dir, "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadFile(missing) error = %v, want not-exist", err)
	}

	bad := filepath.Join(dir, "bad.json")
	_ = os.WriteFile(bad, []byte("{"), 0o600)
	if _, err := ReadFile(bad); !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("ReadFile(bad) error = %v, want INVALID_FORMAT", err)
	}
}
