package layout

import (
	"fmt"
	"math"
	"testing"

	errs "github.com/kobex777/anymaps/pkg/errors"
	"github.com/kobex777/anymaps/pkg/geometry"
	"github.com/kobex777/anymaps/pkg/topology"
)

func mustParse(t *testing.T, s string) *topology.Topology {
	t.Helper()
	topo, err := topology.Parse(s)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return topo
}

func TestCompute_Scenario(t *testing.T) {
	topo := mustParse(t, "mindmap\n  root((Topic))\n    Sub A\n      Leaf 1\n    Sub B")

	pos, err := Compute(topo, nil, Options{})
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}

	want := Positions{
		"central":  geometry.Pt(0, 60),
		"sub_a_1":  geometry.Pt(450, 0),
		"leaf_1_2": geometry.Pt(830, 0),
		"sub_b_3":  geometry.Pt(450, 200),
	}
	for id, p := range want {
		if got := pos[id]; got != p {
			t.Errorf("pos[%s] = %v, want %v", id, got, p)
		}
	}
}

func TestCompute_Down(t *testing.T) {
	topo := mustParse(t, "mindmap\n  root((Topic))\n    A\n    B")

	pos, err := Compute(topo, nil, Options{Direction: DirectionDown})
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	// Layers grow along y; siblings spread along x.
	if pos["a_1"].Y != 300 || pos["b_2"].Y != 300 {
		t.Errorf("child y = %v/%v, want 300", pos["a_1"].Y, pos["b_2"].Y)
	}
	if got, want := pos["b_2"].X-pos["a_1"].X, 280.0+80; got != want {
		t.Errorf("sibling gap = %v, want %v", got, want)
	}
}

func TestCompute_SingleNode(t *testing.T) {
	topo := mustParse(t, "mindmap\n  root((Alone))")
	pos, err := Compute(topo, nil, Options{})
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if got := pos[topology.RootID]; got != geometry.Pt(0, 0) {
		t.Errorf("pos = %v, want origin", got)
	}
}

func TestCompute_TallParentShiftsChildren(t *testing.T) {
	topo := mustParse(t, "mindmap\n  root((Topic))\n    Only")
	pos, err := Compute(topo, nil, Options{})
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if got := pos[topology.RootID]; got != geometry.Pt(0, 0) {
		t.Errorf("root = %v, want (0, 0)", got)
	}
	// Child is centred on the 200-high root.
	if got := pos["only_1"]; got != geometry.Pt(450, 40) {
		t.Errorf("child = %v, want (450, 40)", got)
	}
}

func TestCompute_ExplicitSizes(t *testing.T) {
	topo := mustParse(t, "mindmap\n  root((Topic))\n    A\n      A1\n    B")
	sizes := map[string]Size{"a_1": {Width: 600, Height: 400}}

	pos, err := Compute(topo, sizes, Options{})
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	// The wide primary pushes its layer's successors out.
	if got, want := pos["a1_2"].X, 450.0+600+100; got != want {
		t.Errorf("a1 x = %v, want %v", got, want)
	}
	assertNoOverlap(t, topo, pos, Sizes(topo, sizes), 80)
}

func TestCompute_Deterministic(t *testing.T) {
	topo := bigTree(60)
	first, err := Compute(topo, nil, Options{})
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	for range 5 {
		again, err := Compute(topo, nil, Options{})
		if err != nil {
			t.Fatalf("Compute() error: %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("len = %d, want %d", len(again), len(first))
		}
		for id, p := range first {
			if again[id] != p {
				t.Fatalf("pos[%s] = %v, want %v", id, again[id], p)
			}
		}
	}
}

func TestCompute_NoOverlap(t *testing.T) {
	for _, n := range []int{2, 7, 25, 80} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			topo := bigTree(n)
			for _, dir := range []Direction{DirectionRight, DirectionDown} {
				pos, err := Compute(topo, nil, Options{Direction: dir})
				if err != nil {
					t.Fatalf("Compute() error: %v", err)
				}
				assertNoOverlap(t, topo, pos, Sizes(topo, nil), 80)
			}
		})
	}
}

func TestCompute_Cycle(t *testing.T) {
	topo := &topology.Topology{
		Nodes: []topology.Node{
			{ID: "a", Kind: topology.KindRoot},
			{ID: "b", Kind: topology.KindPrimary},
			{ID: "c", Kind: topology.KindSecondary},
		},
		Edges: []topology.Edge{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "c"},
			{Source: "c", Target: "a"},
			{Source: "c", Target: "c"},
		},
	}
	pos, err := Compute(topo, nil, Options{})
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if len(pos) != 3 {
		t.Fatalf("len(pos) = %d, want 3", len(pos))
	}
	if !(pos["a"].X < pos["b"].X && pos["b"].X < pos["c"].X) {
		t.Errorf("layers not increasing: %v", pos)
	}
}

func TestCompute_ParentIsNearest(t *testing.T) {
	topo := &topology.Topology{
		Nodes: []topology.Node{
			{ID: "r", Kind: topology.KindRoot},
			{ID: "a", Kind: topology.KindPrimary},
			{ID: "b", Kind: topology.KindPrimary},
		},
		Edges: []topology.Edge{
			{Source: "r", Target: "a"},
			{Source: "a", Target: "b"},
			{Source: "r", Target: "b"},
		},
	}
	pos, err := Compute(topo, nil, Options{})
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	// b hangs off r, not a: both sit on the first layer.
	if pos["a"].X != pos["b"].X {
		t.Errorf("a.X = %v, b.X = %v, want the same layer", pos["a"].X, pos["b"].X)
	}
}

func TestCompute_ParentlessSeedsFirst(t *testing.T) {
	topo := &topology.Topology{
		Nodes: []topology.Node{
			{ID: "leaf", Kind: topology.KindSecondary},
			{ID: "top", Kind: topology.KindSecondary},
		},
		Edges: []topology.Edge{{Source: "top", Target: "leaf"}},
	}
	pos, err := Compute(topo, nil, Options{})
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if pos["top"].X != 0 || pos["leaf"].X <= pos["top"].X {
		t.Errorf("pos = %v, want top seeding the tree with leaf below it", pos)
	}
}

func TestCompute_RootlessCycle(t *testing.T) {
	topo := &topology.Topology{
		Nodes: []topology.Node{
			{ID: "x", Kind: topology.KindSecondary},
			{ID: "y", Kind: topology.KindSecondary},
		},
		Edges: []topology.Edge{{Source: "x", Target: "y"}, {Source: "y", Target: "x"}},
	}
	pos, err := Compute(topo, nil, Options{})
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if pos["x"] != geometry.Pt(0, 0) {
		t.Errorf("pos[x] = %v, want origin", pos["x"])
	}
}

func TestCompute_Disconnected(t *testing.T) {
	topo := mustParse(t, "mindmap\n  root((Topic))\n    A")
	topo.Nodes = append(topo.Nodes,
		topology.Node{ID: "island", Kind: topology.KindPrimary},
		topology.Node{ID: "reef", Kind: topology.KindSecondary},
	)
	topo.Edges = append(topo.Edges,
		topology.Edge{Source: "island", Target: "reef"},
		topology.Edge{Source: "ghost", Target: "reef"},
	)

	pos, err := Compute(topo, nil, Options{})
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if len(pos) != 4 {
		t.Fatalf("len(pos) = %d, want 4", len(pos))
	}
	if pos["island"].X != 0 {
		t.Errorf("island x = %v, want 0", pos["island"].X)
	}
	// The second tree starts below the first tree plus spacing.
	if got, want := pos["island"].Y, 200.0+80; got < want {
		t.Errorf("island y = %v, want >= %v", got, want)
	}
	assertNoOverlap(t, topo, pos, Sizes(topo, nil), 80)
}

func TestCompute_Errors(t *testing.T) {
	tests := []struct {
		name  string
		topo  *topology.Topology
		sizes map[string]Size
		opts  Options
	}{
		{"nil topology", nil, nil, Options{}},
		{"bad direction", &topology.Topology{}, nil, Options{Direction: "sideways"}},
		{"negative spacing", &topology.Topology{}, nil, Options{NodeSpacing: -1}},
		{"zero size", &topology.Topology{Nodes: []topology.Node{{ID: "a"}}}, map[string]Size{"a": {}}, Options{}},
		{"NaN size", &topology.Topology{Nodes: []topology.Node{{ID: "a"}}}, map[string]Size{"a": {Width: math.NaN(), Height: 1}}, Options{}},
		{"duplicate ids", &topology.Topology{Nodes: []topology.Node{{ID: "a"}, {ID: "a"}}}, nil, Options{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.topo, tt.sizes, tt.opts)
			if err == nil {
				t.Fatal("Compute() error = nil, want error")
			}
			if !errs.IsLayout(err) {
				t.Errorf("error code = %v, want %v", errs.GetCode(err), errs.ErrCodeLayout)
			}
		})
	}
}

func TestApply_FallsBackToPrevious(t *testing.T) {
	topo := &topology.Topology{Nodes: []topology.Node{{ID: "a"}, {ID: "b"}}}
	sizes := map[string]Size{"a": {Width: -5, Height: 10}}
	prev := Positions{"a": geometry.Pt(12, 34)}

	got := Apply(topo, sizes, prev, Options{})
	if got["a"] != geometry.Pt(12, 34) {
		t.Errorf("a = %v, want previous (12, 34)", got["a"])
	}
	if got["b"] != geometry.Pt(0, 0) {
		t.Errorf("b = %v, want origin", got["b"])
	}
}

func TestApply_Success(t *testing.T) {
	topo := mustParse(t, "mindmap\n  root((Topic))\n    A")
	got := Apply(topo, nil, Positions{"a_1": geometry.Pt(-999, -999)}, Options{})
	if got["a_1"] == geometry.Pt(-999, -999) {
		t.Error("Apply() kept the previous position despite a successful layout")
	}
}

func TestLevels(t *testing.T) {
	topo := mustParse(t, "mindmap\n  root((R))\n    A\n      A1\n        A1x\n    B")
	topo.Nodes = append(topo.Nodes, topology.Node{ID: "lonely", Kind: topology.KindPrimary})
	// A shortcut edge: levels follow graph distance, not syntax depth.
	topo.Edges = append(topo.Edges, topology.Edge{Source: "central", Target: "a1x_3"})

	want := map[string]int{
		"central": 0,
		"a_1":     1,
		"a1_2":    2,
		"a1x_3":   1,
		"b_4":     1,
		"lonely":  -1,
	}
	got := Levels(topo)
	for id, lvl := range want {
		if got[id] != lvl {
			t.Errorf("Levels()[%s] = %d, want %d", id, got[id], lvl)
		}
	}
}

func TestDefaultSize(t *testing.T) {
	if got := DefaultSize(topology.KindRoot); got != (Size{350, 200}) {
		t.Errorf("DefaultSize(root) = %v", got)
	}
	if got := DefaultSize(topology.KindSecondary); got != (Size{280, 120}) {
		t.Errorf("DefaultSize(secondary) = %v", got)
	}
	if got := DefaultSize(""); got != (Size{200, 100}) {
		t.Errorf("DefaultSize(\"\") = %v", got)
	}
}

func TestBounds(t *testing.T) {
	pos := Positions{"a": geometry.Pt(0, 60), "b": geometry.Pt(450, 0)}
	sizes := map[string]Size{"a": RootSize, "b": TopicSize}
	b := Bounds(pos, sizes)
	if b.Min != geometry.Pt(0, 0) || b.Width != 730 || b.Height != 260 {
		t.Errorf("Bounds() = %+v", b)
	}
}

// bigTree builds a deterministic, irregular tree with n nodes.
func bigTree(n int) *topology.Topology {
	topo := &topology.Topology{}
	topo.Nodes = append(topo.Nodes, topology.Node{ID: topology.RootID, Kind: topology.KindRoot})
	seed := uint32(7)
	for i := 1; i < n; i++ {
		seed = seed*1664525 + 1013904223
		parent := int(seed>>8) % i
		id := fmt.Sprintf("n%d", i)
		kind := topology.KindSecondary
		if parent == 0 {
			kind = topology.KindPrimary
		}
		topo.Nodes = append(topo.Nodes, topology.Node{ID: id, Kind: kind})
		topo.Edges = append(topo.Edges, topology.Edge{Source: topo.Nodes[parent].ID, Target: id})
	}
	return topo
}

func assertNoOverlap(t *testing.T, topo *topology.Topology, pos Positions, sizes map[string]Size, gap float64) {
	t.Helper()
	rects := make([]geometry.Rect, len(topo.Nodes))
	for i, n := range topo.Nodes {
		s := sizes[n.ID]
		// Inflate by half the gap on every side so touching means "gap apart".
		rects[i] = geometry.Rect{
			Min:    pos[n.ID].Sub(geometry.Pt(gap/2-1e-6, gap/2-1e-6)),
			Width:  s.Width + gap - 2e-6,
			Height: s.Height + gap - 2e-6,
		}
	}
	for i := range rects {
		for j := i + 1; j < len(rects); j++ {
			if rects[i].Overlaps(rects[j]) {
				t.Errorf("%s %v overlaps %s %v", topo.Nodes[i].ID, pos[topo.Nodes[i].ID], topo.Nodes[j].ID, pos[topo.Nodes[j].ID])
			}
		}
	}
}
