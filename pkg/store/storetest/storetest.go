// Package storetest provides a conformance suite for store.Store backends.
package storetest

import (
	"context"
	"testing"
	"time"

	errs "github.com/kobex777/anymaps/pkg/errors"
	"github.com/kobex777/anymaps/pkg/geometry"
	"github.com/kobex777/anymaps/pkg/graph"
	"github.com/kobex777/anymaps/pkg/layout"
	"github.com/kobex777/anymaps/pkg/store"
	"github.com/kobex777/anymaps/pkg/topology"
)

// Run exercises every Store operation against stores built by newStore.
// Each subtest gets its own store and uses a unique owner so backends that
// share state between calls do not interfere.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Helper()
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store, owner string)
	}{
		{"CreateAndGet", testCreateAndGet},
		{"GetMissing", testGetMissing},
		{"UpdateTitle", testUpdateTitle},
		{"VersionRoundTrip", testVersionRoundTrip},
		{"LatestVersion", testLatestVersion},
		{"SaveVersionMissingMap", testSaveVersionMissingMap},
		{"ListMapsOrder", testListMapsOrder},
		{"DeleteMap", testDeleteMap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { s.Close() })
			tt.fn(t, s, "owner-"+store.NewID())
		})
	}
}

// SampleContent returns a small content payload with a resized node and an
// edge carrying a control point.
func SampleContent() store.Content {
	cp := geometry.Pt(400, 20)
	return store.Content{
		Nodes: []graph.Node{
			{ID: "central", Kind: topology.KindRoot, Label: "Jazz", Position: geometry.Pt(0, 60)},
			{ID: "bebop_1", Kind: topology.KindPrimary, Label: "Bebop", Position: geometry.Pt(450, 0),
				Size: &layout.Size{Width: 300, Height: 140}},
		},
		Edges: []graph.Edge{
			{ID: "edge-0", Source: "central", Target: "bebop_1", Style: topology.StyleDashed, ControlPoint: &cp},
		},
		Spec: &topology.Spec{
			Title: "Jazz",
			Nodes: []topology.NodeSpec{{ID: "central", Label: "Jazz", Type: "central"}, {ID: "bebop_1", Label: "Bebop", Type: "primary"}},
			Edges: []topology.EdgeSpec{{Source: "central", Target: "bebop_1", Style: topology.StyleDashed}},
		},
		ChatLog: []store.ChatEntry{
			{ID: "c1", Role: store.RoleUser, Content: "jazz", CreatedAt: time.Unix(1700000000, 0).UTC()},
		},
	}
}

func testCreateAndGet(t *testing.T, s store.Store, owner string) {
	ctx := context.Background()
	m, err := s.CreateMap(ctx, owner, "First")
	if err != nil {
		t.Fatalf("CreateMap() error: %v", err)
	}
	if m.ID == "" || m.Owner != owner || m.Title != "First" {
		t.Errorf("CreateMap() = %+v", m)
	}
	if m.CreatedAt.IsZero() || !m.CreatedAt.Equal(m.UpdatedAt) {
		t.Errorf("CreateMap() timestamps = %v, %v", m.CreatedAt, m.UpdatedAt)
	}

	got, err := s.GetMap(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetMap() error: %v", err)
	}
	if got == nil || got.ID != m.ID || got.Title != "First" || got.Owner != owner {
		t.Errorf("GetMap() = %+v, want %+v", got, m)
	}
}

func testGetMissing(t *testing.T, s store.Store, owner string) {
	ctx := context.Background()
	got, err := s.GetMap(ctx, store.NewID())
	if err != nil || got != nil {
		t.Errorf("GetMap(missing) = %v, %v, want nil, nil", got, err)
	}
	v, err := s.LatestVersion(ctx, store.NewID())
	if err != nil || v != nil {
		t.Errorf("LatestVersion(missing) = %v, %v, want nil, nil", v, err)
	}
	if err := s.UpdateTitle(ctx, store.NewID(), "x"); !errs.Is(err, errs.ErrCodeMapNotFound) {
		t.Errorf("UpdateTitle(missing) error = %v, want MAP_NOT_FOUND", err)
	}
}

func testUpdateTitle(t *testing.T, s store.Store, owner string) {
	ctx := context.Background()
	m, _ := s.CreateMap(ctx, owner, "Old")
	time.Sleep(2 * time.Millisecond)
	if err := s.UpdateTitle(ctx, m.ID, "New"); err != nil {
		t.Fatalf("UpdateTitle() error: %v", err)
	}
	got, _ := s.GetMap(ctx, m.ID)
	if got.Title != "New" {
		t.Errorf("Title = %q, want New", got.Title)
	}
	if !got.UpdatedAt.After(m.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want after %v", got.UpdatedAt, m.UpdatedAt)
	}
}

func testVersionRoundTrip(t *testing.T, s store.Store, owner string) {
	ctx := context.Background()
	m, _ := s.CreateMap(ctx, owner, "Jazz")
	want := SampleContent()

	v, err := s.SaveVersion(ctx, m.ID, want, "mindmap\n  root((Jazz))\n    Bebop")
	if err != nil {
		t.Fatalf("SaveVersion() error: %v", err)
	}
	if v.Number != 1 || v.MapID != m.ID {
		t.Errorf("SaveVersion() = number %d map %s", v.Number, v.MapID)
	}

	got, err := s.LatestVersion(ctx, m.ID)
	if err != nil || got == nil {
		t.Fatalf("LatestVersion() = %v, %v", got, err)
	}
	if got.ID != v.ID || got.Syntax != v.Syntax {
		t.Errorf("LatestVersion() = %s %q, want %s %q", got.ID, got.Syntax, v.ID, v.Syntax)
	}
	c := got.Content
	if len(c.Nodes) != 2 || len(c.Edges) != 1 {
		t.Fatalf("content = %d nodes, %d edges, want 2, 1", len(c.Nodes), len(c.Edges))
	}
	if sz := c.Nodes[1].Size; sz == nil || *sz != *want.Nodes[1].Size {
		t.Errorf("node size = %v, want %v", sz, want.Nodes[1].Size)
	}
	if c.Nodes[0].Size != nil {
		t.Errorf("unsized node came back with size %v", c.Nodes[0].Size)
	}
	if cp := c.Edges[0].ControlPoint; cp == nil || *cp != *want.Edges[0].ControlPoint {
		t.Errorf("control point = %v, want %v", cp, want.Edges[0].ControlPoint)
	}
	if c.Edges[0].Style != topology.StyleDashed {
		t.Errorf("edge style = %q, want dashed", c.Edges[0].Style)
	}
	if c.Spec == nil || c.Spec.Title != "Jazz" || len(c.Spec.Nodes) != 2 {
		t.Errorf("spec = %+v", c.Spec)
	}
	if len(c.ChatLog) != 1 || c.ChatLog[0].Content != "jazz" {
		t.Errorf("chat log = %+v", c.ChatLog)
	}
}

func testLatestVersion(t *testing.T, s store.Store, owner string) {
	ctx := context.Background()
	m, _ := s.CreateMap(ctx, owner, "Map")
	for i := range 3 {
		c := SampleContent()
		c.Nodes[0].Label = []string{"one", "two", "three"}[i]
		if _, err := s.SaveVersion(ctx, m.ID, c, ""); err != nil {
			t.Fatalf("SaveVersion(%d) error: %v", i, err)
		}
	}
	got, err := s.LatestVersion(ctx, m.ID)
	if err != nil {
		t.Fatalf("LatestVersion() error: %v", err)
	}
	if got.Number != 3 || got.Content.Nodes[0].Label != "three" {
		t.Errorf("LatestVersion() = #%d %q, want #3 three", got.Number, got.Content.Nodes[0].Label)
	}
}

func testSaveVersionMissingMap(t *testing.T, s store.Store, owner string) {
	_, err := s.SaveVersion(context.Background(), store.NewID(), SampleContent(), "")
	if !errs.Is(err, errs.ErrCodeMapNotFound) {
		t.Errorf("SaveVersion(missing) error = %v, want MAP_NOT_FOUND", err)
	}
}

func testListMapsOrder(t *testing.T, s store.Store, owner string) {
	ctx := context.Background()
	a, _ := s.CreateMap(ctx, owner, "A")
	time.Sleep(2 * time.Millisecond)
	b, _ := s.CreateMap(ctx, owner, "B")
	time.Sleep(2 * time.Millisecond)
	if _, err := s.CreateMap(ctx, owner+"-other", "C"); err != nil {
		t.Fatalf("CreateMap() error: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, err := s.SaveVersion(ctx, a.ID, SampleContent(), ""); err != nil {
		t.Fatalf("SaveVersion() error: %v", err)
	}

	maps, err := s.ListMaps(ctx, owner)
	if err != nil {
		t.Fatalf("ListMaps() error: %v", err)
	}
	if len(maps) != 2 {
		t.Fatalf("ListMaps() = %d maps, want 2", len(maps))
	}
	if maps[0].ID != a.ID || maps[1].ID != b.ID {
		t.Errorf("ListMaps() order = [%s %s], want [A B]", maps[0].Title, maps[1].Title)
	}
}

func testDeleteMap(t *testing.T, s store.Store, owner string) {
	ctx := context.Background()
	m, _ := s.CreateMap(ctx, owner, "Doomed")
	if _, err := s.SaveVersion(ctx, m.ID, SampleContent(), ""); err != nil {
		t.Fatalf("SaveVersion() error: %v", err)
	}
	if err := s.DeleteMap(ctx, m.ID); err != nil {
		t.Fatalf("DeleteMap() error: %v", err)
	}
	if got, _ := s.GetMap(ctx, m.ID); got != nil {
		t.Errorf("GetMap() after delete = %+v, want nil", got)
	}
	if v, _ := s.LatestVersion(ctx, m.ID); v != nil {
		t.Errorf("LatestVersion() after delete = %+v, want nil", v)
	}
	if maps, _ := s.ListMaps(ctx, owner); len(maps) != 0 {
		t.Errorf("ListMaps() after delete = %v, want empty", maps)
	}
	if err := s.DeleteMap(ctx, m.ID); !errs.Is(err, errs.ErrCodeMapNotFound) {
		t.Errorf("second DeleteMap() error = %v, want MAP_NOT_FOUND", err)
	}
}
