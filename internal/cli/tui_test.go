package cli

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kobex777/anymaps/pkg/store"
)

func testMaps(n int) []store.Map {
	maps := make([]store.Map, n)
	for i := range maps {
		maps[i] = store.Map{ID: store.NewID(), Title: "Map " + string(rune('A'+i)), UpdatedAt: time.Now()}
	}
	return maps
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMapListModel_Navigation(t *testing.T) {
	maps := testMaps(3)
	var m tea.Model = NewMapListModel(maps)

	for _, k := range []string{"down", "j", "j", "k"} {
		m, _ = m.Update(key(k))
	}
	if got := m.(MapListModel).Cursor; got != 1 {
		t.Errorf("Cursor = %d, want 1", got)
	}

	m, cmd := m.Update(key("enter"))
	if cmd == nil {
		t.Error("enter did not quit")
	}
	sel := m.(MapListModel).Selected
	if sel == nil || sel.ID != maps[1].ID {
		t.Errorf("Selected = %v, want %s", sel, maps[1].ID)
	}
}

func TestMapListModel_QuitWithoutSelection(t *testing.T) {
	var m tea.Model = NewMapListModel(testMaps(2))
	m, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Error("q did not quit")
	}
	if m.(MapListModel).Selected != nil {
		t.Error("q selected a map")
	}
}

func TestMapListModel_Scrolls(t *testing.T) {
	var m tea.Model = NewMapListModel(testMaps(10))
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 3})
	if got := m.(MapListModel).Height; got != 5 {
		t.Fatalf("Height = %d, want 5", got)
	}
	for range 6 {
		m, _ = m.Update(key("down"))
	}
	if got := m.(MapListModel).Offset; got != 2 {
		t.Errorf("Offset = %d, want 2", got)
	}
}

func TestMapListModel_View(t *testing.T) {
	maps := testMaps(2)
	maps[1].Title = ""
	view := NewMapListModel(maps).View()
	for _, want := range []string{"Select Map", "Map A", "Untitled", "[1/2]"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}
