package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/kobex777/anymaps/pkg/store"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// MapListModel - Interactive map selection
// =============================================================================

// MapListModel is the bubbletea model for interactive map selection.
type MapListModel struct {
	Maps     []store.Map
	Cursor   int
	Selected *store.Map
	Height   int
	Offset   int
}

// NewMapListModel creates a new map list model.
func NewMapListModel(maps []store.Map) MapListModel {
	return MapListModel{Maps: maps, Height: 15}
}

func (m MapListModel) Init() tea.Cmd {
	return nil
}

func (m MapListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Maps)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Maps) == 0 {
				return m, tea.Quit
			}
			sel := m.Maps[m.Cursor]
			m.Selected = &sel
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m MapListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Map"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Maps))
	var rows [][]string
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, append([]string{cursor}, mapRow(m.Maps[i])...))
	}

	t := mapTable(rows, func(row int) bool { return m.Offset+row == m.Cursor }, "", "Title", "Updated", "Map")
	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Maps))))

	return b.String()
}

// mapRow returns the title, age and id columns of a map.
func mapRow(mp store.Map) []string {
	title := mp.Title
	if title == "" {
		title = "Untitled"
	}
	return []string{title, formatRelativeTime(mp.UpdatedAt), mp.ID}
}

// mapTable builds the bordered map table shared by the list command and the
// picker. current reports whether a body row is highlighted.
func mapTable(rows [][]string, current func(row int) bool, headers ...string) *table.Table {
	idCol := len(headers) - 1
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return listHeaderStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if col == idCol {
				base = base.Foreground(colorDim)
			}
			if current != nil && current(row) {
				return base.Foreground(colorCyan).Bold(true)
			}
			return base
		})
}
