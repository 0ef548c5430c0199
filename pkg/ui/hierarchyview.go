package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/compomics/ols-dialog/pkg/hierarchy"
)

// HierarchyViewModel shows a term hierarchy graph. The graph is drawn
// with the root at the top, so the view opens scrolled to the bottom
// where the selected term is.
type HierarchyViewModel struct {
	graph    *hierarchy.Graph
	viewport viewport.Model
	theme    Theme
	keys     KeyMap
	status   string
	closed   bool
}

// NewHierarchyView lays out the graph for a screen of the given size.
func NewHierarchyView(graph *hierarchy.Graph, theme Theme, keys KeyMap, width, height int) HierarchyViewModel {
	m := HierarchyViewModel{graph: graph, theme: theme, keys: keys}
	m.SetSize(width, height)
	return m
}

// SetSize re-renders the graph for a new screen size.
func (m *HierarchyViewModel) SetSize(width, height int) {
	// The window limits cap the width; the terminal may be narrower still.
	w, _ := m.graph.Size()
	maxCols := w
	if limit := width - 8; maxCols > limit {
		maxCols = limit
	}
	if maxCols < 10 {
		maxCols = 10
	}
	rows := height - 10
	if rows < 3 {
		rows = 3
	}

	lines := hierarchy.RenderWith(m.theme.Renderer, m.graph.Image, maxCols)
	m.viewport = viewport.New(maxCols, rows)
	m.viewport.SetContent(strings.Join(lines, "\n"))
	m.viewport.GotoBottom()
}

// Update handles input
func (m HierarchyViewModel) Update(msg tea.Msg) (HierarchyViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		if msg.err != nil {
			m.status = "save failed: " + msg.err.Error()
		} else {
			m.status = "saved " + msg.path
		}
		return m, nil
	case tea.KeyMsg:
		switch {
		case msg.String() == "esc" || msg.String() == "q":
			m.closed = true
			return m, nil
		case msg.String() == "s":
			return m, saveGraphCmd(m.graph, graphFileName(m.graph.TermID))
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// IsClosed returns true once the viewer was dismissed
func (m HierarchyViewModel) IsClosed() bool {
	return m.closed
}

// View renders the viewer
func (m HierarchyViewModel) View() string {
	t := m.theme
	var b strings.Builder
	b.WriteString(t.Renderer.NewStyle().Bold(true).Foreground(t.Primary).Render(m.graph.Title()))
	b.WriteString("\n")
	b.WriteString(t.Renderer.NewStyle().Foreground(t.Subtext).Render(truncate(m.graph.TermName, m.viewport.Width)))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n\n")
	hint := fmt.Sprintf("[↑/↓ scroll  s save png  Esc close]  %3.f%%", m.viewport.ScrollPercent()*100)
	b.WriteString(t.Renderer.NewStyle().Faint(true).Render(hint))
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(t.Renderer.NewStyle().Foreground(t.Success).Render(m.status))
	}
	return t.Modal(t.Primary).Render(b.String())
}

// graphFileName turns a term ID into a file name, e.g. GO_0008150.png.
func graphFileName(termID string) string {
	r := strings.NewReplacer(":", "_", "/", "_", " ", "_")
	return r.Replace(termID) + ".png"
}
