package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ChoiceDelegate renders one ontology per line, marking the current one.
type ChoiceDelegate struct {
	Theme   Theme
	Current int // index of the choice in use when the picker opened
}

func (d ChoiceDelegate) Height() int {
	return 1
}

func (d ChoiceDelegate) Spacing() int {
	return 0
}

func (d ChoiceDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

func (d ChoiceDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(ChoiceItem)
	if !ok {
		return
	}
	t := d.Theme

	marker := "  "
	if i.Index == d.Current {
		marker = "● "
	}
	markerStyle := t.Renderer.NewStyle().Foreground(t.Success)

	keyWidth := 0
	key := ""
	if i.Choice.Key != "" {
		key = t.Renderer.NewStyle().Foreground(t.Muted).Render(" " + i.Choice.Key)
		keyWidth = lipgloss.Width(key)
	}

	available := m.Width() - 2 - keyWidth - 2
	if available < 10 {
		available = 10
	}
	titleStyle := t.Renderer.NewStyle().Foreground(t.Text)
	prefix := "  "
	if index == m.Index() {
		titleStyle = titleStyle.Foreground(t.Primary).Bold(true)
		prefix = "▸ "
	}

	row := lipgloss.JoinHorizontal(lipgloss.Left,
		prefix,
		markerStyle.Render(marker),
		titleStyle.Render(truncate(i.Title(), available)),
		key,
	)
	fmt.Fprint(w, row)
}
