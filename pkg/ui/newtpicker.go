package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/compomics/ols-dialog/pkg/newt"
)

const newtPickerRows = 10

// NewtPickerModel offers the most common NEWT species. The picked species is
// inserted by name on the term name tab and by tax ID on the term ID tab.
type NewtPickerModel struct {
	input   textinput.Model
	species []newt.Species
	matches []newt.Species
	cursor  int
	byID    bool
	theme   Theme

	submitted bool
	cancelled bool
	picked    newt.Species
}

// NewNewtPicker creates the species picker.
func NewNewtPicker(byID bool, theme Theme) NewtPickerModel {
	ti := textinput.New()
	ti.Placeholder = "filter species or tax id"
	ti.Prompt = "/ "
	ti.CharLimit = 64
	ti.Width = 40
	ti.Focus()

	return NewtPickerModel{
		input:   ti,
		species: newt.Common,
		matches: newt.Filter(newt.Common, ""),
		byID:    byID,
		theme:   theme,
	}
}

// Init implements tea.Model
func (m NewtPickerModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input
func (m NewtPickerModel) Update(msg tea.Msg) (NewtPickerModel, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc", "ctrl+c":
			m.cancelled = true
			return m, nil
		case "enter":
			if len(m.matches) > 0 {
				m.picked = m.matches[m.cursor]
				m.submitted = true
			}
			return m, nil
		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "ctrl+n":
			if m.cursor < len(m.matches)-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.matches = newt.Filter(m.species, strings.TrimSpace(m.input.Value()))
		m.cursor = 0
	}
	return m, cmd
}

// View renders the picker
func (m NewtPickerModel) View() string {
	t := m.theme
	var b strings.Builder

	titleStyle := t.Renderer.NewStyle().Bold(true).Foreground(t.Primary)
	b.WriteString(titleStyle.Render("NEWT Species Tips"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	start := 0
	if m.cursor >= newtPickerRows {
		start = m.cursor - newtPickerRows + 1
	}
	end := start + newtPickerRows
	if end > len(m.matches) {
		end = len(m.matches)
	}

	idStyle := t.Renderer.NewStyle().Foreground(t.Muted).Width(8)
	nameStyle := t.Renderer.NewStyle().Foreground(t.Text)
	selStyle := t.Renderer.NewStyle().Foreground(t.Primary).Bold(true)
	if len(m.matches) == 0 {
		b.WriteString(t.Renderer.NewStyle().Foreground(t.Muted).Italic(true).Render("no matching species"))
		b.WriteString("\n")
	}
	for i := start; i < end; i++ {
		s := m.matches[i]
		prefix, style := "  ", nameStyle
		if i == m.cursor {
			prefix, style = "▸ ", selStyle
		}
		b.WriteString(prefix + idStyle.Render(s.ID()) + style.Render(truncate(s.Label(), 40)) + "\n")
	}

	action := "insert name"
	if m.byID {
		action = "insert tax id"
	}
	b.WriteString("\n")
	b.WriteString(t.Renderer.NewStyle().Faint(true).Render(fmt.Sprintf("[Enter] %s  [↑/↓] move  [Esc] close", action)))

	return t.Modal(t.Primary).Width(58).Render(b.String())
}

// IsSubmitted returns true once a species was picked
func (m NewtPickerModel) IsSubmitted() bool {
	return m.submitted
}

// IsCancelled returns true if the picker was closed
func (m NewtPickerModel) IsCancelled() bool {
	return m.cancelled
}

// Insertion is the text to put in the search field.
func (m NewtPickerModel) Insertion() string {
	if m.byID {
		return m.picked.ID()
	}
	return m.picked.Name
}
