package ui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/compomics/ols-dialog/pkg/ontology"
)

// OntologyPickerModel is the modal ontology selector. Typing "/" filters
// the entries with fuzzy matching.
type OntologyPickerModel struct {
	list   list.Model
	theme  Theme
	chosen int

	submitted bool
	cancelled bool
}

// fuzzyFilter ranks list items with sahilm/fuzzy.
func fuzzyFilter(term string, targets []string) []list.Rank {
	matches := fuzzy.Find(term, targets)
	ranks := make([]list.Rank, len(matches))
	for i, m := range matches {
		ranks[i] = list.Rank{Index: m.Index, MatchedIndexes: m.MatchedIndexes}
	}
	return ranks
}

// NewOntologyPicker opens the selector on the current choice.
func NewOntologyPicker(choices []ontology.Choice, current int, theme Theme, width, height int) OntologyPickerModel {
	items := make([]list.Item, len(choices))
	for i, c := range choices {
		items[i] = ChoiceItem{Choice: c, Index: i}
	}

	l := list.New(items, ChoiceDelegate{Theme: theme, Current: current}, width, height)
	l.Title = "Select Ontology"
	l.Styles.Title = theme.Renderer.NewStyle().Bold(true).Foreground(theme.Primary)
	l.Filter = fuzzyFilter
	l.SetShowHelp(false)
	l.SetShowStatusBar(true)
	l.DisableQuitKeybindings()
	if current >= 0 && current < len(items) {
		l.Select(current)
	}

	return OntologyPickerModel{list: l, theme: theme, chosen: current}
}

// Update handles input
func (m OntologyPickerModel) Update(msg tea.Msg) (OntologyPickerModel, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch km.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(ChoiceItem); ok {
				m.chosen = item.Index
				m.submitted = true
			}
			return m, nil
		case "esc", "q":
			if m.list.FilterState() == list.FilterApplied {
				m.list.ResetFilter()
				return m, nil
			}
			m.cancelled = true
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// SetSize sets the modal dimensions
func (m *OntologyPickerModel) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

// View renders the picker in a modal box.
func (m OntologyPickerModel) View() string {
	hint := m.theme.Renderer.NewStyle().Faint(true).
		Render("[Enter] select  [/] filter  [Esc] close")
	return m.theme.Modal(m.theme.Primary).Render(m.list.View() + "\n" + hint)
}

// IsSubmitted returns true once an entry was chosen
func (m OntologyPickerModel) IsSubmitted() bool {
	return m.submitted
}

// IsCancelled returns true if the picker was closed without a choice
func (m OntologyPickerModel) IsCancelled() bool {
	return m.cancelled
}

// Chosen is the index of the picked choice.
func (m OntologyPickerModel) Chosen() int {
	return m.chosen
}
