package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/compomics/ols-dialog/pkg/browse"
	"github.com/compomics/ols-dialog/pkg/model"
)

// updateOverlay routes input to the open modal.
func (m *Model) updateOverlay(msg tea.KeyMsg) tea.Cmd {
	switch m.overlay {
	case overlayMessage:
		m.message, _ = m.message.Update(msg)
		if !m.message.IsVisible() {
			m.overlay = overlayNone
			if m.loadFailed {
				return m.finish()
			}
		}
		return nil

	case overlayHelp:
		var cmd tea.Cmd
		m.helpView, cmd = m.helpView.Update(msg)
		if !m.helpView.IsVisible() {
			m.overlay = overlayNone
		}
		return cmd

	case overlayPicker:
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		switch {
		case m.picker.IsSubmitted():
			m.overlay = overlayNone
			return m.pickChoice(m.picker.Chosen())
		case m.picker.IsCancelled():
			m.overlay = overlayNone
		}
		return cmd

	case overlayNewt:
		var cmd tea.Cmd
		m.newtPicker, cmd = m.newtPicker.Update(msg)
		switch {
		case m.newtPicker.IsSubmitted():
			m.overlay = overlayNone
			return m.insertSpecies(m.newtPicker.Insertion())
		case m.newtPicker.IsCancelled():
			m.overlay = overlayNone
		}
		return cmd

	case overlayHierarchy:
		var cmd tea.Cmd
		m.graphView, cmd = m.graphView.Update(msg)
		if m.graphView.IsClosed() {
			m.overlay = overlayNone
		}
		return cmd
	}
	return nil
}

func (m *Model) insertSpecies(text string) tea.Cmd {
	switch m.mode() {
	case model.ModeTermName:
		m.nameInput.SetValue(text)
		m.nameInput.CursorEnd()
		m.focus = focusInput
		return m.searchName()
	case model.ModeTermID:
		m.idInput.SetValue(text)
		m.idInput.CursorEnd()
		m.focus = focusInput
		return m.searchID()
	}
	return nil
}

// handleKey dispatches a key when no modal is open.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.state == nil {
		// Still loading the registry, or it failed.
		if key.Matches(msg, m.keys.Cancel) {
			return m.finish()
		}
		return nil
	}

	if m.focus == focusInput {
		switch m.mode() {
		case model.ModeModMass:
			return m.handleFormKey(msg)
		case model.ModeTermName, model.ModeTermID:
			if handled, cmd := m.handleTextKey(msg); handled {
				return cmd
			}
		}
	}

	k := m.keys
	switch {
	case key.Matches(msg, k.Cancel):
		return m.finish()
	case key.Matches(msg, k.Help):
		m.helpView.SetSize(m.width, m.height)
		m.helpView.Show(PageHelp)
		m.overlay = overlayHelp
		return nil
	case key.Matches(msg, k.About):
		m.helpView.SetSize(m.width, m.height)
		m.helpView.Show(PageAbout)
		m.overlay = overlayHelp
		return nil
	case key.Matches(msg, k.FocusNext):
		m.cycleFocus(1)
		return nil
	case key.Matches(msg, k.FocusPrev):
		m.cycleFocus(-1)
		return nil
	case key.Matches(msg, k.NextTab):
		return m.switchMode(nextMode(m.mode(), 1))
	case key.Matches(msg, k.PrevTab):
		return m.switchMode(nextMode(m.mode(), -1))
	case key.Matches(msg, k.TabTermName):
		return m.switchMode(model.ModeTermName)
	case key.Matches(msg, k.TabTermID):
		return m.switchMode(model.ModeTermID)
	case key.Matches(msg, k.TabMass):
		return m.switchMode(model.ModeModMass)
	case key.Matches(msg, k.TabBrowse):
		return m.switchMode(model.ModeBrowse)
	case key.Matches(msg, k.PickOntology):
		return m.openPicker()
	case key.Matches(msg, k.NewtTips):
		return m.openNewtPicker()
	case key.Matches(msg, k.UseSelected):
		return m.useSelected()
	case key.Matches(msg, k.Hierarchy):
		return m.openHierarchy()
	case key.Matches(msg, k.Copy):
		return m.copySelected()
	}

	if m.focus == focusDetails {
		var cmd tea.Cmd
		m.detailsView, cmd = m.detailsView.Update(msg)
		return cmd
	}
	if m.mode() == model.ModeBrowse {
		return m.handleTreeKey(msg)
	}
	return m.handleTableKey(msg)
}

// handleTextKey handles keys while a search field has focus. Keys it does
// not claim fall through to the global bindings.
func (m *Model) handleTextKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "esc":
		return false, nil
	case "enter":
		if m.mode() == model.ModeTermID {
			return true, m.searchID()
		}
		return true, m.searchName()
	case "down":
		if len(m.results[m.mode()]) > 0 {
			m.focus = focusResults
			return true, m.selectTableRow()
		}
		return true, nil
	}
	if msg.Type != tea.KeyRunes {
		for _, b := range []key.Binding{m.keys.NextTab, m.keys.PrevTab, m.keys.PickOntology, m.keys.NewtTips, m.keys.UseSelected, m.keys.Hierarchy} {
			if key.Matches(msg, b) {
				return false, nil
			}
		}
	}
	return true, m.updateInput(msg)
}

// updateInput forwards msg to the focused text field; edits of the term name
// schedule a search.
func (m *Model) updateInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.mode() {
	case model.ModeTermName:
		before := m.nameInput.Value()
		m.nameInput, cmd = m.nameInput.Update(msg)
		if m.nameInput.Value() != before {
			return tea.Batch(cmd, m.debounce.Trigger())
		}
	case model.ModeTermID:
		m.idInput, cmd = m.idInput.Update(msg)
	case model.ModeModMass:
		var submitted bool
		submitted, cmd = m.mass.Update(msg)
		if submitted {
			return tea.Batch(cmd, m.submitMass())
		}
	}
	return cmd
}

func (m *Model) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case msg.String() == "esc":
		m.focus = focusResults
		return nil
	case msg.Type != tea.KeyRunes && key.Matches(msg, m.keys.NextTab):
		return m.switchMode(nextMode(m.mode(), 1))
	case msg.Type != tea.KeyRunes && key.Matches(msg, m.keys.PrevTab):
		return m.switchMode(nextMode(m.mode(), -1))
	}
	return m.updateInput(msg)
}

func (m *Model) submitMass() tea.Cmd {
	cmd := m.searchMass()
	reset := m.mass.reset()
	if cmd != nil {
		m.focus = focusResults
	}
	return tea.Batch(cmd, reset)
}

func (m *Model) cycleFocus(step int) {
	order := []focus{focusInput, focusResults, focusDetails}
	if m.mode() == model.ModeBrowse {
		order = []focus{focusResults, focusDetails}
	}
	idx := 0
	for i, f := range order {
		if f == m.focus {
			idx = i
		}
	}
	idx = (idx + step + len(order)) % len(order)
	m.focus = order[idx]

	m.nameInput.Blur()
	m.idInput.Blur()
	if m.focus == focusInput {
		switch m.mode() {
		case model.ModeTermName:
			m.nameInput.Focus()
		case model.ModeTermID:
			m.idInput.Focus()
		}
	}
	m.table.SetStyles(tableStyles(m.theme, m.focus == focusResults))
}

func nextMode(mode model.SearchMode, step int) model.SearchMode {
	n := len(model.AllSearchModes)
	return model.SearchMode((int(mode) + step + n) % n)
}

func (m *Model) openPicker() tea.Cmd {
	if m.state.ChoiceLocked() {
		m.status = "the ontology is fixed to PSI-MOD on the mass tab"
		return nil
	}
	w, h := m.width-10, m.height-8
	if w > 90 {
		w = 90
	}
	m.picker = NewOntologyPicker(m.state.Choices(), m.state.Index(), m.theme, w, h)
	m.overlay = overlayPicker
	return nil
}

func (m *Model) openNewtPicker() tea.Cmd {
	if !m.state.NewtTips() {
		return nil
	}
	m.newtPicker = NewNewtPicker(m.mode() == model.ModeTermID, m.theme)
	m.overlay = overlayNewt
	return m.newtPicker.Init()
}

// handleTableKey moves through search results; the row under the cursor is
// the selected term.
func (m *Model) handleTableKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Enter) {
		return m.useSelected()
	}
	if len(m.results[m.mode()]) == 0 {
		return nil
	}
	before := m.table.Cursor()
	if m.focus == focusInput {
		m.focus = focusResults
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	if m.table.Cursor() != before || m.state.Current() == "" {
		return tea.Batch(cmd, m.selectTableRow())
	}
	return cmd
}

func (m *Model) selectTableRow() tea.Cmd {
	rows := m.results[m.mode()]
	c := m.table.Cursor()
	if c < 0 || c >= len(rows) {
		return nil
	}
	return m.selectTerm(m.mode(), rows[c].id)
}

func (m *Model) handleTreeKey(msg tea.KeyMsg) tea.Cmd {
	if len(m.treeRows) == 0 {
		return nil
	}
	k := m.keys
	switch {
	case key.Matches(msg, k.Up):
		m.moveTree(-1)
	case key.Matches(msg, k.Down):
		m.moveTree(1)
	case key.Matches(msg, k.PageUp):
		m.moveTree(-m.treeHeight())
	case key.Matches(msg, k.PageDown):
		m.moveTree(m.treeHeight())
	case key.Matches(msg, k.Home):
		m.moveTree(-len(m.treeRows))
	case key.Matches(msg, k.End):
		m.moveTree(len(m.treeRows))
	case key.Matches(msg, k.Right), key.Matches(msg, k.Enter):
		return m.expandTree()
	case key.Matches(msg, k.Left):
		node := m.tree.Collapse(m.treeRows[m.treeCursor].Node)
		m.refreshTree()
		if i := browse.IndexOf(m.treeRows, node); i >= 0 {
			m.treeCursor = i
		}
		m.scrollTree()
		return m.selectTerm(model.ModeBrowse, node.ID)
	default:
		return nil
	}
	return m.selectTerm(model.ModeBrowse, m.treeRows[m.treeCursor].Node.ID)
}

func (m *Model) expandTree() tea.Cmd {
	node := m.treeRows[m.treeCursor].Node
	sel := m.selectTerm(model.ModeBrowse, node.ID)
	if m.tree.Toggle(node) {
		m.inflight++
		m.refreshTree()
		return tea.Batch(sel, childrenCmd(m.ctx, m.opts.Lookup, m.seq[model.ModeBrowse], m.state.Choice().Key, node.ID))
	}
	m.refreshTree()
	return sel
}

func (m *Model) moveTree(delta int) {
	m.treeCursor += delta
	if m.treeCursor < 0 {
		m.treeCursor = 0
	}
	if m.treeCursor >= len(m.treeRows) {
		m.treeCursor = len(m.treeRows) - 1
	}
	m.scrollTree()
}

func (m *Model) scrollTree() {
	h := m.treeHeight()
	if m.treeCursor < m.treeScroll {
		m.treeScroll = m.treeCursor
	}
	if m.treeCursor >= m.treeScroll+h {
		m.treeScroll = m.treeCursor - h + 1
	}
}
