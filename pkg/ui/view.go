package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/compomics/ols-dialog/pkg/lookup"
	"github.com/compomics/ols-dialog/pkg/model"
	"github.com/compomics/ols-dialog/pkg/version"
)

const (
	headerLines   = 4 // title, ontology, tabs, divider
	footerLines   = 2 // status, key help
	massFormLines = 10
	idColumnWidth = 20
	massColWidth  = 12
)

func itoa(n int) string {
	return strconv.Itoa(n)
}

func formatMass(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func tableStyles(t Theme, focused bool) table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border).
		BorderBottom(true).
		Bold(true).
		Foreground(t.Subtext)
	s.Selected = s.Selected.Bold(false).Foreground(t.Text)
	if focused {
		s.Selected = s.Selected.
			Foreground(lipgloss.Color("#282A36")).
			Background(t.Primary)
	}
	return s
}

func resultColumns(mode model.SearchMode, width int) []table.Column {
	name := width - idColumnWidth - 4
	if mode == model.ModeModMass {
		name -= massColWidth + 2
	}
	if name < 10 {
		name = 10
	}
	cols := []table.Column{
		{Title: "Accession", Width: idColumnWidth},
		{Title: "Term Name", Width: name},
	}
	if mode == model.ModeModMass {
		cols = append(cols, table.Column{Title: "Mass Δ", Width: massColWidth})
	}
	return cols
}

func newResultsTable(t Theme, mode model.SearchMode, width, height int) table.Model {
	tbl := table.New(
		table.WithColumns(resultColumns(mode, width)),
		table.WithRows([]table.Row{}),
		table.WithFocused(true),
		table.WithHeight(height),
		table.WithWidth(width),
	)
	tbl.SetStyles(tableStyles(t, false))
	return tbl
}

// panelSizes splits the body between results and details.
func (m *Model) panelSizes() (resultsW, detailsW, bodyH int) {
	inputLines := 2
	switch m.mode() {
	case model.ModeModMass:
		inputLines = massFormLines
	case model.ModeBrowse:
		inputLines = 1
	}
	bodyH = m.height - headerLines - inputLines - footerLines - 2
	if bodyH < 3 {
		bodyH = 3
	}
	inner := m.width - 4
	resultsW = inner * 55 / 100
	detailsW = inner - resultsW
	if resultsW < 30 {
		resultsW = 30
	}
	if detailsW < 20 {
		detailsW = 20
	}
	return resultsW, detailsW, bodyH
}

func (m *Model) layout() {
	resultsW, detailsW, bodyH := m.panelSizes()
	m.rebuildTable()
	m.table.SetWidth(resultsW)
	m.table.SetHeight(bodyH)
	m.detailsView.Width = detailsW
	m.detailsView.Height = bodyH
	m.nameInput.Width = resultsW - 14
	m.idInput.Width = resultsW - 12
	m.mass.SetWidth(resultsW)
	m.help.Width = m.width
	if m.overlay == overlayHierarchy {
		m.graphView.SetSize(m.width, m.height)
	}
	if m.overlay == overlayPicker {
		m.picker.SetSize(m.width-10, m.height-8)
	}
	m.helpView.SetSize(m.width, m.height)
	m.renderDetails()
}

func (m *Model) rebuildTable() {
	resultsW, _, _ := m.panelSizes()
	mode := m.mode()
	m.table.SetRows(nil)
	m.table.SetColumns(resultColumns(mode, resultsW))
	rows := make([]table.Row, 0, len(m.results[mode]))
	for _, r := range m.results[mode] {
		row := table.Row{r.id, r.name}
		if mode == model.ModeModMass {
			row = append(row, r.mass)
		}
		rows = append(rows, row)
	}
	m.table.SetRows(rows)
	m.table.SetStyles(tableStyles(m.theme, m.focus == focusResults))

	cursor := 0
	if m.state != nil {
		if current := m.state.Selected(mode); current != "" {
			for i, r := range m.results[mode] {
				if r.id == current {
					cursor = i
					break
				}
			}
		}
	}
	if len(rows) > 0 {
		m.table.SetCursor(cursor)
	}
}

func (m *Model) treeHeight() int {
	_, _, bodyH := m.panelSizes()
	return bodyH
}

// renderDetails fills the details pane for the active tab's selection.
func (m *Model) renderDetails() {
	t := m.theme
	width := m.detailsView.Width - 2
	if width < 10 {
		width = 10
	}
	mode := m.mode()
	muted := t.Renderer.NewStyle().Foreground(t.Muted).Italic(true)
	label := t.Renderer.NewStyle().Bold(true).Foreground(t.Secondary)

	termID := ""
	if m.state != nil {
		termID = m.state.Selected(mode)
	}
	d := m.details[mode]

	var b strings.Builder
	switch {
	case termID == "" || termID == model.NoRootTermsID:
		b.WriteString(muted.Render("Select a term to see its details."))
	case d == nil:
		b.WriteString(muted.Render("Loading " + termID + "…"))
	case d.Disabled:
		b.WriteString(label.Render(termID) + "\n\n")
		b.WriteString(muted.Render(d.Message))
	case d.Empty():
		b.WriteString(label.Render(termID) + "\n\n")
		b.WriteString(muted.Render("No details available for this term."))
	default:
		b.WriteString(label.Render(termID) + "\n\n")
		b.WriteString(label.Render("Definition") + "\n")
		def := d.Definition
		if def == "" {
			def = lookup.NoDefinition
		}
		b.WriteString(strings.Join(wrapValue(def, width), "\n"))
		b.WriteString("\n")
		writePairs(&b, t, "Term Details", d.Metadata, width)
		writePairs(&b, t, "Cross-references", d.Xrefs, width)
	}
	m.detailsView.SetContent(b.String())
	m.detailsView.GotoTop()
}

func writePairs(b *strings.Builder, t Theme, title string, pairs []model.Pair, width int) {
	if len(pairs) == 0 {
		return
	}
	keyWidth := 0
	for _, p := range pairs {
		if w := lipgloss.Width(p.Key); w > keyWidth {
			keyWidth = w
		}
	}
	if keyWidth > width/2 {
		keyWidth = width / 2
	}
	valueWidth := width - keyWidth - 2
	if valueWidth > MaxValueWidth {
		valueWidth = MaxValueWidth
	}

	label := t.Renderer.NewStyle().Bold(true).Foreground(t.Secondary)
	keyStyle := t.Renderer.NewStyle().Foreground(t.Subtext).Width(keyWidth)
	b.WriteString("\n" + label.Render(title) + "\n")
	indent := strings.Repeat(" ", keyWidth+2)
	for _, p := range pairs {
		lines := wrapValue(p.Value, valueWidth)
		b.WriteString(keyStyle.Render(truncate(p.Key, keyWidth)) + "  " + lines[0] + "\n")
		for _, l := range lines[1:] {
			b.WriteString(indent + l + "\n")
		}
	}
}

// View implements tea.Model
func (m *Model) View() string {
	if m.done {
		return ""
	}
	base := m.viewBase()
	var modal string
	switch m.overlay {
	case overlayMessage:
		modal = m.message.View()
	case overlayHelp:
		modal = m.helpView.View()
	case overlayPicker:
		modal = m.picker.View()
	case overlayNewt:
		modal = m.newtPicker.View()
	case overlayHierarchy:
		modal = m.graphView.View()
	}
	if modal == "" {
		return base
	}
	return placeOverlay(m.width, m.height, base, modal)
}

func (m *Model) viewBase() string {
	t := m.theme
	var b strings.Builder

	title := t.Renderer.NewStyle().Bold(true).Foreground(t.Primary).Render(version.Title())
	b.WriteString(title + "\n")
	b.WriteString(m.viewOntology() + "\n")
	b.WriteString(m.viewTabs() + "\n")
	b.WriteString(t.RenderDivider(m.width) + "\n")

	if m.state == nil {
		msg := " Contacting the Ontology Lookup Service…"
		if m.loadFailed {
			msg = " The ontology registry could not be loaded."
		}
		b.WriteString(m.spinnerView() + t.Renderer.NewStyle().Foreground(t.Subtext).Render(msg))
		return b.String()
	}

	b.WriteString(m.viewInput() + "\n")

	resultsW, detailsW, bodyH := m.panelSizes()
	var left string
	if m.mode() == model.ModeBrowse {
		left = m.viewTree(resultsW, bodyH)
	} else {
		left = m.table.View()
	}
	leftStyle, rightStyle := t.Panel(), t.Panel()
	if m.focus == focusResults {
		leftStyle = t.FocusedPanel()
	}
	if m.focus == focusDetails {
		rightStyle = t.FocusedPanel()
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		leftStyle.Width(resultsW).Height(bodyH).Render(left),
		rightStyle.Width(detailsW).Height(bodyH).Render(m.detailsView.View()),
	)
	b.WriteString(body + "\n")
	b.WriteString(m.viewStatus() + "\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) spinnerView() string {
	if m.busy() {
		return m.spinner.View()
	}
	return " "
}

func (m *Model) viewOntology() string {
	t := m.theme
	label := t.Renderer.NewStyle().Foreground(t.Subtext).Render("Ontology: ")
	if m.state == nil {
		return label + t.Renderer.NewStyle().Foreground(t.Muted).Render("loading…")
	}
	name := truncate(m.state.Choice().Label(), m.width-24)
	value := t.Renderer.NewStyle().Bold(true).Foreground(t.Text).Render(name)
	hint := t.Renderer.NewStyle().Faint(true).Render("  [o] change")
	if m.state.ChoiceLocked() {
		hint = t.Renderer.NewStyle().Faint(true).Render("  (fixed on this tab)")
	}
	return label + value + hint
}

func (m *Model) viewTabs() string {
	var tabs []string
	for _, mode := range model.AllSearchModes {
		disabled := mode == model.ModeBrowse && m.state != nil && !m.state.BrowseEnabled()
		tabs = append(tabs, m.theme.RenderTab(fmt.Sprintf("%d %s", int(mode)+1, mode.Title()), mode == m.mode(), disabled))
	}
	return strings.Join(tabs, " ")
}

func (m *Model) viewInput() string {
	t := m.theme
	count := t.Renderer.NewStyle().Foreground(t.Subtext)
	tips := ""
	if m.state.NewtTips() {
		tips = t.Renderer.NewStyle().Foreground(t.Info).Render("   [n] NEWT Species Tips")
	}
	switch m.mode() {
	case model.ModeTermName:
		return m.nameInput.View() + "\n" +
			count.Render("Number of matching terms: "+m.hitCount[model.ModeTermName]) + tips
	case model.ModeTermID:
		return m.idInput.View() + "\n" +
			count.Render("Number of matching terms: "+m.hitCount[model.ModeTermID]) + tips
	case model.ModeModMass:
		form := m.mass.View()
		if m.focus != focusInput {
			form = t.Renderer.NewStyle().Faint(true).Render(form)
		}
		lines := strings.Split(form, "\n")
		for len(lines) < massFormLines-1 {
			lines = append(lines, "")
		}
		return strings.Join(lines[:massFormLines-1], "\n") + "\n" +
			count.Render("Number of matching terms: "+m.hitCount[model.ModeModMass])
	}
	return t.Renderer.NewStyle().Bold(true).Foreground(t.Secondary).Render(m.tree.Label)
}

func (m *Model) viewTree(width, height int) string {
	t := m.theme
	if len(m.treeRows) == 0 {
		return t.Renderer.NewStyle().Foreground(t.Muted).Italic(true).Render("loading…")
	}
	guide := t.Renderer.NewStyle().Foreground(t.Muted)
	normal := t.Renderer.NewStyle().Foreground(t.Text)
	selected := t.Renderer.NewStyle().Foreground(t.Primary).Bold(true)
	if m.focus == focusResults {
		selected = selected.Reverse(true)
	}

	end := m.treeScroll + height
	if end > len(m.treeRows) {
		end = len(m.treeRows)
	}
	var lines []string
	for i := m.treeScroll; i < end; i++ {
		row := m.treeRows[i]
		prefix := row.Prefix + row.Marker() + " "
		avail := width - lipgloss.Width(prefix)
		style := normal
		if i == m.treeCursor {
			style = selected
		}
		lines = append(lines, guide.Render(prefix)+style.Render(truncate(row.Node.Label(), avail)))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewStatus() string {
	t := m.theme
	parts := []string{m.spinnerView()}
	if m.state != nil && m.state.CanUseSelected() {
		parts = append(parts, t.Renderer.NewStyle().Foreground(t.Success).Render("selected "+m.state.Current()))
		if m.hierarchyAvailable() {
			parts = append(parts, t.Renderer.NewStyle().Foreground(t.Info).Render("[h] term hierarchy"))
		}
	}
	if m.status != "" {
		parts = append(parts, t.Renderer.NewStyle().Foreground(t.Warning).Render(m.status))
	}
	return strings.Join(parts, "  ")
}
