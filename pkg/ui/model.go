// Package ui is the terminal rendition of the ontology lookup dialog.
package ui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/compomics/ols-dialog/pkg/browse"
	"github.com/compomics/ols-dialog/pkg/lookup"
	"github.com/compomics/ols-dialog/pkg/model"
	"github.com/compomics/ols-dialog/pkg/ontology"
)

type focus int

const (
	focusInput focus = iota
	focusResults
	focusDetails
)

type overlayKind int

const (
	overlayNone overlayKind = iota
	overlayPicker
	overlayNewt
	overlayHelp
	overlayMessage
	overlayHierarchy
)

const numModes = int(model.ModeBrowse) + 1

// Options configures the dialog
type Options struct {
	Lookup Lookup
	Graphs GraphFetcher
	Logger *slog.Logger
	Theme  Theme
	Keys   KeyMap

	Preselected ontology.Preselected
	Ontology    string // label or key selected on open
	Mode        model.SearchMode
	Term        string // initial term name or term ID, depending on Mode
	Mass        string
	Accuracy    float64
	MassType    model.MassType

	// Request is handed back with the selection; Host, when set, receives it.
	Request lookup.Request
	Host    lookup.Inputable

	GlamourStyle string
	Endpoint     string
	Debounce     time.Duration

	// Clipboard defaults to the system clipboard.
	Clipboard func(string) error
}

type resultRow struct {
	id   string
	name string
	mass string
}

// Model is the dialog. It is used by pointer; Update returns the same model.
type Model struct {
	opts   Options
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger
	theme  Theme
	keys   KeyMap

	state      *lookup.State
	loadFailed bool
	inflight   int

	width  int
	height int
	focus  focus

	nameInput textinput.Model
	idInput   textinput.Model
	mass      *massForm
	debounce  debouncer

	results  [numModes][]resultRow
	hitCount [numModes]string
	table    table.Model

	details     [numModes]*model.TermDetails
	detailsView viewport.Model

	tree       *browse.Tree
	treeRows   []browse.Row
	treeCursor int
	treeScroll int

	seq [numModes]uint64

	overlay    overlayKind
	picker     OntologyPickerModel
	newtPicker NewtPickerModel
	helpView   HelpOverlayModel
	message    MessageBoxModel
	graphView  HierarchyViewModel

	spinner spinner.Model
	help    help.Model
	status  string

	selection *model.Selection
	err       error
	done      bool
}

// New creates the dialog. The ontology registry is loaded by Init.
func New(opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Theme.Renderer == nil {
		opts.Theme = DefaultTheme(nil)
	}
	if len(opts.Keys.Cancel.Keys()) == 0 {
		opts.Keys = DefaultKeyMap
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if !opts.Mode.IsValid() {
		opts.Mode = model.ModeTermName
	}
	if opts.Request == (lookup.Request{}) {
		opts.Request = lookup.NewRequest("", "")
	}

	ctx, cancel := context.WithCancel(context.Background())
	theme := opts.Theme

	name := textinput.New()
	name.Prompt = "Term Name: "
	name.Placeholder = "at least 3 characters"
	name.CharLimit = 256
	name.Width = 40

	id := textinput.New()
	id.Prompt = "Term ID: "
	id.Placeholder = "e.g. GO:0008150"
	id.CharLimit = 128
	id.Width = 40

	switch opts.Mode {
	case model.ModeTermName:
		name.SetValue(opts.Term)
	case model.ModeTermID:
		id.SetValue(opts.Term)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Renderer.NewStyle().Foreground(theme.Primary)

	m := &Model{
		opts:        opts,
		ctx:         ctx,
		cancel:      cancel,
		logger:      opts.Logger,
		theme:       theme,
		keys:        opts.Keys,
		nameInput:   name,
		idInput:     id,
		mass:        newMassForm(opts.Mass, opts.Accuracy, opts.MassType),
		debounce:    newDebouncer(opts.Debounce),
		table:       newResultsTable(theme, model.ModeTermName, 60, 10),
		detailsView: viewport.New(40, 10),
		tree:        browse.New(""),
		message:     NewMessageBox(theme),
		helpView:    NewHelpOverlayModel(theme, opts.Keys, opts.GlamourStyle, opts.Endpoint),
		spinner:     sp,
		help:        help.New(),
		width:       100,
		height:      30,
	}
	for i := range m.hitCount {
		m.hitCount[i] = "-"
	}
	m.layout()
	return m
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	m.inflight++
	return tea.Batch(
		m.spinner.Tick,
		textinput.Blink,
		loadOntologiesCmd(m.ctx, m.opts.Lookup, m.opts.Preselected, m.opts.Ontology),
	)
}

// Selection returns the term the user chose, or false when the dialog was
// cancelled.
func (m *Model) Selection() (model.Selection, bool) {
	if m.selection == nil {
		return model.Selection{}, false
	}
	return *m.selection, true
}

// Err returns the error that prevented the dialog from opening.
func (m *Model) Err() error {
	return m.err
}

// Done reports whether the dialog has finished.
func (m *Model) Done() bool {
	return m.done
}

func (m *Model) mode() model.SearchMode {
	if m.state == nil {
		return m.opts.Mode
	}
	return m.state.Mode()
}

func (m *Model) busy() bool {
	return m.inflight > 0
}

func (m *Model) finish() tea.Cmd {
	m.done = true
	m.debounce.Cancel()
	m.cancel()
	return tea.Quit
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ontologiesLoadedMsg:
		return m, m.onOntologies(msg)
	case debounceMsg:
		if m.debounce.Fire(msg) {
			return m, m.searchName()
		}
		return m, nil
	case nameResultsMsg:
		return m, m.onNameResults(msg)
	case idResultMsg:
		return m, m.onIDResult(msg)
	case massResultsMsg:
		return m, m.onMassResults(msg)
	case rootsMsg:
		return m, m.onRoots(msg)
	case childrenMsg:
		return m, m.onChildren(msg)
	case probeMsg:
		return m, m.onProbe(msg)
	case detailsMsg:
		return m, m.onDetails(msg)
	case resolvedMsg:
		return m, m.onResolved(msg)
	case hierarchyMsg:
		return m, m.onHierarchy(msg)
	case savedMsg:
		if m.overlay == overlayHierarchy {
			var cmd tea.Cmd
			m.graphView, cmd = m.graphView.Update(msg)
			return m, cmd
		}
		return m, nil
	case clipboardMsg:
		if msg.err != nil {
			m.status = "clipboard unavailable: " + msg.err.Error()
		} else {
			m.status = "copied " + msg.text
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.finish()
		}
		if m.overlay != overlayNone {
			return m, m.updateOverlay(msg)
		}
		return m, m.handleKey(msg)
	}

	if m.overlay == overlayNewt {
		var cmd tea.Cmd
		m.newtPicker, cmd = m.newtPicker.Update(msg)
		return m, cmd
	}
	if m.focus == focusInput {
		return m, m.updateInput(msg)
	}
	return m, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// REMOTE RESULTS
// ══════════════════════════════════════════════════════════════════════════════

// settle records that a remote call returned.
func (m *Model) settle() {
	if m.inflight > 0 {
		m.inflight--
	}
}

// fail shows err to the user. Connection problems were logged by the lookup
// service already.
func (m *Model) fail(err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	var ce *lookup.ConnectionError
	if errors.As(err, &ce) {
		m.showMessage(MessageError, ce.Title, ce.Message)
		return
	}
	if n, ok := lookup.AsNotice(err); ok {
		m.showMessage(MessageNotice, n.Title, n.Message)
		return
	}
	m.showMessage(MessageError, lookup.TitleConnectionError, err.Error())
}

func (m *Model) showMessage(kind MessageKind, title, text string) {
	m.message.Show(kind, title, text)
	m.overlay = overlayMessage
}

func (m *Model) onOntologies(msg ontologiesLoadedMsg) tea.Cmd {
	m.settle()
	if msg.err != nil {
		m.err = msg.err
		m.loadFailed = true
		m.fail(msg.err)
		return nil
	}

	m.state = lookup.NewState(msg.choices, msg.index, m.opts.Mode)
	m.idInput.SetValue(m.state.TermIDPrefill())
	if m.opts.Mode == model.ModeTermID && m.opts.Term != "" {
		m.idInput.SetValue(m.opts.Term)
	}
	m.enterMode()

	switch m.state.Mode() {
	case model.ModeTermName:
		if m.nameInput.Value() != "" {
			return m.searchName()
		}
	case model.ModeTermID:
		if m.opts.Term != "" {
			return m.searchID()
		}
	case model.ModeModMass:
		if strings.TrimSpace(m.mass.Mass) != "" {
			return m.searchMass()
		}
	case model.ModeBrowse:
		return m.loadRoots()
	}
	return nil
}

func (m *Model) onNameResults(msg nameResultsMsg) tea.Cmd {
	m.settle()
	if msg.seq != m.seq[model.ModeTermName] {
		return nil
	}
	m.clearSelection(model.ModeTermName)
	switch {
	case errors.Is(msg.err, lookup.ErrTooShort):
		m.setResults(model.ModeTermName, nil, "-")
	case msg.err != nil:
		m.setResults(model.ModeTermName, nil, "-")
		m.fail(msg.err)
	default:
		rows := make([]resultRow, len(msg.terms))
		for i, t := range msg.terms {
			rows[i] = resultRow{id: t.ID, name: t.Name}
		}
		m.setResults(model.ModeTermName, rows, itoa(len(rows)))
	}
	return nil
}

func (m *Model) onIDResult(msg idResultMsg) tea.Cmd {
	m.settle()
	if msg.seq != m.seq[model.ModeTermID] {
		return nil
	}
	m.clearSelection(model.ModeTermID)
	if msg.err != nil {
		m.setResults(model.ModeTermID, nil, "0")
		m.fail(msg.err)
		return nil
	}
	m.setResults(model.ModeTermID, []resultRow{{id: msg.term.ID, name: msg.term.Name}}, "1")
	return m.selectTerm(model.ModeTermID, msg.term.ID)
}

func (m *Model) onMassResults(msg massResultsMsg) tea.Cmd {
	m.settle()
	if msg.seq != m.seq[model.ModeModMass] {
		return nil
	}
	m.clearSelection(model.ModeModMass)
	if msg.err != nil {
		m.setResults(model.ModeModMass, nil, "-")
		m.fail(msg.err)
		return nil
	}
	rows := make([]resultRow, len(msg.hits))
	for i, h := range msg.hits {
		rows[i] = resultRow{id: h.TermID, name: h.TermName, mass: formatMass(h.MassDelta)}
	}
	m.setResults(model.ModeModMass, rows, itoa(len(rows)))
	return nil
}

func (m *Model) onRoots(msg rootsMsg) tea.Cmd {
	m.settle()
	if msg.seq != m.seq[model.ModeBrowse] {
		return nil
	}
	if msg.err != nil {
		m.tree.SetRoots(nil)
		m.refreshTree()
		m.fail(msg.err)
		return nil
	}
	m.tree.SetRoots(msg.terms)
	m.treeCursor, m.treeScroll = 0, 0
	m.refreshTree()
	return m.probe(m.tree.Roots)
}

func (m *Model) onChildren(msg childrenMsg) tea.Cmd {
	m.settle()
	if msg.seq != m.seq[model.ModeBrowse] {
		return nil
	}
	if msg.err != nil {
		for _, n := range m.tree.FindAll(msg.id) {
			n.Expanded = false
		}
		m.refreshTree()
		m.fail(msg.err)
		return nil
	}
	added := m.tree.SetChildren(msg.id, msg.terms)
	m.refreshTree()
	return m.probe(added)
}

func (m *Model) onProbe(msg probeMsg) tea.Cmd {
	m.settle()
	if msg.seq != m.seq[model.ModeBrowse] {
		return nil
	}
	if msg.err != nil {
		m.fail(msg.err)
		return nil
	}
	m.tree.ApplyProbe(msg.result)
	m.refreshTree()
	return nil
}

func (m *Model) probe(nodes []*browse.Node) tea.Cmd {
	cmd := probeCmd(m.ctx, m.opts.Lookup, m.seq[model.ModeBrowse], m.state.Choice().Key, m.tree.Unprobed(nodes))
	if cmd != nil {
		m.inflight++
	}
	return cmd
}

func (m *Model) onDetails(msg detailsMsg) tea.Cmd {
	m.settle()
	if m.state == nil || m.state.Selected(msg.mode) != msg.termID {
		return nil
	}
	if msg.err != nil {
		m.state.Clear(msg.mode)
		m.details[msg.mode] = nil
		m.renderDetails()
		m.fail(msg.err)
		return nil
	}
	d := msg.details
	m.details[msg.mode] = &d
	m.renderDetails()
	return nil
}

func (m *Model) onResolved(msg resolvedMsg) tea.Cmd {
	m.settle()
	if msg.err != nil {
		m.fail(msg.err)
		return nil
	}
	sel := msg.selection
	if m.opts.Host != nil {
		if err := m.opts.Host.InsertOLSResult(sel); err != nil {
			m.logger.Error("host rejected selection", "term", sel.TermID, "error", err)
			m.showMessage(MessageError, "Could Not Use Term", err.Error())
			return nil
		}
	}
	m.selection = &sel
	return m.finish()
}

func (m *Model) onHierarchy(msg hierarchyMsg) tea.Cmd {
	m.settle()
	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) {
			return nil
		}
		if !lookup.IsConnection(msg.err) {
			m.logger.Error("Error Opening Term Hierarchy", "error", msg.err)
		}
		m.showMessage(MessageError, lookup.TitleHierarchyError, msg.err.Error())
		return nil
	}
	m.graphView = NewHierarchyView(msg.graph, m.theme, m.keys, m.width, m.height)
	m.overlay = overlayHierarchy
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ACTIONS
// ══════════════════════════════════════════════════════════════════════════════

func (m *Model) searchName() tea.Cmd {
	if m.state == nil {
		return nil
	}
	m.debounce.Cancel()
	text := m.nameInput.Value()
	if !lookup.Searchable(text, m.opts.Lookup.MinWordLength()) {
		m.seq[model.ModeTermName]++
		m.clearSelection(model.ModeTermName)
		m.setResults(model.ModeTermName, nil, "-")
		return nil
	}
	m.seq[model.ModeTermName]++
	m.inflight++
	return searchNameCmd(m.ctx, m.opts.Lookup, m.seq[model.ModeTermName], m.state.Choice(), text)
}

func (m *Model) searchID() tea.Cmd {
	if m.state == nil {
		return nil
	}
	id := strings.TrimSpace(m.idInput.Value())
	if id == "" || id == m.state.TermIDPrefill() {
		return nil
	}
	m.seq[model.ModeTermID]++
	m.inflight++
	return searchIDCmd(m.ctx, m.opts.Lookup, m.seq[model.ModeTermID], m.state.Choice(), id)
}

func (m *Model) searchMass() tea.Cmd {
	q, err := m.mass.Query()
	if err != nil {
		m.fail(err)
		return nil
	}
	m.seq[model.ModeModMass]++
	m.inflight++
	return searchMassCmd(m.ctx, m.opts.Lookup, m.seq[model.ModeModMass], q)
}

func (m *Model) loadRoots() tea.Cmd {
	if m.state == nil || !m.state.BrowseEnabled() {
		return nil
	}
	m.seq[model.ModeBrowse]++
	m.tree.Reset(m.state.Choice().TreeLabel())
	m.treeRows = nil
	m.treeCursor, m.treeScroll = 0, 0
	m.clearSelection(model.ModeBrowse)
	m.inflight++
	return rootsCmd(m.ctx, m.opts.Lookup, m.seq[model.ModeBrowse], m.state.Choice())
}

// selectTerm records the accession picked on a tab and fetches its details.
func (m *Model) selectTerm(mode model.SearchMode, termID string) tea.Cmd {
	if m.state == nil || m.state.Selected(mode) == termID && m.details[mode] != nil {
		return nil
	}
	m.state.Select(mode, termID)
	m.details[mode] = nil
	m.renderDetails()
	if termID == "" || termID == model.NoRootTermsID {
		return nil
	}
	m.inflight++
	return detailsCmd(m.ctx, m.opts.Lookup, mode, termID)
}

func (m *Model) clearSelection(mode model.SearchMode) {
	if m.state != nil {
		m.state.Clear(mode)
	}
	m.details[mode] = nil
	m.renderDetails()
}

func (m *Model) useSelected() tea.Cmd {
	if m.state == nil || !m.state.CanUseSelected() {
		m.status = "select a term first"
		return nil
	}
	mode := m.state.Mode()
	var metadata map[string]string
	if d := m.details[mode]; d != nil {
		metadata = d.MetadataMap()
	}
	m.inflight++
	return resolveCmd(m.ctx, m.opts.Lookup, m.state.Choice(), m.state.Current(), m.opts.Request, metadata)
}

// hierarchyAvailable mirrors when the hierarchy link is enabled: once the
// term's details arrived and were not empty, or for NEWT terms.
func (m *Model) hierarchyAvailable() bool {
	if m.state == nil || m.opts.Graphs == nil || !m.state.CanUseSelected() {
		return false
	}
	d := m.details[m.state.Mode()]
	return d != nil && (d.Disabled || !d.Empty())
}

func (m *Model) openHierarchy() tea.Cmd {
	if !m.hierarchyAvailable() {
		m.status = "no term hierarchy for the current selection"
		return nil
	}
	m.inflight++
	return hierarchyCmd(m.ctx, m.opts.Lookup, m.opts.Graphs, m.state.Choice(), m.state.Current())
}

func (m *Model) copySelected() tea.Cmd {
	if m.state == nil || !m.state.CanUseSelected() {
		return nil
	}
	id := m.state.Current()
	write := m.opts.Clipboard
	return func() tea.Msg {
		return clipboardMsg{text: id, err: write(id)}
	}
}

// switchMode activates a tab and loads what it needs.
func (m *Model) switchMode(mode model.SearchMode) tea.Cmd {
	if m.state == nil || mode == m.state.Mode() {
		return nil
	}
	change := m.state.SwitchMode(mode)
	if !change.Switched {
		if mode == model.ModeBrowse {
			notice := lookup.ErrBrowseMultiple
			if m.state.Choice().IsNEWT() {
				notice = lookup.ErrBrowseNEWT
			}
			m.showMessage(MessageNotice, notice.Title, notice.Message)
		}
		return nil
	}

	var cmds []tea.Cmd
	if change.ChoiceChanged {
		m.idInput.SetValue(change.Prefill)
		cmds = append(cmds, m.afterChoiceChange())
	}
	m.enterMode()
	if mode == model.ModeBrowse && !change.ChoiceChanged && len(m.tree.Roots) == 0 {
		cmds = append(cmds, m.loadRoots())
	}
	return tea.Batch(cmds...)
}

// pickChoice applies the ontology picked in the selector.
func (m *Model) pickChoice(i int) tea.Cmd {
	change := m.state.SelectChoice(i)
	if !change.Changed {
		return nil
	}
	m.idInput.SetValue(change.Prefill)
	if change.LeftBrowse && change.Notice != nil {
		m.showMessage(MessageNotice, change.Notice.Title, change.Notice.Message)
	}
	cmd := m.afterChoiceChange()
	m.enterMode()
	return cmd
}

// afterChoiceChange reruns the term name search, clears the term ID results
// and rebuilds the tree for the new ontology.
func (m *Model) afterChoiceChange() tea.Cmd {
	m.clearSelection(model.ModeTermName)
	m.clearSelection(model.ModeTermID)
	m.clearSelection(model.ModeBrowse)
	m.setResults(model.ModeTermID, nil, "-")

	m.seq[model.ModeBrowse]++
	m.tree.Reset(m.state.Choice().TreeLabel())
	m.treeRows = nil

	var cmds []tea.Cmd
	if m.state.Mode() != model.ModeModMass {
		cmds = append(cmds, m.searchName())
	}
	if m.state.Mode() == model.ModeBrowse {
		cmds = append(cmds, m.loadRoots())
	}
	return tea.Batch(cmds...)
}

// enterMode moves focus and widgets to the active tab.
func (m *Model) enterMode() {
	mode := m.mode()
	m.nameInput.Blur()
	m.idInput.Blur()
	switch mode {
	case model.ModeTermName:
		m.focus = focusInput
		m.nameInput.Focus()
	case model.ModeTermID:
		m.focus = focusInput
		m.idInput.Focus()
	case model.ModeModMass:
		m.focus = focusInput
	case model.ModeBrowse:
		m.focus = focusResults
	}
	m.layout()
	m.renderDetails()
}

func (m *Model) setResults(mode model.SearchMode, rows []resultRow, count string) {
	m.results[mode] = rows
	m.hitCount[mode] = count
	if mode == m.mode() {
		m.rebuildTable()
	}
}

func (m *Model) refreshTree() {
	m.treeRows = m.tree.Flatten()
	if m.treeCursor >= len(m.treeRows) {
		m.treeCursor = len(m.treeRows) - 1
	}
	if m.treeCursor < 0 {
		m.treeCursor = 0
	}
}
