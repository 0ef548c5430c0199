package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings of the dialog. Single character bindings
// only apply while no text field has focus; control keys always apply.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding // Browse: collapse or go to parent.
	Right    key.Binding // Browse: expand, loading children on demand.
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Enter    key.Binding

	// Focus cycling between the search field, the results and the details.
	FocusNext key.Binding
	FocusPrev key.Binding

	// Tab switching.
	NextTab     key.Binding
	PrevTab     key.Binding
	TabTermName key.Binding
	TabTermID   key.Binding
	TabMass     key.Binding
	TabBrowse   key.Binding

	PickOntology key.Binding
	UseSelected  key.Binding
	Hierarchy    key.Binding
	NewtTips     key.Binding
	Copy         key.Binding
	Save         key.Binding // Hierarchy viewer: write the graph to disk.

	Help   key.Binding
	About  key.Binding
	Cancel key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("left"),
		key.WithHelp("←", "collapse"),
	),
	Right: key.NewBinding(
		key.WithKeys("right"),
		key.WithHelp("→", "expand"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("PgUp", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("PgDn", "page down"),
	),
	Home: key.NewBinding(
		key.WithKeys("home", "g"),
		key.WithHelp("g", "top"),
	),
	End: key.NewBinding(
		key.WithKeys("end", "G"),
		key.WithHelp("G", "bottom"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "search / use"),
	),
	FocusNext: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "next pane"),
	),
	FocusPrev: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("S-Tab", "previous pane"),
	),
	NextTab: key.NewBinding(
		key.WithKeys("]", "ctrl+right"),
		key.WithHelp("]", "next tab"),
	),
	PrevTab: key.NewBinding(
		key.WithKeys("[", "ctrl+left"),
		key.WithHelp("[", "previous tab"),
	),
	TabTermName: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "term name"),
	),
	TabTermID: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "term id"),
	),
	TabMass: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "mod mass"),
	),
	TabBrowse: key.NewBinding(
		key.WithKeys("4"),
		key.WithHelp("4", "browse"),
	),
	PickOntology: key.NewBinding(
		key.WithKeys("o", "ctrl+o"),
		key.WithHelp("o", "ontology"),
	),
	UseSelected: key.NewBinding(
		key.WithKeys("u", "ctrl+s"),
		key.WithHelp("u", "use selected"),
	),
	Hierarchy: key.NewBinding(
		key.WithKeys("h", "ctrl+g"),
		key.WithHelp("h", "hierarchy"),
	),
	NewtTips: key.NewBinding(
		key.WithKeys("n", "ctrl+n"),
		key.WithHelp("n", "NEWT species"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy id"),
	),
	Save: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "save png"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	About: key.NewBinding(
		key.WithKeys("A"),
		key.WithHelp("A", "about"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc", "q", "ctrl+c"),
		key.WithHelp("Esc/q", "cancel"),
	),
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.FocusNext, k.NextTab, k.PickOntology, k.UseSelected, k.Hierarchy, k.Help, k.Cancel}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.PageUp, k.PageDown, k.Home, k.End},
		{k.FocusNext, k.FocusPrev, k.NextTab, k.PrevTab, k.TabTermName, k.TabTermID, k.TabMass, k.TabBrowse},
		{k.Enter, k.PickOntology, k.UseSelected, k.Hierarchy, k.NewtTips, k.Copy},
		{k.Help, k.About, k.Cancel},
	}
}
