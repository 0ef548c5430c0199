package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/compomics/ols-dialog/pkg/version"
)

// Page selects what the help overlay shows.
type Page int

const (
	PageHelp Page = iota
	PageAbout
)

// HelpOverlayModel shows the help or about page, rendered from markdown
type HelpOverlayModel struct {
	visible  bool
	page     Page
	width    int
	height   int
	theme    Theme
	style    string
	endpoint string
	keys     KeyMap
	viewport viewport.Model
}

// NewHelpOverlayModel creates a new help overlay. style is a glamour style
// name; "auto" picks one from the terminal background.
func NewHelpOverlayModel(theme Theme, keys KeyMap, style, endpoint string) HelpOverlayModel {
	return HelpOverlayModel{
		theme:    theme,
		keys:     keys,
		style:    style,
		endpoint: endpoint,
		viewport: viewport.New(60, 20),
	}
}

// Show makes the overlay visible on the given page
func (m *HelpOverlayModel) Show(page Page) {
	m.page = page
	m.visible = true
	m.viewport.SetContent(m.render())
	m.viewport.GotoTop()
}

// Hide makes the help overlay invisible
func (m *HelpOverlayModel) Hide() {
	m.visible = false
}

// IsVisible returns true if overlay is showing
func (m HelpOverlayModel) IsVisible() bool {
	return m.visible
}

// Page returns the page on display.
func (m HelpOverlayModel) Page() Page {
	return m.page
}

// SetSize sets dimensions
func (m *HelpOverlayModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	w := width - 10
	if w > 80 {
		w = 80
	}
	if w < 30 {
		w = 30
	}
	h := height - 8
	if h < 5 {
		h = 5
	}
	m.viewport.Width = w
	m.viewport.Height = h
	if m.visible {
		m.viewport.SetContent(m.render())
	}
}

// Update handles input
func (m HelpOverlayModel) Update(msg tea.Msg) (HelpOverlayModel, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "up", "k", "down", "j", "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		// Any other key closes help
		m.visible = false
	}
	return m, nil
}

// View renders the overlay
func (m HelpOverlayModel) View() string {
	if !m.visible {
		return ""
	}
	hint := m.theme.Renderer.NewStyle().Faint(true).Italic(true).
		Render("[↑/↓ scroll, any other key closes]")
	return m.theme.Modal(m.theme.Secondary).Render(m.viewport.View() + "\n" + hint)
}

func (m HelpOverlayModel) render() string {
	md := helpMarkdown(m.keys)
	if m.page == PageAbout {
		md = aboutMarkdown(m.endpoint)
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(m.viewport.Width - 2)}
	if m.style == "" || m.style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(m.style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}

func helpMarkdown(keys KeyMap) string {
	var b strings.Builder
	b.WriteString("# Ontology Lookup Service\n\n")
	b.WriteString("Pick an ontology, find a term with one of the four searches, ")
	b.WriteString("inspect its details and use it.\n\n")

	b.WriteString("## Searches\n\n")
	b.WriteString("* **Term Name Search**: results update while you type, once at least three characters are entered.\n")
	b.WriteString("* **Term ID Search**: type an accession such as `GO:0008150` and press Enter.\n")
	b.WriteString("* **PSI-MOD Mass Search**: fill in mass, accuracy and mass type. PSI-MOD is selected while this tab is active.\n")
	b.WriteString("* **Browse Ontology**: walk the ontology tree. Not available for NEWT or when several ontologies are searched.\n\n")

	b.WriteString("## Keys\n\n")
	b.WriteString("| Key | Action |\n|---|---|\n")
	for _, group := range keys.FullHelp() {
		for _, binding := range group {
			writeBinding(&b, binding)
		}
	}
	b.WriteString("\nSingle letter keys apply when no text field has focus; press Tab to leave a field.\n")
	return b.String()
}

func writeBinding(b *strings.Builder, binding key.Binding) {
	h := binding.Help()
	if h.Key == "" {
		return
	}
	fmt.Fprintf(b, "| `%s` | %s |\n", h.Key, h.Desc)
}

func aboutMarkdown(endpoint string) string {
	var b strings.Builder
	b.WriteString("# ols-dialog\n\n")
	fmt.Fprintf(&b, "Version %s\n\n", version.Info())
	b.WriteString("A terminal dialog for the Ontology Lookup Service (OLS). ")
	b.WriteString("Search ontology terms by name, accession, PSI-MOD mass delta or by browsing, ")
	b.WriteString("and hand the chosen term back to the calling program.\n\n")
	if endpoint != "" {
		fmt.Fprintf(&b, "Service endpoint: `%s`\n\n", endpoint)
	}
	b.WriteString("The OLS is provided by the European Bioinformatics Institute.\n")
	return b.String()
}
