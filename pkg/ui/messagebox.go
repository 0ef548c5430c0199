package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// MessageKind selects the colour of a message box.
type MessageKind int

const (
	MessageNotice MessageKind = iota
	MessageError
)

// MessageBoxModel is a modal message closed by any key
type MessageBoxModel struct {
	visible bool
	kind    MessageKind
	title   string
	message string
	theme   Theme
}

// NewMessageBox creates a hidden message box.
func NewMessageBox(theme Theme) MessageBoxModel {
	return MessageBoxModel{theme: theme}
}

// Show displays a message.
func (m *MessageBoxModel) Show(kind MessageKind, title, message string) {
	m.visible = true
	m.kind = kind
	m.title = title
	m.message = message
}

// IsVisible returns true if the box is showing
func (m MessageBoxModel) IsVisible() bool {
	return m.visible
}

// Title returns the current title.
func (m MessageBoxModel) Title() string {
	return m.title
}

// Message returns the current message text.
func (m MessageBoxModel) Message() string {
	return m.message
}

// Update handles input
func (m MessageBoxModel) Update(msg tea.Msg) (MessageBoxModel, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok && m.visible {
		m.visible = false
	}
	return m, nil
}

// View renders the box
func (m MessageBoxModel) View() string {
	if !m.visible {
		return ""
	}
	t := m.theme
	color := t.Info
	if m.kind == MessageError {
		color = t.Danger
	}

	var b strings.Builder
	b.WriteString(t.Renderer.NewStyle().Bold(true).Foreground(color).Render(m.title))
	b.WriteString("\n\n")
	b.WriteString(t.Renderer.NewStyle().Foreground(t.Text).Render(m.message))
	b.WriteString("\n\n")
	b.WriteString(t.Renderer.NewStyle().Faint(true).Italic(true).Render("[Press any key to close]"))

	width := lipgloss.Width(b.String()) + 6
	if width < 40 {
		width = 40
	}
	return t.Modal(color).Width(width).Render(b.String())
}
