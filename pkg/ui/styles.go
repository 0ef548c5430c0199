package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ══════════════════════════════════════════════════════════════════════════════
// DESIGN TOKENS - colors and visual language
// ══════════════════════════════════════════════════════════════════════════════

// ══════════════════════════════════════════════════════════════════════════════
// COLOR PALETTE - Dracula-inspired, with light-terminal fallbacks
// ══════════════════════════════════════════════════════════════════════════════

var (
	ColorText      = lipgloss.AdaptiveColor{Light: "#1E1F29", Dark: "#F8F8F2"}
	ColorSubtext   = lipgloss.AdaptiveColor{Light: "#44475A", Dark: "#BFBFBF"}
	ColorMuted     = lipgloss.AdaptiveColor{Light: "#8A8FA8", Dark: "#6272A4"}
	ColorHighlight = lipgloss.AdaptiveColor{Light: "#DADCE8", Dark: "#44475A"}

	ColorPrimary   = lipgloss.AdaptiveColor{Light: "#7C4DCC", Dark: "#BD93F9"}
	ColorSecondary = lipgloss.AdaptiveColor{Light: "#4A5A8A", Dark: "#6272A4"}
	ColorInfo      = lipgloss.AdaptiveColor{Light: "#0E7C99", Dark: "#8BE9FD"}
	ColorSuccess   = lipgloss.AdaptiveColor{Light: "#1E8C3A", Dark: "#50FA7B"}
	ColorWarning   = lipgloss.AdaptiveColor{Light: "#B35C00", Dark: "#FFB86C"}
	ColorDanger    = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#FF5555"}
)

// Theme binds the palette to a renderer, so output written to stderr or a
// test buffer gets the right color profile.
type Theme struct {
	Renderer *lipgloss.Renderer

	Text      lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Info      lipgloss.AdaptiveColor
	Success   lipgloss.AdaptiveColor
	Warning   lipgloss.AdaptiveColor
	Danger    lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
}

// DefaultTheme returns the standard palette for the given renderer.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return Theme{
		Renderer:  r,
		Text:      ColorText,
		Subtext:   ColorSubtext,
		Muted:     ColorMuted,
		Highlight: ColorHighlight,
		Primary:   ColorPrimary,
		Secondary: ColorSecondary,
		Info:      ColorInfo,
		Success:   ColorSuccess,
		Warning:   ColorWarning,
		Danger:    ColorDanger,
		Border:    ColorHighlight,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// PANEL STYLES - For split view layouts
// ══════════════════════════════════════════════════════════════════════════════

// Panel is the style for unfocused panels
func (t Theme) Panel() lipgloss.Style {
	return t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border)
}

// FocusedPanel is the style for the panel receiving keys
func (t Theme) FocusedPanel() lipgloss.Style {
	return t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary)
}

// Modal is the box used by every overlay.
func (t Theme) Modal(border lipgloss.AdaptiveColor) lipgloss.Style {
	return t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(1, 2)
}

// ══════════════════════════════════════════════════════════════════════════════
// TABS
// ══════════════════════════════════════════════════════════════════════════════

// RenderTab renders one tab caption. Disabled tabs are dimmed.
func (t Theme) RenderTab(title string, active, disabled bool) string {
	style := t.Renderer.NewStyle().Padding(0, 1)
	switch {
	case active:
		style = style.Bold(true).Foreground(t.Primary).Underline(true)
	case disabled:
		style = style.Foreground(t.Muted).Strikethrough(true)
	default:
		style = style.Foreground(t.Subtext)
	}
	return style.Render(title)
}

// ══════════════════════════════════════════════════════════════════════════════
// DIVIDERS AND SEPARATORS
// ══════════════════════════════════════════════════════════════════════════════

// RenderDivider renders a horizontal divider line
func (t Theme) RenderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return t.Renderer.NewStyle().
		Foreground(t.Highlight).
		Render(strings.Repeat("─", width))
}
