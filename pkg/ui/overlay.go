package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/ansi"
	reflowtrunc "github.com/muesli/reflow/truncate"
)

// cutAfterWidth returns the portion of s after skipping startWidth visual cells
func cutAfterWidth(s string, startWidth int) string {
	if startWidth <= 0 {
		return s
	}
	w := 0
	inEscape := false
	for i, r := range s {
		if r == ansi.Marker {
			inEscape = true
		}
		if inEscape {
			if ansi.IsTerminator(r) {
				inEscape = false
			}
			continue
		}
		if w >= startWidth {
			return s[i:]
		}
		w += ansi.PrintableRuneWidth(string(r))
	}
	return ""
}

// placeOverlay renders a modal centered over the base view, preserving the
// background around it.
func placeOverlay(width, height int, base, modal string) string {
	modalWidth := lipgloss.Width(modal)
	modalHeight := lipgloss.Height(modal)

	baseLines := strings.Split(base, "\n")
	for len(baseLines) < height {
		baseLines = append(baseLines, "")
	}
	modalLines := strings.Split(modal, "\n")

	startRow := (height - modalHeight) / 2
	startCol := (width - modalWidth) / 2
	if startRow < 0 {
		startRow = 0
	}
	if startCol < 0 {
		startCol = 0
	}

	for i, modalLine := range modalLines {
		row := startRow + i
		if row < 0 || row >= len(baseLines) {
			continue
		}
		baseLine := baseLines[row]
		baseLineWidth := ansi.PrintableRuneWidth(baseLine)
		modalLineWidth := ansi.PrintableRuneWidth(modalLine)

		var newLine strings.Builder
		if startCol > 0 {
			if baseLineWidth >= startCol {
				newLine.WriteString(reflowtrunc.String(baseLine, uint(startCol)))
			} else {
				newLine.WriteString(baseLine)
				newLine.WriteString(strings.Repeat(" ", startCol-baseLineWidth))
			}
		}
		newLine.WriteString(modalLine)

		rightStart := startCol + modalLineWidth
		if rightStart < baseLineWidth {
			newLine.WriteString(cutAfterWidth(baseLine, rightStart))
		}
		baseLines[row] = newLine.String()
	}

	return strings.Join(baseLines, "\n")
}
