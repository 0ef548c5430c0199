package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// MaxValueWidth is the width long metadata values are wrapped at.
const MaxValueWidth = 40

// wrapValue breaks s into lines of at most width cells. Lines break at the
// last space; a run without spaces is split with a trailing hyphen.
func wrapValue(s string, width int) []string {
	if width < 2 || runewidth.StringWidth(s) <= width {
		return []string{s}
	}

	var lines []string
	var line []rune
	lastSpace := -1
	for _, r := range s {
		line = append(line, r)
		if r == ' ' {
			lastSpace = len(line) - 1
		}
		if runewidth.StringWidth(string(line)) <= width {
			continue
		}
		if lastSpace > 0 {
			lines = append(lines, strings.TrimRight(string(line[:lastSpace]), " "))
			line = append([]rune(nil), line[lastSpace+1:]...)
		} else {
			head := line[:len(line)-1]
			for runewidth.StringWidth(string(head))+1 > width && len(head) > 1 {
				head = head[:len(head)-1]
			}
			lines = append(lines, string(head)+"-")
			line = append([]rune(nil), line[len(head):]...)
		}
		lastSpace = -1
		for i, c := range line {
			if c == ' ' {
				lastSpace = i
			}
		}
	}
	if len(line) > 0 {
		lines = append(lines, string(line))
	}
	return lines
}

// truncate shortens s to width cells with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}
