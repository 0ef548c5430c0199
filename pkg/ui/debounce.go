package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultDebounceDuration is the pause after the last keystroke before a
// term name search is sent.
const DefaultDebounceDuration = 250 * time.Millisecond

type debounceMsg struct {
	seq uint64
}

// debouncer coalesces rapid edits into a single search. Only the tick of the
// most recent Trigger fires; older ticks are recognised by their sequence
// number and dropped.
type debouncer struct {
	duration time.Duration
	seq      uint64
}

func newDebouncer(duration time.Duration) debouncer {
	if duration <= 0 {
		duration = DefaultDebounceDuration
	}
	return debouncer{duration: duration}
}

// Trigger schedules a tick, superseding any pending one.
func (d *debouncer) Trigger() tea.Cmd {
	d.seq++
	seq := d.seq
	return tea.Tick(d.duration, func(time.Time) tea.Msg {
		return debounceMsg{seq: seq}
	})
}

// Fire reports whether msg belongs to the latest Trigger.
func (d *debouncer) Fire(msg debounceMsg) bool {
	return msg.seq == d.seq
}

// Cancel invalidates any pending tick.
func (d *debouncer) Cancel() {
	d.seq++
}
