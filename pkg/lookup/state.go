package lookup

import (
	"github.com/compomics/ols-dialog/pkg/model"
	"github.com/compomics/ols-dialog/pkg/ontology"
)

// State tracks the ontology choice, the active tab and the accession
// selected on each tab. It is owned by the UI loop and not safe for
// concurrent use.
type State struct {
	choices  []ontology.Choice
	current  int
	last     int // choice to restore when leaving the mass tab
	mode     model.SearchMode
	selected [model.ModeBrowse + 1]string
}

// NewState starts on the given choice and tab. A mode that is unavailable for
// the choice falls back to term name search.
func NewState(choices []ontology.Choice, current int, mode model.SearchMode) *State {
	if current < 0 || current >= len(choices) {
		current = 0
	}
	s := &State{choices: choices, current: current, last: current}
	if !mode.IsValid() {
		mode = model.ModeTermName
	}
	s.SwitchMode(mode)
	return s
}

// Choices returns the selector entries.
func (s *State) Choices() []ontology.Choice {
	return s.choices
}

// Index is the position of the current choice.
func (s *State) Index() int {
	return s.current
}

// Choice is the current ontology scope.
func (s *State) Choice() ontology.Choice {
	if len(s.choices) == 0 {
		return ontology.Choice{Kind: ontology.KindAll}
	}
	return s.choices[s.current]
}

// Mode is the active tab.
func (s *State) Mode() model.SearchMode {
	return s.mode
}

// ChoiceLocked reports whether the ontology selector is disabled.
func (s *State) ChoiceLocked() bool {
	return s.mode == model.ModeModMass
}

// BrowseEnabled reports whether the browse tab can be used.
func (s *State) BrowseEnabled() bool {
	return s.Choice().BrowseEnabled()
}

// NewtTips reports whether the species picker is offered on the active tab.
func (s *State) NewtTips() bool {
	if !s.Choice().IsNEWT() {
		return false
	}
	return s.mode == model.ModeTermName || s.mode == model.ModeTermID
}

// TermIDPrefill is the text the term ID field starts with for the current choice.
func (s *State) TermIDPrefill() string {
	c := s.Choice()
	if c.IsMulti() {
		return ""
	}
	return model.TermIDPrefix(c.Key)
}

// ChoiceChange describes the effects of picking another ontology.
type ChoiceChange struct {
	// Changed is false when the pick was ignored or picked the same entry.
	Changed bool
	Prefill string
	// LeftBrowse is set when the browse tab had to be left; Notice explains why.
	LeftBrowse bool
	Notice     *NoticeError
}

// SelectChoice picks another ontology. Selections on the term name, term ID
// and browse tabs are cleared.
func (s *State) SelectChoice(i int) ChoiceChange {
	if i < 0 || i >= len(s.choices) || s.ChoiceLocked() {
		return ChoiceChange{Prefill: s.TermIDPrefill()}
	}
	if i == s.current {
		return ChoiceChange{Prefill: s.TermIDPrefill()}
	}

	s.current = i
	s.last = i
	s.selected[model.ModeTermName] = ""
	s.selected[model.ModeTermID] = ""
	s.selected[model.ModeBrowse] = ""

	change := ChoiceChange{Changed: true, Prefill: s.TermIDPrefill()}
	if s.mode == model.ModeBrowse && !s.BrowseEnabled() {
		s.mode = model.ModeTermName
		change.LeftBrowse = true
		if s.Choice().IsNEWT() {
			change.Notice = ErrBrowseNEWT
		} else {
			change.Notice = ErrBrowseMultiple
		}
	}
	return change
}

// ModeChange describes the effects of switching tabs.
type ModeChange struct {
	Switched bool
	// ChoiceChanged is set when the mass tab forced or released PSI-MOD.
	ChoiceChanged bool
	Prefill       string
}

// SwitchMode activates a tab. The mass tab selects PSI-MOD and locks the
// selector; leaving it restores the previous choice. Browse is refused when
// the current choice cannot be browsed.
func (s *State) SwitchMode(mode model.SearchMode) ModeChange {
	if !mode.IsValid() || mode == s.mode && s.current == s.expectedChoice(mode) {
		return ModeChange{Prefill: s.TermIDPrefill()}
	}
	if mode == model.ModeBrowse && !s.choiceFor(s.last).BrowseEnabled() {
		return ModeChange{Prefill: s.TermIDPrefill()}
	}

	prev := s.current
	if mode == model.ModeModMass {
		if s.mode != model.ModeModMass {
			s.last = s.current
		}
		if idx := ontology.IndexOfKey(s.choices, model.MOD); idx != -1 {
			s.current = idx
		}
	} else {
		s.current = s.last
	}
	s.mode = mode

	return ModeChange{
		Switched:      true,
		ChoiceChanged: prev != s.current,
		Prefill:       s.TermIDPrefill(),
	}
}

func (s *State) expectedChoice(mode model.SearchMode) int {
	if mode == model.ModeModMass {
		if idx := ontology.IndexOfKey(s.choices, model.MOD); idx != -1 {
			return idx
		}
		return s.current
	}
	return s.last
}

func (s *State) choiceFor(i int) ontology.Choice {
	if i < 0 || i >= len(s.choices) {
		return ontology.Choice{Kind: ontology.KindAll}
	}
	return s.choices[i]
}

// Select records the accession chosen on a tab.
func (s *State) Select(mode model.SearchMode, termID string) {
	if mode.IsValid() {
		s.selected[mode] = termID
	}
}

// Clear forgets the accession chosen on a tab.
func (s *State) Clear(mode model.SearchMode) {
	s.Select(mode, "")
}

// Selected returns the accession chosen on a tab.
func (s *State) Selected(mode model.SearchMode) string {
	if !mode.IsValid() {
		return ""
	}
	return s.selected[mode]
}

// Current returns the accession chosen on the active tab.
func (s *State) Current() string {
	return s.Selected(s.mode)
}

// CanUseSelected reports whether the active tab has a term to hand back.
func (s *State) CanUseSelected() bool {
	id := s.Current()
	return id != "" && id != model.NoRootTermsID
}
