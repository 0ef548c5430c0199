package lookup

import (
	"testing"

	"github.com/compomics/ols-dialog/pkg/model"
	"github.com/compomics/ols-dialog/pkg/ontology"
)

func testChoices() []ontology.Choice {
	return []ontology.Choice{
		{Kind: ontology.KindAll},
		{Kind: ontology.KindSingle, Key: "EFO", Name: "Experimental Factor Ontology"},
		{Kind: ontology.KindSingle, Key: "GO", Name: "Gene Ontology"},
		{Kind: ontology.KindSingle, Key: "NEWT", Name: "NEWT UniProt Taxonomy Database"},
		{Kind: ontology.KindSingle, Key: "MOD", Name: "Protein Modifications (PSI-MOD)"},
	}
}

func TestState_SelectChoicePrefill(t *testing.T) {
	s := NewState(testChoices(), 0, model.ModeTermName)
	tests := []struct {
		idx  int
		want string
	}{
		{2, "GO:"},
		{1, "EFO_"},
		{3, ""},
		{0, ""},
	}
	for _, tt := range tests {
		change := s.SelectChoice(tt.idx)
		if !change.Changed {
			t.Errorf("SelectChoice(%d) not applied", tt.idx)
		}
		if change.Prefill != tt.want {
			t.Errorf("SelectChoice(%d) prefill = %q, want %q", tt.idx, change.Prefill, tt.want)
		}
	}
}

func TestState_SelectChoiceClearsSelections(t *testing.T) {
	s := NewState(testChoices(), 2, model.ModeTermName)
	s.Select(model.ModeTermName, "GO:1")
	s.Select(model.ModeTermID, "GO:2")
	s.Select(model.ModeModMass, "MOD:1")
	if !s.CanUseSelected() {
		t.Fatal("selection should be usable")
	}

	s.SelectChoice(4)
	if s.Selected(model.ModeTermName) != "" || s.Selected(model.ModeTermID) != "" {
		t.Error("term name and id selections should be cleared")
	}
	if s.Selected(model.ModeModMass) != "MOD:1" {
		t.Error("mass selection should survive")
	}
	if s.CanUseSelected() {
		t.Error("nothing should be usable after clearing")
	}

	if change := s.SelectChoice(4); change.Changed {
		t.Error("re-selecting the same entry should be a no-op")
	}
}

func TestState_LeaveBrowse(t *testing.T) {
	s := NewState(testChoices(), 2, model.ModeBrowse)
	if s.Mode() != model.ModeBrowse {
		t.Fatalf("mode = %v, want browse", s.Mode())
	}

	change := s.SelectChoice(3)
	if !change.LeftBrowse || change.Notice != ErrBrowseNEWT {
		t.Errorf("change = %+v", change)
	}
	if s.Mode() != model.ModeTermName {
		t.Errorf("mode = %v, want term name", s.Mode())
	}

	s.SelectChoice(2)
	s.SwitchMode(model.ModeBrowse)
	change = s.SelectChoice(0)
	if change.Notice != ErrBrowseMultiple {
		t.Errorf("notice = %+v", change.Notice)
	}
}

func TestState_BrowseRefused(t *testing.T) {
	s := NewState(testChoices(), 0, model.ModeBrowse)
	if s.Mode() != model.ModeTermName {
		t.Errorf("start mode = %v, want term name", s.Mode())
	}
	if s.SwitchMode(model.ModeBrowse).Switched {
		t.Error("browse should be refused for all ontologies")
	}
}

func TestState_MassTabLocksMOD(t *testing.T) {
	s := NewState(testChoices(), 2, model.ModeTermName)

	change := s.SwitchMode(model.ModeModMass)
	if !change.Switched || !change.ChoiceChanged {
		t.Fatalf("change = %+v", change)
	}
	if s.Choice().Key != "MOD" || !s.ChoiceLocked() {
		t.Errorf("choice = %q locked=%v", s.Choice().Key, s.ChoiceLocked())
	}
	if change.Prefill != "MOD:" {
		t.Errorf("prefill = %q", change.Prefill)
	}

	if s.SelectChoice(1).Changed {
		t.Error("selector should be locked on the mass tab")
	}

	change = s.SwitchMode(model.ModeTermID)
	if !change.ChoiceChanged || s.Choice().Key != "GO" {
		t.Errorf("previous choice not restored: %q", s.Choice().Key)
	}
	if s.ChoiceLocked() {
		t.Error("selector should unlock")
	}
}

func TestState_NewtTips(t *testing.T) {
	s := NewState(testChoices(), 3, model.ModeTermName)
	if !s.NewtTips() {
		t.Error("NEWT tips expected on term name tab")
	}
	s.SwitchMode(model.ModeTermID)
	if !s.NewtTips() {
		t.Error("NEWT tips expected on term id tab")
	}
	s.SwitchMode(model.ModeModMass)
	if s.NewtTips() {
		t.Error("no NEWT tips on mass tab")
	}
}

func TestState_PlaceholderNotUsable(t *testing.T) {
	s := NewState(testChoices(), 2, model.ModeBrowse)
	s.Select(model.ModeBrowse, model.NoRootTermsID)
	if s.CanUseSelected() {
		t.Error("placeholder node must not be usable")
	}
}
