package ui

import (
	"github.com/compomics/ols-dialog/pkg/ontology"
)

// ChoiceItem wraps an ontology choice to implement list.Item
type ChoiceItem struct {
	Choice ontology.Choice
	Index  int
}

func (i ChoiceItem) Title() string {
	return i.Choice.Label()
}

func (i ChoiceItem) Description() string {
	switch i.Choice.Kind {
	case ontology.KindAll:
		return "every ontology in the registry"
	case ontology.KindPreselected:
		return "the preselected ontologies"
	}
	if i.Choice.ParentTermID != "" {
		return i.Choice.Key + " below " + i.Choice.ParentTermID
	}
	return i.Choice.Key
}

func (i ChoiceItem) FilterValue() string {
	return i.Choice.Label() + " " + i.Choice.Key + " " + i.Choice.ParentTermID
}
