// Package ontology builds the list of search scopes offered by the ontology
// selector: every ontology, a preselected subset, or a single ontology that may
// be rooted at a given term.
package ontology

import (
	"context"
	"sort"
	"strings"

	"github.com/compomics/ols-dialog/pkg/model"
)

// Labels of the two synthetic scopes.
const (
	AllLabel         = "-- Search in All Ontologies available in the OLS registry --"
	PreselectedLabel = "-- Search in these preselected Ontologies --"
)

// Kind distinguishes synthetic scopes from single ontologies
type Kind int

const (
	KindAll Kind = iota
	KindPreselected
	KindSingle
)

// Choice is one entry of the ontology selector
type Choice struct {
	Kind           Kind
	Key            string
	Name           string
	ParentTermID   string // set when the choice is rooted at a term
	ParentTermName string
}

// Label is the text shown for the choice.
func (c Choice) Label() string {
	switch c.Kind {
	case KindAll:
		return AllLabel
	case KindPreselected:
		return PreselectedLabel
	}
	label := c.Name + " [" + c.Key + "]"
	if c.ParentTermID != "" {
		label += " / " + c.ParentTermName
	}
	return label
}

// IsMulti reports whether the choice spans several ontologies.
func (c Choice) IsMulti() bool {
	return c.Kind != KindSingle
}

// IsNEWT reports whether the choice is the NEWT taxonomy.
func (c Choice) IsNEWT() bool {
	return c.Kind == KindSingle && model.IsNEWT(c.Key)
}

// BrowseEnabled reports whether the ontology tree can be browsed for the choice.
func (c Choice) BrowseEnabled() bool {
	return c.Kind == KindSingle && !c.IsNEWT()
}

// TreeLabel is the label of the browse tree's root node.
func (c Choice) TreeLabel() string {
	if c.ParentTermID != "" && c.ParentTermName != "" {
		return "[" + c.ParentTermID + "] " + c.ParentTermName
	}
	return c.Key
}

// Ontology returns the key to send to the service, empty for multi-ontology scopes.
func (c Choice) Ontology() string {
	if c.IsMulti() {
		return ""
	}
	return c.Key
}

// Preselected restricts the selector to some ontologies. A nil term list
// offers the whole ontology; otherwise one entry per root term is offered.
type Preselected map[string][]string

// Keys returns the upper-cased ontology keys in sorted order.
func (p Preselected) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, strings.ToUpper(k))
	}
	sort.Strings(keys)
	return keys
}

func (p Preselected) lookup(key string) ([]string, bool) {
	for k, v := range p {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

// TermNameFunc resolves a term name, as getTermById does.
type TermNameFunc func(ctx context.Context, termID, ontology string) (string, error)

// BuildResult is the outcome of Build
type BuildResult struct {
	Choices []Choice
	// Missing lists preselected keys the registry did not offer.
	Missing []string
}

// Build assembles the selector entries from the registry. Singles are sorted by
// label; "All" is always first and "preselected" second when more than one
// ontology was preselected.
func Build(ctx context.Context, names []model.Ontology, pre Preselected, termName TermNameFunc) (BuildResult, error) {
	var singles []Choice
	seen := make(map[string]bool)

	for _, o := range names {
		if len(pre) == 0 {
			singles = append(singles, Choice{Kind: KindSingle, Key: o.Key, Name: o.Name})
			continue
		}
		termIDs, ok := pre.lookup(o.Key)
		if !ok {
			continue
		}
		seen[strings.ToUpper(o.Key)] = true
		if len(termIDs) == 0 {
			singles = append(singles, Choice{Kind: KindSingle, Key: o.Key, Name: o.Name})
			continue
		}
		for _, id := range termIDs {
			name := ""
			if termName != nil {
				n, err := termName(ctx, id, o.Key)
				if err != nil {
					return BuildResult{}, err
				}
				name = n
			}
			if name == "" {
				name = id
			}
			singles = append(singles, Choice{
				Kind:           KindSingle,
				Key:            o.Key,
				Name:           o.Name,
				ParentTermID:   id,
				ParentTermName: name,
			})
		}
	}

	sort.SliceStable(singles, func(i, j int) bool {
		return singles[i].Label() < singles[j].Label()
	})

	choices := make([]Choice, 0, len(singles)+2)
	choices = append(choices, Choice{Kind: KindAll})
	if len(pre) > 1 {
		choices = append(choices, Choice{Kind: KindPreselected})
	}
	choices = append(choices, singles...)

	var missing []string
	for _, k := range pre.Keys() {
		if !seen[k] {
			missing = append(missing, k)
		}
	}

	return BuildResult{Choices: choices, Missing: missing}, nil
}

// Find returns the index of the choice whose label or key matches wanted,
// ignoring case. Unknown or empty values select the first entry.
func Find(choices []Choice, wanted string) int {
	wanted = strings.TrimSpace(wanted)
	if wanted == "" {
		return 0
	}
	for i, c := range choices {
		if strings.EqualFold(c.Label(), wanted) {
			return i
		}
	}
	for i, c := range choices {
		if c.Kind == KindSingle && c.ParentTermID == "" && strings.EqualFold(c.Key, wanted) {
			return i
		}
	}
	return 0
}

// IndexOfKey returns the first single, unrooted choice for the ontology key, or -1.
func IndexOfKey(choices []Choice, key string) int {
	for i, c := range choices {
		if c.Kind == KindSingle && c.ParentTermID == "" && strings.EqualFold(c.Key, key) {
			return i
		}
	}
	return -1
}

// ParseKey extracts the ontology key from a selector label such as
// "Gene Ontology [GO]" or "Gene Ontology [GO] / cellular_component".
// Labels without brackets are returned unchanged.
func ParseKey(label string) string {
	if i := strings.LastIndex(label, "["); i != -1 {
		label = label[i+1:]
	}
	if i := strings.LastIndex(label, "]"); i != -1 {
		label = label[:i]
	}
	return label
}

// ParseTermLabel returns the root term name of a term-rooted label, or "".
func ParseTermLabel(label string) string {
	if i := strings.LastIndex(label, "/ "); i != -1 {
		return label[i+2:]
	}
	return ""
}
