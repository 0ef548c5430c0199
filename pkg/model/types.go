package model

import (
	"fmt"
	"strings"
)

// Well-known ontology keys that change dialog behaviour.
const (
	NEWT = "NEWT"
	EFO  = "EFO"
	MOD  = "MOD"
)

// NoRootTermsID is the placeholder node shown when an ontology reports no roots.
const NoRootTermsID = "No Root Terms Defined!"

// NEWTLongName is the display name used when a NEWT term is selected from a
// multi-ontology search.
const NEWTLongName = "NEWT UniProt Taxonomy Database [NEWT]"

// Ontology is an entry of the service's ontology registry
type Ontology struct {
	Key  string `json:"key" yaml:"key"`
	Name string `json:"name" yaml:"name"`
}

// Label renders the ontology the way it appears in the ontology selector.
func (o Ontology) Label() string {
	return fmt.Sprintf("%s [%s]", o.Name, o.Key)
}

// Term is a named concept within an ontology
type Term struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Pair is an ordered key/value entry, used for metadata and cross-references
type Pair struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// TermDetails holds everything shown in the "Selected Term" pane
type TermDetails struct {
	TermID     string `json:"term_id" yaml:"term_id"`
	Ontology   string `json:"ontology,omitempty" yaml:"ontology,omitempty"`
	Definition string `json:"definition" yaml:"definition"`
	Metadata   []Pair `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Xrefs      []Pair `json:"xrefs,omitempty" yaml:"xrefs,omitempty"`

	// Disabled is set when details cannot be retrieved for this ontology (NEWT).
	Disabled bool   `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Message  string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Empty reports whether the service returned nothing for the term.
func (d TermDetails) Empty() bool {
	return len(d.Metadata) == 0 && len(d.Xrefs) == 0 && d.Definition == ""
}

// MetadataMap flattens metadata and the definition into a map, as handed to hosts.
func (d TermDetails) MetadataMap() map[string]string {
	if len(d.Metadata) == 0 && d.Definition == "" {
		return nil
	}
	m := make(map[string]string, len(d.Metadata)+1)
	for _, p := range d.Metadata {
		m[p.Key] = p.Value
	}
	if d.Definition != "" {
		m["definition"] = d.Definition
	}
	return m
}

// ModificationHit is one row of a PSI-MOD mass search
type ModificationHit struct {
	TermID    string   `json:"term_id" yaml:"term_id"`
	TermName  string   `json:"term_name" yaml:"term_name"`
	MassDelta float64  `json:"mass_delta" yaml:"mass_delta"`
	MassType  MassType `json:"mass_type,omitempty" yaml:"mass_type,omitempty"`
}

// Term returns the hit as a plain term.
func (h ModificationHit) Term() Term {
	return Term{ID: h.TermID, Name: h.TermName}
}

// Selection is the term handed back to the host once the user confirms a choice
type Selection struct {
	Field         string            `json:"field,omitempty" yaml:"field,omitempty"`
	Value         string            `json:"value" yaml:"value"`
	TermID        string            `json:"term_id" yaml:"term_id"`
	OntologyShort string            `json:"ontology_short" yaml:"ontology_short"`
	OntologyLong  string            `json:"ontology_long" yaml:"ontology_long"`
	ModifiedRow   int               `json:"modified_row" yaml:"modified_row"`
	MappedTerm    string            `json:"mapped_term,omitempty" yaml:"mapped_term,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Validate checks if the selection is complete enough to hand to a host
func (s *Selection) Validate() error {
	if s.TermID == "" {
		return fmt.Errorf("selection term ID cannot be empty")
	}
	if s.OntologyShort == "" {
		return fmt.Errorf("selection ontology cannot be empty")
	}
	return nil
}

// SearchMode identifies one of the dialog's search tabs
type SearchMode int

const (
	ModeTermName SearchMode = iota
	ModeTermID
	ModeModMass
	ModeBrowse
)

// AllSearchModes lists the tabs in display order.
var AllSearchModes = []SearchMode{ModeTermName, ModeTermID, ModeModMass, ModeBrowse}

// IsValid returns true if the mode is a recognized value
func (m SearchMode) IsValid() bool {
	return m >= ModeTermName && m <= ModeBrowse
}

func (m SearchMode) String() string {
	switch m {
	case ModeTermName:
		return "name"
	case ModeTermID:
		return "id"
	case ModeModMass:
		return "mass"
	case ModeBrowse:
		return "browse"
	}
	return "unknown"
}

// Title is the tab caption.
func (m SearchMode) Title() string {
	switch m {
	case ModeTermName:
		return "Term Name Search"
	case ModeTermID:
		return "Term ID Search"
	case ModeModMass:
		return "PSI-MOD Mass Search"
	case ModeBrowse:
		return "Browse Ontology"
	}
	return "Unknown"
}

// ParseSearchMode accepts the short names printed by String.
func ParseSearchMode(s string) (SearchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "name", "term-name":
		return ModeTermName, nil
	case "id", "term-id":
		return ModeTermID, nil
	case "mass", "mod-mass":
		return ModeModMass, nil
	case "browse", "tree":
		return ModeBrowse, nil
	}
	return ModeTermName, fmt.Errorf("invalid search mode: %q", s)
}

// MassType is the PSI-MOD annotation used for mass searches
type MassType string

const (
	MassDiffAvg  MassType = "DiffAvg"
	MassDiffMono MassType = "DiffMono"
	MassAvg      MassType = "MassAvg"
	MassMono     MassType = "MassMono"
)

// AllMassTypes lists the selectable mass annotations in display order.
var AllMassTypes = []MassType{MassDiffAvg, MassDiffMono, MassAvg, MassMono}

// IsValid returns true if the mass type is a recognized value
func (t MassType) IsValid() bool {
	switch t {
	case MassDiffAvg, MassDiffMono, MassAvg, MassMono:
		return true
	}
	return false
}

// ParseMassType matches case-insensitively against the known mass types.
func ParseMassType(s string) (MassType, error) {
	for _, t := range AllMassTypes {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("invalid mass type: %q", s)
}
