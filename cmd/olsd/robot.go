package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/compomics/ols-dialog/pkg/lookup"
	"github.com/compomics/ols-dialog/pkg/model"
	"github.com/compomics/ols-dialog/pkg/ontology"
	"github.com/compomics/ols-dialog/pkg/ui"
)

// robotFlags are the non-interactive queries. At most one may be given.
type robotFlags struct {
	ontologies bool
	searchName string
	searchID   string
	searchMass bool
	roots      bool
	children   string
	details    string
	resolve    string
}

func (r *robotFlags) addFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&r.ontologies, "robot-ontologies", false, "print the ontology selector entries")
	fs.StringVar(&r.searchName, "robot-search-name", "", "search term names in --ontology")
	fs.StringVar(&r.searchID, "robot-search-id", "", "look up a term accession in --ontology")
	fs.BoolVar(&r.searchMass, "robot-search-mass", false, "search PSI-MOD by --mass, --accuracy and --mass-type")
	fs.BoolVar(&r.roots, "robot-roots", false, "print the root terms of --ontology")
	fs.StringVar(&r.children, "robot-children", "", "print the children of a term")
	fs.StringVar(&r.details, "robot-details", "", "print the metadata and cross-references of a term")
	fs.StringVar(&r.resolve, "robot-resolve", "", "print the selection the dialog would return for a term")
}

func (r robotFlags) count() int {
	n := 0
	for _, set := range []bool{
		r.ontologies, r.searchName != "", r.searchID != "", r.searchMass,
		r.roots, r.children != "", r.details != "", r.resolve != "",
	} {
		if set {
			n++
		}
	}
	return n
}

func (r robotFlags) active() bool {
	return r.count() > 0
}

// robotInput carries the shared flags robot queries read.
type robotInput struct {
	pre      ontology.Preselected
	ontology string
	mass     string
	accuracy float64
	massType string
	request  lookup.Request
}

type choiceOutput struct {
	Label        string `json:"label" yaml:"label"`
	Kind         string `json:"kind" yaml:"kind"`
	Key          string `json:"key,omitempty" yaml:"key,omitempty"`
	Name         string `json:"name,omitempty" yaml:"name,omitempty"`
	ParentTermID string `json:"parent_term_id,omitempty" yaml:"parent_term_id,omitempty"`
	Selected     bool   `json:"selected,omitempty" yaml:"selected,omitempty"`
}

type termsOutput struct {
	Ontology string       `json:"ontology" yaml:"ontology"`
	Query    string       `json:"query,omitempty" yaml:"query,omitempty"`
	Parent   string       `json:"parent,omitempty" yaml:"parent,omitempty"`
	Count    int          `json:"count" yaml:"count"`
	Terms    []model.Term `json:"terms" yaml:"terms"`
}

type massOutput struct {
	Mass     float64                 `json:"mass" yaml:"mass"`
	Accuracy float64                 `json:"accuracy" yaml:"accuracy"`
	Type     model.MassType          `json:"mass_type" yaml:"mass_type"`
	From     float64                 `json:"from" yaml:"from"`
	To       float64                 `json:"to" yaml:"to"`
	Count    int                     `json:"count" yaml:"count"`
	Hits     []model.ModificationHit `json:"hits" yaml:"hits"`
}

func kindName(k ontology.Kind) string {
	switch k {
	case ontology.KindAll:
		return "all"
	case ontology.KindPreselected:
		return "preselected"
	}
	return "single"
}

func (r robotFlags) run(ctx context.Context, l ui.Lookup, in robotInput, format string, w io.Writer) error {
	if r.count() > 1 {
		return &exitError{code: 2, msg: "only one --robot-* flag may be given"}
	}

	v, err := r.query(ctx, l, in)
	if err != nil {
		return robotError(err, l)
	}
	return writeOutput(w, format, v)
}

func (r robotFlags) query(ctx context.Context, l ui.Lookup, in robotInput) (any, error) {
	switch {
	case r.details != "":
		return l.Details(ctx, r.details)

	case r.searchMass:
		q, err := lookup.ParseMassQuery(in.mass, fmt.Sprint(in.accuracy), in.massType)
		if err != nil {
			return nil, err
		}
		hits, err := l.SearchMass(ctx, q)
		if err != nil {
			return nil, err
		}
		from, to := q.Window()
		return massOutput{
			Mass: q.Mass, Accuracy: q.Accuracy, Type: q.Type,
			From: from, To: to, Count: len(hits), Hits: hits,
		}, nil
	}

	choices, idx, err := l.LoadOntologies(ctx, in.pre, in.ontology)
	if err != nil {
		return nil, err
	}
	choice := choices[idx]

	switch {
	case r.ontologies:
		out := make([]choiceOutput, len(choices))
		for i, c := range choices {
			out[i] = choiceOutput{
				Label:        c.Label(),
				Kind:         kindName(c.Kind),
				Key:          c.Key,
				Name:         c.Name,
				ParentTermID: c.ParentTermID,
				Selected:     i == idx,
			}
		}
		return out, nil

	case r.searchName != "":
		terms, err := l.SearchTermName(ctx, choice, r.searchName)
		if err != nil {
			return nil, err
		}
		return termsOutput{Ontology: choice.Label(), Query: r.searchName, Count: len(terms), Terms: terms}, nil

	case r.searchID != "":
		return l.SearchTermID(ctx, choice, r.searchID)

	case r.roots:
		if !choice.BrowseEnabled() {
			if choice.IsNEWT() {
				return nil, lookup.ErrBrowseNEWT
			}
			return nil, lookup.ErrBrowseMultiple
		}
		terms, err := l.Roots(ctx, choice)
		if err != nil {
			return nil, err
		}
		return termsOutput{Ontology: choice.Label(), Count: len(terms), Terms: terms}, nil

	case r.children != "":
		key := choice.Key
		if choice.IsMulti() {
			key, _ = model.OntologyFromTermID(r.children)
		}
		terms, err := l.Children(ctx, key, r.children)
		if err != nil {
			return nil, err
		}
		return termsOutput{Ontology: key, Parent: r.children, Count: len(terms), Terms: terms}, nil

	case r.resolve != "":
		d, err := l.Details(ctx, r.resolve)
		if err != nil {
			return nil, err
		}
		return l.Resolve(ctx, choice, r.resolve, in.request, d.MetadataMap())
	}
	return nil, errors.New("no robot query given")
}

// robotError turns notices into a plain message with exit status 1.
func robotError(err error, l ui.Lookup) error {
	if errors.Is(err, lookup.ErrTooShort) {
		return &exitError{code: 1, msg: fmt.Sprintf("search text must be at least %d characters", l.MinWordLength())}
	}
	return lookupExit(err)
}

// lookupExit maps notices to status 1 and connection failures to status 3.
func lookupExit(err error) error {
	if n, ok := lookup.AsNotice(err); ok {
		return &exitError{code: 1, msg: n.Title + ": " + n.Message}
	}
	var ce *lookup.ConnectionError
	if errors.As(err, &ce) {
		return &exitError{code: 3, msg: ce.Error()}
	}
	return err
}
