package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/compomics/ols-dialog/pkg/hierarchy"
	"github.com/compomics/ols-dialog/pkg/lookup"
	"github.com/compomics/ols-dialog/pkg/model"
	"github.com/compomics/ols-dialog/pkg/ontology"
)

// Lookup is the dialog logic the model drives. *lookup.Service implements it.
type Lookup interface {
	LoadOntologies(ctx context.Context, pre ontology.Preselected, wanted string) ([]ontology.Choice, int, error)
	MinWordLength() int
	SearchTermName(ctx context.Context, choice ontology.Choice, text string) ([]model.Term, error)
	SearchTermID(ctx context.Context, choice ontology.Choice, id string) (model.Term, error)
	SearchMass(ctx context.Context, q lookup.MassQuery) ([]model.ModificationHit, error)
	Roots(ctx context.Context, choice ontology.Choice) ([]model.Term, error)
	Children(ctx context.Context, ontologyKey, termID string) ([]model.Term, error)
	Probe(ctx context.Context, ontologyKey string, ids []string) (map[string]bool, error)
	Details(ctx context.Context, termID string) (model.TermDetails, error)
	Resolve(ctx context.Context, choice ontology.Choice, termID string, req lookup.Request, metadata map[string]string) (model.Selection, error)
	HierarchyTermName(ctx context.Context, choice ontology.Choice, termID string) (name, ontologyKey string, err error)
}

// GraphFetcher downloads term hierarchy graphs. *hierarchy.Fetcher implements it.
type GraphFetcher interface {
	Fetch(ctx context.Context, termID, termName, ontology string) (*hierarchy.Graph, error)
}

type ontologiesLoadedMsg struct {
	choices []ontology.Choice
	index   int
	err     error
}

type nameResultsMsg struct {
	seq   uint64
	terms []model.Term
	err   error
}

type idResultMsg struct {
	seq  uint64
	term model.Term
	err  error
}

type massResultsMsg struct {
	seq  uint64
	hits []model.ModificationHit
	err  error
}

type rootsMsg struct {
	seq   uint64
	terms []model.Term
	err   error
}

type childrenMsg struct {
	seq   uint64
	id    string
	terms []model.Term
	err   error
}

type probeMsg struct {
	seq    uint64
	result map[string]bool
	err    error
}

type detailsMsg struct {
	mode    model.SearchMode
	termID  string
	details model.TermDetails
	err     error
}

type resolvedMsg struct {
	selection model.Selection
	err       error
}

type hierarchyMsg struct {
	graph *hierarchy.Graph
	err   error
}

type savedMsg struct {
	path string
	err  error
}

type clipboardMsg struct {
	text string
	err  error
}

func loadOntologiesCmd(ctx context.Context, l Lookup, pre ontology.Preselected, wanted string) tea.Cmd {
	return func() tea.Msg {
		choices, idx, err := l.LoadOntologies(ctx, pre, wanted)
		return ontologiesLoadedMsg{choices: choices, index: idx, err: err}
	}
}

func searchNameCmd(ctx context.Context, l Lookup, seq uint64, choice ontology.Choice, text string) tea.Cmd {
	return func() tea.Msg {
		terms, err := l.SearchTermName(ctx, choice, text)
		return nameResultsMsg{seq: seq, terms: terms, err: err}
	}
}

func searchIDCmd(ctx context.Context, l Lookup, seq uint64, choice ontology.Choice, id string) tea.Cmd {
	return func() tea.Msg {
		term, err := l.SearchTermID(ctx, choice, id)
		return idResultMsg{seq: seq, term: term, err: err}
	}
}

func searchMassCmd(ctx context.Context, l Lookup, seq uint64, q lookup.MassQuery) tea.Cmd {
	return func() tea.Msg {
		hits, err := l.SearchMass(ctx, q)
		return massResultsMsg{seq: seq, hits: hits, err: err}
	}
}

func rootsCmd(ctx context.Context, l Lookup, seq uint64, choice ontology.Choice) tea.Cmd {
	return func() tea.Msg {
		terms, err := l.Roots(ctx, choice)
		return rootsMsg{seq: seq, terms: terms, err: err}
	}
}

func childrenCmd(ctx context.Context, l Lookup, seq uint64, ontologyKey, id string) tea.Cmd {
	return func() tea.Msg {
		terms, err := l.Children(ctx, ontologyKey, id)
		return childrenMsg{seq: seq, id: id, terms: terms, err: err}
	}
}

func probeCmd(ctx context.Context, l Lookup, seq uint64, ontologyKey string, ids []string) tea.Cmd {
	if len(ids) == 0 {
		return nil
	}
	return func() tea.Msg {
		result, err := l.Probe(ctx, ontologyKey, ids)
		return probeMsg{seq: seq, result: result, err: err}
	}
}

func detailsCmd(ctx context.Context, l Lookup, mode model.SearchMode, termID string) tea.Cmd {
	return func() tea.Msg {
		d, err := l.Details(ctx, termID)
		return detailsMsg{mode: mode, termID: termID, details: d, err: err}
	}
}

func resolveCmd(ctx context.Context, l Lookup, choice ontology.Choice, termID string, req lookup.Request, metadata map[string]string) tea.Cmd {
	return func() tea.Msg {
		sel, err := l.Resolve(ctx, choice, termID, req, metadata)
		return resolvedMsg{selection: sel, err: err}
	}
}

func hierarchyCmd(ctx context.Context, l Lookup, g GraphFetcher, choice ontology.Choice, termID string) tea.Cmd {
	return func() tea.Msg {
		name, key, err := l.HierarchyTermName(ctx, choice, termID)
		if err != nil {
			return hierarchyMsg{err: err}
		}
		graph, err := g.Fetch(ctx, termID, name, key)
		return hierarchyMsg{graph: graph, err: err}
	}
}

func saveGraphCmd(graph *hierarchy.Graph, path string) tea.Cmd {
	return func() tea.Msg {
		return savedMsg{path: path, err: graph.Save(path)}
	}
}
