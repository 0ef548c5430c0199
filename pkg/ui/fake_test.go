package ui

import (
	"context"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/compomics/ols-dialog/pkg/hierarchy"
	"github.com/compomics/ols-dialog/pkg/lookup"
	"github.com/compomics/ols-dialog/pkg/model"
	"github.com/compomics/ols-dialog/pkg/ontology"
)

// fakeLookup answers from canned data and records what it was asked.
type fakeLookup struct {
	mu sync.Mutex

	choices []ontology.Choice
	index   int
	loadErr error

	names      map[string][]model.Term
	ids        map[string]model.Term
	hits       []model.ModificationHit
	roots      []model.Term
	children   map[string][]model.Term
	probe      map[string]bool
	details    map[string]model.TermDetails
	detailsErr error

	nameSearches []string
	massQueries  []lookup.MassQuery
	resolved     []string
}

func testChoices() []ontology.Choice {
	return []ontology.Choice{
		{Kind: ontology.KindAll},
		{Kind: ontology.KindSingle, Key: "GO", Name: "Gene Ontology"},
		{Kind: ontology.KindSingle, Key: "MOD", Name: "Protein Modifications (PSI-MOD)"},
		{Kind: ontology.KindSingle, Key: "NEWT", Name: "NEWT UniProt Taxonomy Database"},
	}
}

func newFakeLookup() *fakeLookup {
	return &fakeLookup{
		choices: testChoices(),
		index:   1,
		names: map[string][]model.Term{
			"apoptosis": {
				{ID: "GO:0006915", Name: "apoptotic process"},
				{ID: "GO:0043065", Name: "positive regulation of apoptotic process"},
			},
		},
		ids: map[string]model.Term{
			"GO:0008150": {ID: "GO:0008150", Name: "biological_process"},
		},
		details: map[string]model.TermDetails{
			"GO:0006915": {
				TermID:     "GO:0006915",
				Definition: "A programmed cell death process.",
				Metadata:   []model.Pair{{Key: "exact_synonym", Value: "apoptosis"}},
			},
			"GO:0008150": {TermID: "GO:0008150", Definition: "A biological process."},
		},
		roots: []model.Term{
			{ID: "GO:0008150", Name: "biological_process"},
			{ID: "GO:0005575", Name: "cellular_component"},
		},
		children: map[string][]model.Term{
			"GO:0008150": {{ID: "GO:0009987", Name: "cellular process"}},
		},
		probe: map[string]bool{"GO:0008150": true, "GO:0005575": false, "GO:0009987": false},
	}
}

func (f *fakeLookup) LoadOntologies(ctx context.Context, pre ontology.Preselected, wanted string) ([]ontology.Choice, int, error) {
	if f.loadErr != nil {
		return nil, 0, f.loadErr
	}
	return f.choices, f.index, nil
}

func (f *fakeLookup) MinWordLength() int {
	return 3
}

func (f *fakeLookup) SearchTermName(ctx context.Context, choice ontology.Choice, text string) ([]model.Term, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nameSearches = append(f.nameSearches, text)
	return f.names[text], nil
}

func (f *fakeLookup) SearchTermID(ctx context.Context, choice ontology.Choice, id string) (model.Term, error) {
	term, ok := f.ids[id]
	if !ok {
		return model.Term{}, lookup.ErrNoMatch
	}
	return term, nil
}

func (f *fakeLookup) SearchMass(ctx context.Context, q lookup.MassQuery) ([]model.ModificationHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.massQueries = append(f.massQueries, q)
	return f.hits, nil
}

func (f *fakeLookup) Roots(ctx context.Context, choice ontology.Choice) ([]model.Term, error) {
	return f.roots, nil
}

func (f *fakeLookup) Children(ctx context.Context, ontologyKey, termID string) ([]model.Term, error) {
	return f.children[termID], nil
}

func (f *fakeLookup) Probe(ctx context.Context, ontologyKey string, ids []string) (map[string]bool, error) {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = f.probe[id]
	}
	return out, nil
}

func (f *fakeLookup) Details(ctx context.Context, termID string) (model.TermDetails, error) {
	if f.detailsErr != nil {
		return model.TermDetails{}, f.detailsErr
	}
	return f.details[termID], nil
}

func (f *fakeLookup) Resolve(ctx context.Context, choice ontology.Choice, termID string, req lookup.Request, metadata map[string]string) (model.Selection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolved = append(f.resolved, termID)
	key, _ := model.OntologyFromTermID(termID)
	return model.Selection{
		Field:         req.Field,
		Value:         termID + " name",
		TermID:        termID,
		OntologyShort: key,
		OntologyLong:  key + " long",
		ModifiedRow:   req.ModifiedRow,
		MappedTerm:    req.MappedTerm,
		Metadata:      metadata,
	}, nil
}

func (f *fakeLookup) HierarchyTermName(ctx context.Context, choice ontology.Choice, termID string) (string, string, error) {
	key, _ := model.OntologyFromTermID(termID)
	return termID + " name", key, nil
}

type fakeGraphs struct {
	fetched []string
}

func (g *fakeGraphs) Fetch(ctx context.Context, termID, termName, ontology string) (*hierarchy.Graph, error) {
	g.fetched = append(g.fetched, termID)
	return &hierarchy.Graph{
		TermID:   termID,
		TermName: termName,
		Ontology: ontology,
		Image:    image.NewRGBA(image.Rect(0, 0, 8, 8)),
	}, nil
}

func testTheme() Theme {
	r := lipgloss.NewRenderer(nil)
	r.SetColorProfile(termenv.Ascii)
	return DefaultTheme(r)
}

// newTestModel builds a dialog over f and runs its start-up commands.
func newTestModel(t *testing.T, f *fakeLookup, opts Options) *Model {
	t.Helper()
	opts.Lookup = f
	opts.Theme = testTheme()
	opts.GlamourStyle = "ascii"
	opts.Debounce = time.Millisecond
	if opts.Clipboard == nil {
		opts.Clipboard = func(string) error { return nil }
	}
	m := New(opts)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	drain(t, m, m.Init())
	return m
}

// drain runs cmd and feeds every message it produces back into m until the
// queue is empty. Commands that block, such as blink and spinner ticks, are
// dropped after a short wait.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 500 {
			t.Fatal("command queue did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg, ok := runCmd(c)
		if !ok {
			continue
		}
		switch msg := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
			continue
		case spinner.TickMsg, tea.QuitMsg:
			continue
		}
		_, next := m.Update(msg)
		queue = append(queue, next)
	}
}

func runCmd(c tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- c() }()
	select {
	case msg := <-ch:
		return msg, msg != nil
	case <-time.After(50 * time.Millisecond):
		return nil, false
	}
}

// press sends one key to m and runs the resulting commands.
func press(t *testing.T, m *Model, keys ...string) {
	t.Helper()
	for _, k := range keys {
		_, cmd := m.Update(keyMsg(k))
		drain(t, m, cmd)
	}
}

func keyMsg(k string) tea.KeyMsg {
	special := map[string]tea.KeyType{
		"enter":      tea.KeyEnter,
		"esc":        tea.KeyEsc,
		"tab":        tea.KeyTab,
		"up":         tea.KeyUp,
		"down":       tea.KeyDown,
		"left":       tea.KeyLeft,
		"right":      tea.KeyRight,
		"backspace":  tea.KeyBackspace,
		"ctrl+c":     tea.KeyCtrlC,
		"ctrl+n":     tea.KeyCtrlN,
		"ctrl+o":     tea.KeyCtrlO,
		"ctrl+s":     tea.KeyCtrlS,
		"ctrl+g":     tea.KeyCtrlG,
		"ctrl+right": tea.KeyCtrlRight,
	}
	if kt, ok := special[k]; ok {
		return tea.KeyMsg{Type: kt}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func typeText(t *testing.T, m *Model, text string) {
	t.Helper()
	for _, r := range text {
		press(t, m, string(r))
	}
}
