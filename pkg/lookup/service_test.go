package lookup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/compomics/ols-dialog/pkg/model"
	"github.com/compomics/ols-dialog/pkg/ontology"
)

// fakeQuery is an in-memory ols.Query.
type fakeQuery struct {
	mu       sync.Mutex
	names    []model.Ontology
	byName   map[string][]model.Term // ontology -> terms
	byID     map[string]string       // ontology + "|" + id -> name
	roots    map[string][]model.Term
	children map[string][]model.Term // term id -> children
	metadata map[string][]model.Pair
	xrefs    map[string][]model.Pair
	hits     []model.ModificationHit
	err      error
	calls    []string
	lastArgs []any
}

func (f *fakeQuery) record(op string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	f.lastArgs = args
	return f.err
}

func (f *fakeQuery) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (f *fakeQuery) OntologyNames(ctx context.Context) ([]model.Ontology, error) {
	if err := f.record("getOntologyNames"); err != nil {
		return nil, err
	}
	return f.names, nil
}

func (f *fakeQuery) RootTerms(ctx context.Context, ontology string) ([]model.Term, error) {
	if err := f.record("getRootTerms", ontology); err != nil {
		return nil, err
	}
	return f.roots[ontology], nil
}

func (f *fakeQuery) TermChildren(ctx context.Context, termID, ontology string, distance int) ([]model.Term, error) {
	if err := f.record("getTermChildren", termID, ontology, distance); err != nil {
		return nil, err
	}
	return f.children[termID], nil
}

func (f *fakeQuery) TermsByName(ctx context.Context, partial, ontology string) ([]model.Term, error) {
	if err := f.record("getTermsByName", partial, ontology); err != nil {
		return nil, err
	}
	if ontology == "" {
		var all []model.Term
		for _, terms := range f.byName {
			all = append(all, terms...)
		}
		return all, nil
	}
	return f.byName[ontology], nil
}

func (f *fakeQuery) TermMetadata(ctx context.Context, termID, ontology string) ([]model.Pair, error) {
	if err := f.record("getTermMetadata", termID, ontology); err != nil {
		return nil, err
	}
	return f.metadata[termID], nil
}

func (f *fakeQuery) TermXrefs(ctx context.Context, termID, ontology string) ([]model.Pair, error) {
	if err := f.record("getTermXrefs", termID, ontology); err != nil {
		return nil, err
	}
	return f.xrefs[termID], nil
}

func (f *fakeQuery) TermByID(ctx context.Context, termID, ontology string) (string, error) {
	if err := f.record("getTermById", termID, ontology); err != nil {
		return "", err
	}
	if name, ok := f.byID[ontology+"|"+termID]; ok {
		return name, nil
	}
	return termID, nil
}

func (f *fakeQuery) TermsByAnnotationData(ctx context.Context, ontology, annotationType string, from, to float64) ([]model.ModificationHit, error) {
	if err := f.record("getTermsByAnnotationData", ontology, annotationType, from, to); err != nil {
		return nil, err
	}
	return f.hits, nil
}

func newFake() *fakeQuery {
	return &fakeQuery{
		names: []model.Ontology{
			{Key: "GO", Name: "Gene Ontology"},
			{Key: "MOD", Name: "Protein Modifications (PSI-MOD)"},
			{Key: "NEWT", Name: "NEWT UniProt Taxonomy Database"},
		},
		byName: map[string][]model.Term{
			"GO":  {{ID: "GO:0005634", Name: "nucleus"}, {ID: "GO:0031965", Name: "nuclear membrane"}},
			"MOD": {{ID: "MOD:00001", Name: "nucleotide modified residue"}, {ID: "GO:0005634", Name: "nucleus"}},
		},
		byID: map[string]string{
			"GO|GO:0005634":  "nucleus",
			"|GO:0005634":    "nucleus",
			"MOD|MOD:00394":  "acetylated residue",
			"NEWT|9606":      "Homo sapiens (Human)",
			"GO|GO:0005575":  "cellular_component",
			"MOD|GO:0005634": "",
		},
		roots: map[string][]model.Term{
			"GO": {{ID: "GO:0008150", Name: "biological_process"}},
		},
		children: map[string][]model.Term{
			"GO:0005575": {{ID: "GO:0005623", Name: "cell"}},
			"GO:0005623": {{ID: "GO:0044464", Name: "cell part"}},
		},
		metadata: map[string][]model.Pair{
			"GO:0005634": {
				{Key: "definition", Value: "A membrane-bounded organelle"},
				{Key: "exact_synonym", Value: "cell nucleus"},
			},
			"GO:0031965": {{Key: "definition", Value: "null"}},
		},
		xrefs: map[string][]model.Pair{
			"GO:0005634": {{Key: "Wikipedia", Value: "Cell_nucleus"}},
		},
	}
}

func testLogger(buf *bytes.Buffer) *slog.Logger {
	if buf == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(buf, nil))
}

var (
	allChoice = ontology.Choice{Kind: ontology.KindAll}
	preChoice = ontology.Choice{Kind: ontology.KindPreselected}
	goChoice  = ontology.Choice{Kind: ontology.KindSingle, Key: "GO", Name: "Gene Ontology"}
)

func TestLoadOntologies(t *testing.T) {
	var logs bytes.Buffer
	s := NewService(newFake(), WithLogger(testLogger(&logs)))

	choices, idx, err := s.LoadOntologies(context.Background(), ontology.Preselected{"GO": {"GO:0005575"}, "MOD": nil, "PSI": nil}, "mod")
	if err != nil {
		t.Fatalf("LoadOntologies() error: %v", err)
	}
	if len(choices) != 4 {
		t.Fatalf("got %d choices", len(choices))
	}
	if choices[idx].Key != "MOD" {
		t.Errorf("selected %q, want MOD", choices[idx].Label())
	}
	if choices[2].Label() != "Gene Ontology [GO] / cellular_component" {
		t.Errorf("rooted choice = %q", choices[2].Label())
	}
	if !strings.Contains(logs.String(), "preselected ontologies have not been found") {
		t.Errorf("missing warning not logged: %s", logs.String())
	}
	if len(s.Ontologies()) != 3 {
		t.Error("registry should be cached")
	}
}

func TestLoadOntologies_ConnectionError(t *testing.T) {
	f := newFake()
	f.err = errors.New("dial tcp: refused")
	var logs bytes.Buffer
	s := NewService(f, WithLogger(testLogger(&logs)))

	_, _, err := s.LoadOntologies(context.Background(), nil, "")
	var ce *ConnectionError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *ConnectionError", err)
	}
	if ce.Title != TitleLoadError || ce.Message != DefaultConnectionMessage {
		t.Errorf("ConnectionError = %+v", ce)
	}
	if !strings.Contains(logs.String(), "Error when trying to access OLS") {
		t.Errorf("failure not logged: %s", logs.String())
	}
}

func TestSearchable(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"", false},
		{"nu", false},
		{"nuc", true},
		{"nu ", true},
		{"  ", false},
		{"αβγ", true},
	}
	for _, tt := range tests {
		if got := Searchable(tt.text, 3); got != tt.want {
			t.Errorf("Searchable(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestSearchTermName(t *testing.T) {
	f := newFake()
	s := NewService(f, WithLogger(testLogger(nil)))
	ctx := context.Background()

	if _, err := s.SearchTermName(ctx, goChoice, "nu"); !errors.Is(err, ErrTooShort) {
		t.Errorf("short text err = %v, want ErrTooShort", err)
	}
	if f.count("getTermsByName") != 0 {
		t.Error("short text should not query")
	}

	terms, err := s.SearchTermName(ctx, goChoice, "nuc")
	if err != nil {
		t.Fatalf("SearchTermName() error: %v", err)
	}
	if len(terms) != 2 || terms[0].ID != "GO:0005634" {
		t.Errorf("terms = %+v", terms)
	}

	if _, err := s.SearchTermName(ctx, allChoice, "nuc"); err != nil {
		t.Fatal(err)
	}
	if f.lastArgs[1] != "" {
		t.Errorf("all-ontology search should not filter, got %v", f.lastArgs)
	}
}

func TestSearchTermName_Preselected(t *testing.T) {
	f := newFake()
	s := NewService(f, WithLogger(testLogger(nil)))
	ctx := context.Background()
	if _, _, err := s.LoadOntologies(ctx, ontology.Preselected{"go": nil, "mod": nil}, ""); err != nil {
		t.Fatal(err)
	}

	terms, err := s.SearchTermName(ctx, preChoice, "nuc")
	if err != nil {
		t.Fatalf("SearchTermName() error: %v", err)
	}
	if len(terms) != 3 {
		t.Fatalf("expected 3 de-duplicated terms, got %+v", terms)
	}
	if terms[0].ID != "GO:0005634" || terms[2].ID != "MOD:00001" {
		t.Errorf("merge order = %+v", terms)
	}
	if f.count("getTermsByName") != 2 {
		t.Errorf("queries = %d, want one per preselected ontology", f.count("getTermsByName"))
	}
}

func TestSearchTermID(t *testing.T) {
	s := NewService(newFake(), WithLogger(testLogger(nil)))
	ctx := context.Background()

	term, err := s.SearchTermID(ctx, goChoice, "  GO:0005634 ")
	if err != nil {
		t.Fatalf("SearchTermID() error: %v", err)
	}
	if term.ID != "GO:0005634" || term.Name != "nucleus" {
		t.Errorf("term = %+v", term)
	}

	_, err = s.SearchTermID(ctx, goChoice, "GO:9999999")
	if !errors.Is(err, ErrNoMatch) {
		t.Errorf("unknown term err = %v, want ErrNoMatch", err)
	}
	if n, ok := AsNotice(err); !ok || n.Message != "No matching terms found." {
		t.Errorf("notice = %+v", n)
	}

	if _, err := s.SearchTermID(ctx, goChoice, "   "); !errors.Is(err, ErrNoMatch) {
		t.Errorf("blank id err = %v", err)
	}
}

func TestSearchTermID_PreselectedSkipsUnknown(t *testing.T) {
	s := NewService(newFake(), WithLogger(testLogger(nil)))
	ctx := context.Background()
	if _, _, err := s.LoadOntologies(ctx, ontology.Preselected{"MOD": nil, "GO": nil}, ""); err != nil {
		t.Fatal(err)
	}

	// GO is asked first and knows the term.
	term, err := s.SearchTermID(ctx, preChoice, "GO:0005634")
	if err != nil {
		t.Fatalf("SearchTermID() error: %v", err)
	}
	if term.Name != "nucleus" {
		t.Errorf("term = %+v", term)
	}

	// Only MOD knows this one, GO echoes the ID back.
	term, err = s.SearchTermID(ctx, preChoice, "MOD:00394")
	if err != nil {
		t.Fatalf("SearchTermID() error: %v", err)
	}
	if term.Name != "acetylated residue" {
		t.Errorf("term = %+v", term)
	}
}

func TestParseMassQuery(t *testing.T) {
	tests := []struct {
		mass, acc, typ string
		wantErr        error
	}{
		{"42.5", "0.25", "DiffMono", nil},
		{"abc", "0.1", "DiffMono", ErrMassNotNumber},
		{"42", "x", "DiffMono", ErrAccuracyNotNumber},
		{"42", "-0.5", "DiffMono", ErrAccuracyNegative},
		{"42", "0.5", "- Select -", ErrMassTypeMissing},
	}
	for _, tt := range tests {
		q, err := ParseMassQuery(tt.mass, tt.acc, tt.typ)
		if !errors.Is(err, tt.wantErr) && err != tt.wantErr {
			t.Errorf("ParseMassQuery(%q, %q, %q) err = %v, want %v", tt.mass, tt.acc, tt.typ, err, tt.wantErr)
		}
		if tt.wantErr == nil {
			from, to := q.Window()
			if from != 42.25 || to != 42.75 {
				t.Errorf("Window() = [%v, %v]", from, to)
			}
		}
	}
}

func TestSearchMass(t *testing.T) {
	f := newFake()
	f.hits = []model.ModificationHit{{TermID: "MOD:00394", TermName: "acetylated residue", MassDelta: 42.010565}}
	s := NewService(f, WithLogger(testLogger(nil)))

	hits, err := s.SearchMass(context.Background(), MassQuery{Mass: 42, Accuracy: 0.5, Type: model.MassDiffMono})
	if err != nil {
		t.Fatalf("SearchMass() error: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %+v", hits)
	}
	args := f.lastArgs
	if args[0] != "MOD" || args[1] != "DiffMono" || args[2] != 41.5 || args[3] != 42.5 {
		t.Errorf("annotation query args = %v", args)
	}
}

func TestRootsAndChildren(t *testing.T) {
	f := newFake()
	s := NewService(f, WithLogger(testLogger(nil)))
	ctx := context.Background()

	roots, err := s.Roots(ctx, goChoice)
	if err != nil || len(roots) != 1 {
		t.Fatalf("Roots() = %v, %v", roots, err)
	}

	rooted := goChoice
	rooted.ParentTermID = "GO:0005575"
	roots, err = s.Roots(ctx, rooted)
	if err != nil || len(roots) != 1 || roots[0].ID != "GO:0005623" {
		t.Fatalf("rooted Roots() = %v, %v", roots, err)
	}

	if roots, _ := s.Roots(ctx, allChoice); roots != nil {
		t.Error("all-ontology choice cannot be browsed")
	}

	probe, err := s.Probe(ctx, "GO", []string{"GO:0005623", "GO:0044464"})
	if err != nil {
		t.Fatalf("Probe() error: %v", err)
	}
	if !probe["GO:0005623"] || probe["GO:0044464"] {
		t.Errorf("Probe() = %v", probe)
	}
}

func TestDetails(t *testing.T) {
	f := newFake()
	s := NewService(f, WithLogger(testLogger(nil)))
	ctx := context.Background()

	d, err := s.Details(ctx, "GO:0005634")
	if err != nil {
		t.Fatalf("Details() error: %v", err)
	}
	if d.Definition != "A membrane-bounded organelle" {
		t.Errorf("Definition = %q", d.Definition)
	}
	if len(d.Metadata) != 1 || d.Metadata[0].Key != "exact_synonym" {
		t.Errorf("Metadata = %+v", d.Metadata)
	}
	if len(d.Xrefs) != 1 {
		t.Errorf("Xrefs = %+v", d.Xrefs)
	}

	d, _ = s.Details(ctx, "GO:0031965")
	if d.Definition != NoDefinition {
		t.Errorf("null definition = %q", d.Definition)
	}

	d, _ = s.Details(ctx, "GO:0000000")
	if !d.Empty() {
		t.Errorf("unknown term should have empty details: %+v", d)
	}
}

func TestDetails_NEWTDisabled(t *testing.T) {
	f := newFake()
	s := NewService(f, WithLogger(testLogger(nil)))

	d, err := s.Details(context.Background(), "9606")
	if err != nil {
		t.Fatal(err)
	}
	if !d.Disabled || d.Message != NEWTDetailsDisabled {
		t.Errorf("details = %+v", d)
	}
	if f.count("getTermMetadata") != 0 {
		t.Error("NEWT details must not be queried")
	}
}

func TestDetails_Error(t *testing.T) {
	f := newFake()
	f.err = errors.New("timeout")
	s := NewService(f, WithLogger(testLogger(nil)))

	if _, err := s.Details(context.Background(), "GO:0005634"); !IsConnection(err) {
		t.Errorf("err = %v, want connection error", err)
	}
}

func TestResolve(t *testing.T) {
	f := newFake()
	s := NewService(f, WithLogger(testLogger(nil)))
	ctx := context.Background()
	req := Request{Field: "organism", ModifiedRow: 3, MappedTerm: "human"}

	sel, err := s.Resolve(ctx, goChoice, "GO:0005634", req, map[string]string{"definition": "x"})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	want := model.Selection{
		Field: "organism", Value: "nucleus", TermID: "GO:0005634",
		OntologyShort: "GO", OntologyLong: "Gene Ontology [GO]",
		ModifiedRow: 3, MappedTerm: "human",
	}
	if sel.Value != want.Value || sel.OntologyLong != want.OntologyLong || sel.ModifiedRow != 3 || sel.Field != "organism" {
		t.Errorf("Resolve() = %+v", sel)
	}
	if sel.Metadata["definition"] != "x" {
		t.Error("metadata should be passed through")
	}

	// Multi-ontology choice derives the ontology from the accession.
	sel, err = s.Resolve(ctx, allChoice, "MOD:00394", req, nil)
	if err != nil {
		t.Fatal(err)
	}
	if sel.OntologyShort != "MOD" || sel.OntologyLong != "Protein Modifications (PSI-MOD) [MOD]" || sel.Value != "acetylated residue" {
		t.Errorf("Resolve(all) = %+v", sel)
	}

	sel, err = s.Resolve(ctx, allChoice, "9606", req, nil)
	if err != nil {
		t.Fatal(err)
	}
	if sel.OntologyShort != model.NEWT {
		t.Errorf("NEWT term resolved to %q", sel.OntologyShort)
	}

	if _, err := s.Resolve(ctx, goChoice, "", req, nil); !errors.Is(err, ErrNothingSelected) {
		t.Errorf("empty id err = %v", err)
	}
}

func TestResolve_Placeholder(t *testing.T) {
	s := NewService(newFake(), WithLogger(testLogger(nil)))
	sel, err := s.Resolve(context.Background(), allChoice, model.NoRootTermsID, NewRequest("", ""), nil)
	if err != nil {
		t.Fatal(err)
	}
	if sel.OntologyShort != model.NEWT || sel.OntologyLong != model.NEWTLongName {
		t.Errorf("placeholder resolved to %+v", sel)
	}
	if sel.ModifiedRow != -1 {
		t.Errorf("ModifiedRow = %d", sel.ModifiedRow)
	}
}

func TestHierarchyTermName(t *testing.T) {
	s := NewService(newFake(), WithLogger(testLogger(nil)))
	name, key, err := s.HierarchyTermName(context.Background(), allChoice, "GO:0005634")
	if err != nil {
		t.Fatal(err)
	}
	if name != "nucleus" || key != "GO" {
		t.Errorf("HierarchyTermName() = %q, %q", name, key)
	}
}

func TestRemote_CancelNotLogged(t *testing.T) {
	f := newFake()
	f.err = context.Canceled
	var logs bytes.Buffer
	s := NewService(f, WithLogger(testLogger(&logs)))

	_, err := s.SearchTermName(context.Background(), goChoice, "nucleus")
	if !errors.Is(err, context.Canceled) || IsConnection(err) {
		t.Errorf("err = %v, want plain cancellation", err)
	}
	if logs.Len() != 0 {
		t.Errorf("cancellation should not be logged: %s", logs.String())
	}
}
