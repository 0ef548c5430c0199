// Package lookup implements the dialog's behaviour on top of the OLS client:
// the four searches, term details, selection resolution and the tab and
// ontology state machine. It does no rendering.
package lookup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/compomics/ols-dialog/pkg/browse"
	"github.com/compomics/ols-dialog/pkg/model"
	"github.com/compomics/ols-dialog/pkg/ols"
	"github.com/compomics/ols-dialog/pkg/ontology"
)

// DefaultMinWordLength is the shortest term name that triggers a search.
const DefaultMinWordLength = 3

// NoDefinition replaces a missing definition.
const NoDefinition = "(no definition provided in CV term)"

// NEWTDetailsDisabled is shown instead of details for NEWT terms.
const NEWTDetailsDisabled = "Retrieving 'Term Details' is disabled for NEWT."

// MissingPreselectedWarning is logged when the registry lacks preselected ontologies.
const MissingPreselectedWarning = "Warning: One or more of your preselected ontologies have not been found in OLS"

// Service runs the dialog's remote operations. It is safe for concurrent use.
type Service struct {
	query         ols.Query
	logger        *slog.Logger
	minWordLength int
	probeLimit    int
	modOntology   string

	mu          sync.RWMutex
	names       []model.Ontology
	preselected ontology.Preselected
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the error log.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMinWordLength sets the shortest searchable term name.
func WithMinWordLength(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.minWordLength = n
		}
	}
}

// WithProbeLimit bounds concurrent child probes when browsing.
func WithProbeLimit(n int) Option {
	return func(s *Service) {
		s.probeLimit = n
	}
}

// NewService creates a Service over the given client.
func NewService(q ols.Query, opts ...Option) *Service {
	s := &Service{
		query:         q,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		minWordLength: DefaultMinWordLength,
		probeLimit:    browse.DefaultProbeLimit,
		modOntology:   model.MOD,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MinWordLength returns the shortest searchable term name.
func (s *Service) MinWordLength() int {
	return s.minWordLength
}

// Searchable reports whether text is long enough for a term name search.
// Whitespace counts towards the length.
func Searchable(text string, minWordLength int) bool {
	return utf8.RuneCountInString(text) >= minWordLength
}

// remote logs a failed call and wraps it for the user. Cancellation is
// passed through untouched.
func (s *Service) remote(title, op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	s.logger.Error("Error when trying to access OLS", "op", op, "error", err)
	return &ConnectionError{Title: title, Message: DefaultConnectionMessage, Op: op, Err: err}
}

// LoadOntologies fetches the registry and builds the selector entries. The
// index of the entry matching wanted (label or key) is returned with them.
func (s *Service) LoadOntologies(ctx context.Context, pre ontology.Preselected, wanted string) ([]ontology.Choice, int, error) {
	names, err := s.query.OntologyNames(ctx)
	if err != nil {
		return nil, 0, s.remote(TitleLoadError, "getOntologyNames", err)
	}

	res, err := ontology.Build(ctx, names, pre, func(ctx context.Context, id, key string) (string, error) {
		return s.query.TermByID(ctx, id, key)
	})
	if err != nil {
		return nil, 0, s.remote(TitleLoadError, "getTermById", err)
	}
	if len(res.Missing) > 0 {
		s.logger.Warn(MissingPreselectedWarning, "missing", strings.Join(res.Missing, ","))
	}

	s.mu.Lock()
	s.names = names
	s.preselected = pre
	s.mu.Unlock()

	s.logger.Debug("loaded ontologies", "count", len(names), "choices", len(res.Choices))
	return res.Choices, ontology.Find(res.Choices, wanted), nil
}

// Ontologies returns the registry fetched by LoadOntologies.
func (s *Service) Ontologies() []model.Ontology {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Ontology(nil), s.names...)
}

// preselectedKeys lists the upper-cased preselected ontology keys in order.
func (s *Service) preselectedKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preselected.Keys()
}

// SearchTermName finds terms whose name contains text. Texts shorter than the
// minimum word length return ErrTooShort without a remote call.
func (s *Service) SearchTermName(ctx context.Context, choice ontology.Choice, text string) ([]model.Term, error) {
	if !Searchable(text, s.minWordLength) {
		return nil, ErrTooShort
	}

	if choice.Kind != ontology.KindPreselected {
		terms, err := s.query.TermsByName(ctx, text, choice.Ontology())
		if err != nil {
			return nil, s.remote(TitleConnectionError, "getTermsByName", err)
		}
		return terms, nil
	}

	keys := s.preselectedKeys()
	results := make([][]model.Term, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	for i, key := range keys {
		g.Go(func() error {
			terms, err := s.query.TermsByName(gctx, text, key)
			if err != nil {
				return err
			}
			results[i] = terms
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, s.remote(TitleConnectionError, "getTermsByName", err)
	}

	seen := make(map[string]bool)
	var merged []model.Term
	for _, terms := range results {
		for _, t := range terms {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			merged = append(merged, t)
		}
	}
	return merged, nil
}

// SearchTermID looks a single accession up. A term the service does not know
// comes back named after its ID, which is reported as ErrNoMatch.
func (s *Service) SearchTermID(ctx context.Context, choice ontology.Choice, id string) (model.Term, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Term{}, ErrNoMatch
	}

	known := func(name string) bool {
		return name != "" && !strings.EqualFold(name, id)
	}

	if choice.Kind == ontology.KindPreselected {
		for _, key := range s.preselectedKeys() {
			name, err := s.query.TermByID(ctx, id, key)
			if err != nil {
				return model.Term{}, s.remote(TitleConnectionError, "getTermById", err)
			}
			if known(name) {
				return model.Term{ID: id, Name: name}, nil
			}
		}
		return model.Term{}, ErrNoMatch
	}

	name, err := s.query.TermByID(ctx, id, choice.Ontology())
	if err != nil {
		return model.Term{}, s.remote(TitleConnectionError, "getTermById", err)
	}
	if !known(name) {
		return model.Term{}, ErrNoMatch
	}
	return model.Term{ID: id, Name: name}, nil
}

// MassQuery is a validated PSI-MOD mass search.
type MassQuery struct {
	Mass     float64
	Accuracy float64
	Type     model.MassType
}

// Window is the inclusive mass range searched.
func (q MassQuery) Window() (from, to float64) {
	return q.Mass - q.Accuracy, q.Mass + q.Accuracy
}

// ParseMassQuery validates the mass form fields.
func ParseMassQuery(mass, accuracy, massType string) (MassQuery, error) {
	m, err := strconv.ParseFloat(strings.TrimSpace(mass), 64)
	if err != nil {
		return MassQuery{}, ErrMassNotNumber
	}
	acc, err := strconv.ParseFloat(strings.TrimSpace(accuracy), 64)
	if err != nil {
		return MassQuery{}, ErrAccuracyNotNumber
	}
	if acc < 0 {
		return MassQuery{}, ErrAccuracyNegative
	}
	mt, err := model.ParseMassType(massType)
	if err != nil {
		return MassQuery{}, ErrMassTypeMissing
	}
	return MassQuery{Mass: m, Accuracy: acc, Type: mt}, nil
}

// SearchMass finds PSI-MOD terms whose mass annotation lies in the query window.
func (s *Service) SearchMass(ctx context.Context, q MassQuery) ([]model.ModificationHit, error) {
	if !q.Type.IsValid() {
		return nil, ErrMassTypeMissing
	}
	if q.Accuracy < 0 {
		return nil, ErrAccuracyNegative
	}
	from, to := q.Window()
	hits, err := s.query.TermsByAnnotationData(ctx, s.modOntology, string(q.Type), from, to)
	if err != nil {
		return nil, s.remote(TitleConnectionError, "getTermsByAnnotationData", err)
	}
	return hits, nil
}

// Roots returns the top level of the browse tree: the ontology's root terms,
// or the children of the term the choice is rooted at.
func (s *Service) Roots(ctx context.Context, choice ontology.Choice) ([]model.Term, error) {
	if !choice.BrowseEnabled() {
		return nil, nil
	}
	if choice.ParentTermID != "" {
		terms, err := s.query.TermChildren(ctx, choice.ParentTermID, choice.Key, 1)
		if err != nil {
			return nil, s.remote(TitleConnectionError, "getTermChildren", err)
		}
		return terms, nil
	}
	terms, err := s.query.RootTerms(ctx, choice.Key)
	if err != nil {
		return nil, s.remote(TitleConnectionError, "getRootTerms", err)
	}
	return terms, nil
}

// Children returns the direct children of a term.
func (s *Service) Children(ctx context.Context, ontologyKey, termID string) ([]model.Term, error) {
	terms, err := s.query.TermChildren(ctx, termID, ontologyKey, 1)
	if err != nil {
		return nil, s.remote(TitleConnectionError, "getTermChildren", err)
	}
	return terms, nil
}

// Probe reports which of the terms have children of their own.
func (s *Service) Probe(ctx context.Context, ontologyKey string, ids []string) (map[string]bool, error) {
	if len(ids) == 0 {
		return map[string]bool{}, nil
	}
	result, err := browse.Probe(ctx, ids, func(ctx context.Context, id string) ([]model.Term, error) {
		return s.query.TermChildren(ctx, id, ontologyKey, 1)
	}, s.probeLimit)
	if err != nil {
		return nil, s.remote(TitleConnectionError, "getTermChildren", err)
	}
	return result, nil
}

// Details fetches the metadata and cross-references of a term. NEWT terms
// are not queried.
func (s *Service) Details(ctx context.Context, termID string) (model.TermDetails, error) {
	if termID == "" {
		return model.TermDetails{}, ErrNothingSelected
	}
	key, ok := model.OntologyFromTermID(termID)
	d := model.TermDetails{TermID: termID, Ontology: key}
	if !ok {
		return d, nil
	}
	if model.IsNEWT(key) {
		d.Disabled = true
		d.Message = NEWTDetailsDisabled
		return d, nil
	}

	var metadata, xrefs []model.Pair
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		metadata, err = s.query.TermMetadata(gctx, termID, key)
		return err
	})
	g.Go(func() error {
		var err error
		xrefs, err = s.query.TermXrefs(gctx, termID, key)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.TermDetails{}, s.remote(TitleConnectionError, "getTermMetadata", err)
	}

	if len(metadata) == 0 {
		return d, nil
	}
	for _, p := range metadata {
		if strings.EqualFold(p.Key, "definition") {
			d.Definition = p.Value
			continue
		}
		d.Metadata = append(d.Metadata, p)
	}
	if d.Definition == "" || strings.EqualFold(d.Definition, "null") {
		d.Definition = NoDefinition
	}
	d.Xrefs = xrefs
	return d, nil
}

// Resolve turns a selected accession into the payload handed to the host.
// Multi-ontology choices derive the ontology from the accession.
func (s *Service) Resolve(ctx context.Context, choice ontology.Choice, termID string, req Request, metadata map[string]string) (model.Selection, error) {
	if termID == "" {
		return model.Selection{}, ErrNothingSelected
	}

	short, long := choice.Key, choice.Name+" ["+choice.Key+"]"
	if choice.IsMulti() {
		key, ok := model.OntologyFromTermID(termID)
		if !ok {
			short, long = model.NEWT, model.NEWTLongName
		} else {
			l, err := s.longName(ctx, key)
			if err != nil {
				return model.Selection{}, err
			}
			short, long = key, l
		}
	}

	value, err := s.query.TermByID(ctx, termID, short)
	if err != nil {
		return model.Selection{}, s.remote(TitleConnectionError, "getTermById", err)
	}

	sel := model.Selection{
		Field:         req.Field,
		Value:         value,
		TermID:        termID,
		OntologyShort: short,
		OntologyLong:  long,
		ModifiedRow:   req.ModifiedRow,
		MappedTerm:    req.MappedTerm,
		Metadata:      metadata,
	}
	return sel, nil
}

// longName returns "Name [KEY]" for an ontology key, fetching the registry
// when it has not been loaded.
func (s *Service) longName(ctx context.Context, key string) (string, error) {
	names := s.Ontologies()
	if len(names) == 0 {
		fetched, err := s.query.OntologyNames(ctx)
		if err != nil {
			return "", s.remote(TitleConnectionError, "getOntologyNames", err)
		}
		names = fetched
	}
	for _, o := range names {
		if strings.EqualFold(o.Key, key) {
			return o.Label(), nil
		}
	}
	if model.IsNEWT(key) {
		return model.NEWTLongName, nil
	}
	return "unknown", nil
}

// HierarchyTermName resolves the name used to request a term's hierarchy graph.
func (s *Service) HierarchyTermName(ctx context.Context, choice ontology.Choice, termID string) (name, ontologyKey string, err error) {
	if termID == "" {
		return "", "", ErrNothingSelected
	}
	ontologyKey = choice.Ontology()
	if ontologyKey == "" {
		ontologyKey, _ = model.OntologyFromTermID(termID)
	}
	name, err = s.query.TermByID(ctx, termID, ontologyKey)
	if err != nil {
		return "", "", s.remote(TitleConnectionError, "getTermById", err)
	}
	return name, ontologyKey, nil
}
