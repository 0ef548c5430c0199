// Package ols is a client for the Ontology Lookup Service query endpoint.
//
// The service speaks SOAP 1.1. Every operation is a POST of an envelope whose
// body holds a single wrapper element named after the operation; replies carry
// a single "<op>Return" element holding either text, a sequence of
// <item><key/><value/></item> map entries, or annotation records.
package ols

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/compomics/ols-dialog/pkg/model"
)

// DefaultEndpoint is the public OLS query service.
const DefaultEndpoint = "http://www.ebi.ac.uk/ontology-lookup/services/OntologyQuery"

// Namespace is the XML namespace of the query operations.
const Namespace = "http://www.ebi.ac.uk/ontology-lookup/OntologyQuery"

// DefaultTimeout bounds a single remote call.
const DefaultTimeout = 20 * time.Second

// MaxResponseSize is the max bytes read from a reply (8MB).
const MaxResponseSize = 8 * 1024 * 1024

// DefaultUserAgent identifies the client to the service.
const DefaultUserAgent = "ols-dialog"

// Query is the subset of the OLS API used by the dialog.
type Query interface {
	OntologyNames(ctx context.Context) ([]model.Ontology, error)
	RootTerms(ctx context.Context, ontology string) ([]model.Term, error)
	TermChildren(ctx context.Context, termID, ontology string, distance int) ([]model.Term, error)
	TermsByName(ctx context.Context, partial, ontology string) ([]model.Term, error)
	TermMetadata(ctx context.Context, termID, ontology string) ([]model.Pair, error)
	TermXrefs(ctx context.Context, termID, ontology string) ([]model.Pair, error)
	TermByID(ctx context.Context, termID, ontology string) (string, error)
	TermsByAnnotationData(ctx context.Context, ontology, annotationType string, from, to float64) ([]model.ModificationHit, error)
}

// Client talks to the query service over HTTP.
type Client struct {
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
}

var _ Query = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithEndpoint sets the service URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithHTTPClient replaces the HTTP client, e.g. for tests or proxies.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-call timeout. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a Client for the default endpoint unless overridden.
func NewClient(opts ...Option) *Client {
	c := &Client{
		endpoint:   DefaultEndpoint,
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the service URL in use.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// OntologyNames lists the ontology registry, key to display name.
func (c *Client) OntologyNames(ctx context.Context) ([]model.Ontology, error) {
	ret, err := c.call(ctx, "getOntologyNames")
	if err != nil {
		return nil, err
	}
	out := make([]model.Ontology, 0, len(ret.Items))
	for _, it := range ret.Items {
		out = append(out, model.Ontology{Key: strings.TrimSpace(it.Key), Name: strings.TrimSpace(it.Value)})
	}
	return out, nil
}

// RootTerms lists the top-level terms of an ontology.
func (c *Client) RootTerms(ctx context.Context, ontology string) ([]model.Term, error) {
	ret, err := c.call(ctx, "getRootTerms", str("ontologyName", ontology))
	if err != nil {
		return nil, err
	}
	return ret.terms(), nil
}

// TermChildren lists the descendants of a term up to distance levels down.
func (c *Client) TermChildren(ctx context.Context, termID, ontology string, distance int) ([]model.Term, error) {
	ret, err := c.call(ctx, "getTermChildren",
		str("termId", termID),
		str("ontologyName", ontology),
		num("distance", strconv.Itoa(distance)),
		null("relationTypes"),
	)
	if err != nil {
		return nil, err
	}
	return ret.terms(), nil
}

// TermsByName finds terms whose name contains partial. An empty ontology
// searches every ontology.
func (c *Client) TermsByName(ctx context.Context, partial, ontology string) ([]model.Term, error) {
	ret, err := c.call(ctx, "getTermsByName",
		str("partialName", partial),
		str("ontologyName", ontology),
		num("reverseKeyOrder", "false"),
	)
	if err != nil {
		return nil, err
	}
	return ret.terms(), nil
}

// TermMetadata returns the term's annotations, including its definition.
func (c *Client) TermMetadata(ctx context.Context, termID, ontology string) ([]model.Pair, error) {
	ret, err := c.call(ctx, "getTermMetadata", str("termId", termID), str("ontologyName", ontology))
	if err != nil {
		return nil, err
	}
	return ret.pairs(), nil
}

// TermXrefs returns the term's cross-references.
func (c *Client) TermXrefs(ctx context.Context, termID, ontology string) ([]model.Pair, error) {
	ret, err := c.call(ctx, "getTermXrefs", str("termId", termID), str("ontologyName", ontology))
	if err != nil {
		return nil, err
	}
	return ret.pairs(), nil
}

// TermByID returns the term name. Unknown terms come back as the ID itself.
func (c *Client) TermByID(ctx context.Context, termID, ontology string) (string, error) {
	ret, err := c.call(ctx, "getTermById", str("termId", termID), str("ontologyName", ontology))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(ret.Text), nil
}

// TermsByAnnotationData finds terms whose numeric annotation lies in [from, to].
func (c *Client) TermsByAnnotationData(ctx context.Context, ontology, annotationType string, from, to float64) ([]model.ModificationHit, error) {
	ret, err := c.call(ctx, "getTermsByAnnotationData",
		str("ontologyName", ontology),
		str("annotationType", annotationType),
		null("strValue"),
		num("fromDblValue", strconv.FormatFloat(from, 'f', -1, 64)),
		num("toDblValue", strconv.FormatFloat(to, 'f', -1, 64)),
	)
	if err != nil {
		return nil, err
	}
	hits := make([]model.ModificationHit, 0, len(ret.Items))
	for _, it := range ret.Items {
		if it.TermID == "" {
			continue
		}
		mass, _ := strconv.ParseFloat(strings.TrimSpace(it.AnnotationNumberValue), 64)
		mt := model.MassType(strings.TrimSpace(it.AnnotationType))
		if !mt.IsValid() {
			mt = model.MassType(annotationType)
		}
		hits = append(hits, model.ModificationHit{
			TermID:    strings.TrimSpace(it.TermID),
			TermName:  strings.TrimSpace(it.TermName),
			MassDelta: mass,
			MassType:  mt,
		})
	}
	return hits, nil
}

// call posts one operation and decodes its return element.
func (c *Client) call(ctx context.Context, op string, params ...param) (*returnValue, error) {
	payload, err := encodeRequest(op, params)
	if err != nil {
		return nil, &RemoteError{Op: op, Err: err}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &RemoteError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", `""`)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RemoteError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	var body bytes.Buffer
	if _, err := io.Copy(&limitedWriter{w: &body, limit: MaxResponseSize}, resp.Body); err != nil {
		return nil, &RemoteError{Op: op, Err: fmt.Errorf("reading response: %w", err)}
	}

	ret, fault, decodeErr := decodeResponse(body.Bytes())
	if fault != nil {
		return nil, &RemoteError{Op: op, Err: fault}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{Op: op, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	if decodeErr != nil {
		return nil, &RemoteError{Op: op, Err: decodeErr}
	}
	return ret, nil
}

// limitedWriter wraps a writer and limits total bytes written.
type limitedWriter struct {
	w       io.Writer
	limit   int
	written int
}

func (lw *limitedWriter) Write(p []byte) (n int, err error) {
	remaining := lw.limit - lw.written
	if remaining <= 0 {
		return len(p), nil
	}
	toWrite := p
	if len(p) > remaining {
		toWrite = p[:remaining]
	}
	written, err := lw.w.Write(toWrite)
	lw.written += written
	if err != nil {
		return written, err
	}
	return len(p), nil
}
