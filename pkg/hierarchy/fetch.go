// Package hierarchy downloads the server-rendered graph of a term's ancestors
// and turns it into something a terminal can show.
package hierarchy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultBaseURL is the OLS web application serving hierarchy graphs.
const DefaultBaseURL = "http://www.ebi.ac.uk/ontology-lookup/"

// DefaultTimeout bounds each of the two downloads.
const DefaultTimeout = 20 * time.Second

// MaxDocumentSize is the max bytes read for the graph descriptor or image (16MB).
const MaxDocumentSize = 16 * 1024 * 1024

// Window clamps applied to the graph, in pixels.
const (
	HorizontalPadding = 40
	VerticalPadding   = 40
	MinWidth          = 250
	MaxWidth          = 600
	MaxHeight         = 600
)

// ErrNoImage is returned when the graph descriptor names no image file.
var ErrNoImage = errors.New("no image file in hierarchy response")

// Graph is a downloaded hierarchy image
type Graph struct {
	TermID   string
	TermName string
	Ontology string
	ImageURL string
	Image    image.Image
}

// Title is the heading shown above the graph.
func (g *Graph) Title() string {
	return "Term Hierarchy: " + g.TermID
}

// Size is the clamped viewer size for the graph: the padded image, at least
// MinWidth and at most MaxWidth wide, at most MaxHeight high.
func (g *Graph) Size() (width, height int) {
	if g.Image == nil {
		return MinWidth, 0
	}
	b := g.Image.Bounds()
	width = b.Dx() + HorizontalPadding
	height = b.Dy() + VerticalPadding
	if width > MaxWidth {
		width = MaxWidth
	} else if width < MinWidth {
		width = MinWidth
	}
	if height > MaxHeight {
		height = MaxHeight
	}
	return width, height
}

// Save writes the graph as a PNG file.
func (g *Graph) Save(path string) error {
	if g.Image == nil {
		return ErrNoImage
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := png.Encode(f, g.Image); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

// Fetcher retrieves hierarchy graphs over HTTP.
type Fetcher struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithBaseURL points the fetcher at another OLS deployment.
func WithBaseURL(u string) Option {
	return func(f *Fetcher) {
		if u == "" {
			return
		}
		if !strings.HasSuffix(u, "/") {
			u += "/"
		}
		f.baseURL = u
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(f *Fetcher) {
		if hc != nil {
			f.httpClient = hc
		}
	}
}

// WithTimeout sets the per-download timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// NewFetcher creates a Fetcher for the public OLS unless overridden.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// GraphURL is the address of the descriptor naming the graph image.
func (f *Fetcher) GraphURL(termID, termName, ontology string) string {
	termName = strings.ToLower(strings.ReplaceAll(termName, " ", "_"))
	return f.baseURL + "generateSSFiles.do?termId=" + url.QueryEscape(termID) +
		"&termName=" + url.QueryEscape(termName) +
		"&ontologyName=" + url.QueryEscape(ontology) +
		"&graphType=root"
}

// ImageURL is the address of a rendered graph image.
func (f *Fetcher) ImageURL(file string) string {
	return f.baseURL + "serveImgFile.do?imgFileName=" + file
}

// ExtractImageFile returns the text between the last <imgFile> and the last
// </imgFile> tag of the descriptor.
func ExtractImageFile(doc string) (string, error) {
	const open, closing = "<imgFile>", "</imgFile>"
	start := strings.LastIndex(doc, open)
	end := strings.LastIndex(doc, closing)
	if start == -1 || end == -1 || end < start+len(open) {
		return "", ErrNoImage
	}
	file := strings.TrimSpace(doc[start+len(open) : end])
	if file == "" {
		return "", ErrNoImage
	}
	return file, nil
}

// Fetch downloads the descriptor, then the image it names.
func (f *Fetcher) Fetch(ctx context.Context, termID, termName, ontology string) (*Graph, error) {
	doc, err := f.get(ctx, f.GraphURL(termID, termName, ontology))
	if err != nil {
		return nil, fmt.Errorf("fetching hierarchy for %s: %w", termID, err)
	}
	// The descriptor is read line by line and concatenated.
	flat := strings.NewReplacer("\r", "", "\n", "").Replace(string(doc))
	file, err := ExtractImageFile(flat)
	if err != nil {
		return nil, fmt.Errorf("hierarchy for %s: %w", termID, err)
	}

	imgURL := f.ImageURL(file)
	data, err := f.get(ctx, imgURL)
	if err != nil {
		return nil, fmt.Errorf("fetching hierarchy image %s: %w", file, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding hierarchy image %s: %w", file, err)
	}

	return &Graph{
		TermID:   termID,
		TermName: termName,
		Ontology: ontology,
		ImageURL: imgURL,
		Image:    img,
	}, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, MaxDocumentSize))
}
