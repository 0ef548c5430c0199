package main

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"sync"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/compomics/ols-dialog/pkg/config"
	"github.com/compomics/ols-dialog/pkg/lookup"
	"github.com/compomics/ols-dialog/pkg/model"
	"github.com/compomics/ols-dialog/pkg/ols"
	"github.com/compomics/ols-dialog/pkg/ontology"
	"github.com/compomics/ols-dialog/pkg/version"
)

// soapFake answers OLS operations from canned return bodies, keyed by
// operation name and optionally "op termId".
type soapFake struct {
	mu      sync.Mutex
	ops     []string
	replies map[string]string
}

func (f *soapFake) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	op, termID := parseOperation(r.Body)
	f.mu.Lock()
	f.ops = append(f.ops, op)
	f.mu.Unlock()

	body, ok := f.replies[op+" "+termID]
	if !ok {
		body = f.replies[op]
	}
	w.Header().Set("Content-Type", "text/xml")
	fmt.Fprintf(w, `<?xml version="1.0" encoding="utf-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
<soapenv:Body><ns1:%[1]sResponse xmlns:ns1="%[2]s"><%[1]sReturn>%[3]s</%[1]sReturn></ns1:%[1]sResponse></soapenv:Body>
</soapenv:Envelope>`, op, ols.Namespace, body)
}

func parseOperation(r io.Reader) (op, termID string) {
	dec := xml.NewDecoder(r)
	var current string
	for {
		tok, err := dec.Token()
		if err != nil {
			return op, termID
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space == ols.Namespace && op == "" {
				op = t.Name.Local
			}
			current = t.Name.Local
		case xml.CharData:
			if current == "termId" {
				termID += string(t)
			}
		case xml.EndElement:
			current = ""
		}
	}
}

func items(kv ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, "<item><key>%s</key><value>%s</value></item>", kv[i], kv[i+1])
	}
	return b.String()
}

func (f *soapFake) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, o := range f.ops {
		if o == op {
			n++
		}
	}
	return n
}

func newSOAPFake() *soapFake {
	return &soapFake{replies: map[string]string{
		"getOntologyNames": items("GO", "Gene Ontology", "MOD", "Protein Modifications (PSI-MOD)", "NEWT", "NEWT UniProt Taxonomy Database"),
		"getTermsByName":   items("GO:0006915", "apoptotic process", "GO:0043065", "positive regulation of apoptotic process"),
		"getTermById":      "apoptotic process",
		"getRootTerms":     items("GO:0008150", "biological_process", "GO:0005575", "cellular_component"),
		"getTermChildren":  items("GO:0009987", "cellular process"),
		"getTermMetadata":  items("definition", "A programmed cell death process.", "exact_synonym", "apoptosis"),
		"getTermXrefs":     items("Wikipedia", "Apoptosis"),
		"getTermsByAnnotationData": `<item><termId>MOD:00046</termId><termName>O-phospho-L-serine</termName>` +
			`<annotationType>DiffMono</annotationType><annotationNumberValue>79.966331</annotationNumberValue></item>`,
	}}
}

// setup starts the fake service and points a fresh configuration at it.
func setup(t *testing.T, f http.Handler) string {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf("endpoint: %s\nerror_log: %s\n", srv.URL, filepath.Join(dir, "olsd.log"))
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvConfig, path)
	return dir
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func exitCode(err error) int {
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	if err != nil {
		return 1
	}
	return 0
}

func TestRun_Version(t *testing.T) {
	out, _, err := runCLI(t, "--version")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, version.Version) {
		t.Errorf("output = %q", out)
	}
}

func TestRun_Help(t *testing.T) {
	_, errOut, err := runCLI(t, "--help")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"Usage:", "--robot-search-name", "--preselect"} {
		if !strings.Contains(errOut, want) {
			t.Errorf("help missing %q", want)
		}
	}
}

func TestRun_UsageErrors(t *testing.T) {
	setup(t, newSOAPFake())
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--nope"}},
		{"stray argument", []string{"apoptosis"}},
		{"bad format", []string{"--format", "xml", "--robot-ontologies"}},
		{"two robot queries", []string{"--robot-ontologies", "--robot-roots"}},
		{"empty preselect key", []string{"--preselect", "=GO:1", "--robot-ontologies"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args...)
			if code := exitCode(err); code != 2 {
				t.Errorf("exit code = %d (%v), want 2", code, err)
			}
		})
	}
}

func TestRun_RobotOntologies(t *testing.T) {
	setup(t, newSOAPFake())
	out, _, err := runCLI(t, "--robot-ontologies", "--ontology", "GO")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var got []choiceOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	if len(got) != 4 || got[0].Label != ontology.AllLabel {
		t.Fatalf("choices = %+v", got)
	}
	for _, c := range got {
		if c.Selected != (c.Key == "GO") {
			t.Errorf("choice %q selected = %v", c.Label, c.Selected)
		}
	}
}

func TestRun_RobotOntologiesText(t *testing.T) {
	setup(t, newSOAPFake())
	out, _, err := runCLI(t, "--robot-ontologies", "--format", "text")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %q", lines)
	}
	if lines[0] != "all\t"+ontology.AllLabel {
		t.Errorf("first line = %q", lines[0])
	}
	if !slices.Contains(lines, "GO\tGene Ontology [GO]") {
		t.Errorf("no GO line in %q", lines)
	}
	for _, l := range lines {
		if key, label, ok := strings.Cut(l, "\t"); !ok || key == "" || label == "" {
			t.Errorf("line %q is not KEY<TAB>label", l)
		}
	}
}

func TestRun_RobotSearchName(t *testing.T) {
	f := newSOAPFake()
	setup(t, f)
	out, _, err := runCLI(t, "--robot-search-name", "apoptosis", "--ontology", "GO")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var got termsOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if got.Count != 2 || got.Terms[0].ID != "GO:0006915" {
		t.Errorf("result = %+v", got)
	}
	if got.Ontology != "Gene Ontology [GO]" {
		t.Errorf("ontology = %q", got.Ontology)
	}
}

func TestRun_RobotSearchTooShort(t *testing.T) {
	setup(t, newSOAPFake())
	_, _, err := runCLI(t, "--robot-search-name", "ap")
	if code := exitCode(err); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if err == nil || !strings.Contains(err.Error(), "3 characters") {
		t.Errorf("err = %v", err)
	}
}

func TestRun_RobotSearchIDNoMatch(t *testing.T) {
	f := newSOAPFake()
	f.replies["getTermById GO:9999999"] = "GO:9999999"
	setup(t, f)

	_, _, err := runCLI(t, "--robot-search-id", "GO:9999999", "--ontology", "GO")
	if code := exitCode(err); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if err == nil || !strings.Contains(err.Error(), "No matching terms") {
		t.Errorf("err = %v", err)
	}
}

func TestRun_RobotRootsAndChildren(t *testing.T) {
	setup(t, newSOAPFake())

	out, _, err := runCLI(t, "--robot-roots", "--ontology", "GO", "--format", "text")
	if err != nil {
		t.Fatalf("roots: %v", err)
	}
	want := "GO:0008150\tbiological_process\nGO:0005575\tcellular_component\n"
	if out != want {
		t.Errorf("roots = %q, want %q", out, want)
	}

	out, _, err = runCLI(t, "--robot-children", "GO:0008150", "--format", "text")
	if err != nil {
		t.Fatalf("children: %v", err)
	}
	if out != "GO:0009987\tcellular process\n" {
		t.Errorf("children = %q", out)
	}
}

func TestRun_RobotRootsRefused(t *testing.T) {
	setup(t, newSOAPFake())
	_, _, err := runCLI(t, "--robot-roots", "--ontology", "NEWT")
	if err == nil || !strings.Contains(err.Error(), "not available for NEWT") {
		t.Errorf("err = %v", err)
	}
}

func TestRun_RobotDetails(t *testing.T) {
	setup(t, newSOAPFake())
	out, _, err := runCLI(t, "--robot-details", "GO:0006915")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var got model.TermDetails
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if got.Definition != "A programmed cell death process." {
		t.Errorf("definition = %q", got.Definition)
	}
	if !reflect.DeepEqual(got.Xrefs, []model.Pair{{Key: "Wikipedia", Value: "Apoptosis"}}) {
		t.Errorf("xrefs = %+v", got.Xrefs)
	}
}

func TestRun_RobotResolveYAML(t *testing.T) {
	setup(t, newSOAPFake())
	out, _, err := runCLI(t,
		"--robot-resolve", "GO:0006915",
		"--ontology", "GO",
		"--field", "Sample Treatment",
		"--row", "4",
		"--format", "yaml",
	)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var got model.Selection
	if err := yaml.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	want := model.Selection{
		Field:         "Sample Treatment",
		Value:         "apoptotic process",
		TermID:        "GO:0006915",
		OntologyShort: "GO",
		OntologyLong:  "Gene Ontology [GO]",
		ModifiedRow:   4,
		Metadata: map[string]string{
			"definition":    "A programmed cell death process.",
			"exact_synonym": "apoptosis",
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("selection = %+v\nwant %+v", got, want)
	}
}

func TestRun_RobotMass(t *testing.T) {
	f := newSOAPFake()
	setup(t, f)
	out, _, err := runCLI(t, "--robot-search-mass", "--mass", "80", "--accuracy", "0.5")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var got massOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if got.Count != 1 || got.Hits[0].TermID != "MOD:00046" || got.Type != model.MassDiffMono {
		t.Errorf("result = %+v", got)
	}
	if got.From != 79.5 || got.To != 80.5 {
		t.Errorf("window = [%v, %v]", got.From, got.To)
	}
}

func TestRun_RobotMassInvalid(t *testing.T) {
	setup(t, newSOAPFake())
	_, _, err := runCLI(t, "--robot-search-mass", "--mass", "heavy")
	if code := exitCode(err); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
}

func TestRun_RobotMassNegativeAccuracy(t *testing.T) {
	f := newSOAPFake()
	setup(t, f)
	_, _, err := runCLI(t, "--robot-search-mass", "--mass", "80", "--accuracy=-0.5")
	if code := exitCode(err); code != 1 {
		t.Fatalf("exit code = %d (%v), want 1", code, err)
	}
	if !strings.Contains(err.Error(), lookup.ErrAccuracyNegative.Message) {
		t.Errorf("err = %v", err)
	}
	if f.count("getTermsByAnnotationData") != 0 {
		t.Error("negative accuracy should not query")
	}
}

func TestLookupExit(t *testing.T) {
	other := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"connection", &lookup.ConnectionError{Title: lookup.TitleLoadError, Op: "getOntologyNames"}, 3},
		{"wrapped connection", fmt.Errorf("loading: %w", &lookup.ConnectionError{Op: "getRootTerms", Err: other}), 3},
		{"notice", lookup.ErrNoMatch, 1},
		{"other", other, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(lookupExit(tt.err)); got != tt.want {
				t.Errorf("exit code = %d, want %d", got, tt.want)
			}
		})
	}
	if lookupExit(other) != other {
		t.Error("unrelated errors should pass through")
	}
}

func TestRun_ConnectionFailure(t *testing.T) {
	dir := setup(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))

	_, _, err := runCLI(t, "--robot-ontologies")
	if code := exitCode(err); code != 3 {
		t.Errorf("exit code = %d (%v), want 3", code, err)
	}

	data, readErr := os.ReadFile(filepath.Join(dir, "olsd.log"))
	if readErr != nil {
		t.Fatalf("reading error log: %v", readErr)
	}
	if !strings.Contains(string(data), "getOntologyNames") {
		t.Errorf("error log does not mention the failed call:\n%s", data)
	}
}

func TestParsePreselect(t *testing.T) {
	tests := []struct {
		name       string
		values     []string
		configured map[string][]string
		want       ontology.Preselected
	}{
		{"none", nil, nil, nil},
		{"from config", nil, map[string][]string{"GO": nil}, ontology.Preselected{"GO": nil}},
		{"whole ontologies", []string{"GO", "NEWT"}, nil, ontology.Preselected{"GO": nil, "NEWT": nil}},
		{"rooted", []string{"GO=GO:0008150, GO:0005575"}, nil, ontology.Preselected{"GO": {"GO:0008150", "GO:0005575"}}},
		{"flags win", []string{"MOD"}, map[string][]string{"GO": nil}, ontology.Preselected{"MOD": nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePreselect(tt.values, tt.configured)
			if err != nil {
				t.Fatalf("parsePreselect: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWriteText_Selection(t *testing.T) {
	var b bytes.Buffer
	sel := model.Selection{TermID: "GO:0006915", Value: "apoptotic process", OntologyShort: "GO"}
	if err := writeOutput(&b, "text", sel); err != nil {
		t.Fatal(err)
	}
	if b.String() != "GO:0006915\tapoptotic process\tGO\n" {
		t.Errorf("text = %q", b.String())
	}
}
