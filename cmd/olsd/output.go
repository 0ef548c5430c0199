package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/compomics/ols-dialog/pkg/model"
)

func validateFormat(format string) error {
	switch format {
	case "json", "yaml", "text":
		return nil
	}
	return fmt.Errorf("invalid --format %q: want json, yaml or text", format)
}

// writeOutput encodes v for stdout.
func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case "text":
		if writeText(w, v) {
			return nil
		}
		return writeOutput(w, "yaml", v)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeText prints tab separated lines for the types that have a natural
// tabular form. It reports false for anything else.
func writeText(w io.Writer, v any) bool {
	switch v := v.(type) {
	case model.Selection:
		fmt.Fprintf(w, "%s\t%s\t%s\n", v.TermID, v.Value, v.OntologyShort)
	case model.Term:
		fmt.Fprintf(w, "%s\t%s\n", v.ID, v.Name)
	case termsOutput:
		for _, t := range v.Terms {
			fmt.Fprintf(w, "%s\t%s\n", t.ID, t.Name)
		}
	case massOutput:
		for _, h := range v.Hits {
			fmt.Fprintf(w, "%s\t%s\t%.4f\n", h.TermID, h.TermName, h.MassDelta)
		}
	case []choiceOutput:
		for _, c := range v {
			key := c.Key
			if key == "" {
				key = c.Kind
			}
			fmt.Fprintf(w, "%s\t%s\n", key, c.Label)
		}
	case model.TermDetails:
		fmt.Fprintln(w, v.TermID)
		if v.Disabled {
			fmt.Fprintln(w, v.Message)
			return true
		}
		if v.Definition != "" {
			fmt.Fprintln(w, v.Definition)
		}
		for _, p := range append(append([]model.Pair(nil), v.Metadata...), v.Xrefs...) {
			fmt.Fprintf(w, "%s\t%s\n", p.Key, strings.ReplaceAll(p.Value, "\n", " "))
		}
	default:
		return false
	}
	return true
}
