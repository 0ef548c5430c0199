// Package newt lists commonly used NEWT taxonomy entries for quick insertion.
package newt

import (
	"strconv"

	"github.com/sahilm/fuzzy"
)

// Species is a NEWT taxonomy entry
type Species struct {
	Name   string
	Common string
	TaxID  int
}

// Label is the species as the service names it, e.g. "Homo sapiens (Human)".
func (s Species) Label() string {
	if s.Common == "" {
		return s.Name
	}
	return s.Name + " (" + s.Common + ")"
}

// ID is the NEWT accession of the species.
func (s Species) ID() string {
	return strconv.Itoa(s.TaxID)
}

// Common lists the most frequently used species.
var Common = []Species{
	{Name: "Homo sapiens", Common: "Human", TaxID: 9606},
	{Name: "Mus musculus", Common: "Mouse", TaxID: 10090},
	{Name: "Rattus norvegicus", Common: "Rat", TaxID: 10116},
	{Name: "Arabidopsis thaliana", Common: "Mouse-ear cress", TaxID: 3702},
	{Name: "Bos taurus", Common: "Bovine", TaxID: 9913},
	{Name: "Caenorhabditis elegans", TaxID: 6239},
	{Name: "Danio rerio", Common: "Zebrafish", TaxID: 7955},
	{Name: "Drosophila melanogaster", Common: "Fruit fly", TaxID: 7227},
	{Name: "Escherichia coli", TaxID: 562},
	{Name: "Saccharomyces cerevisiae", Common: "Baker's yeast", TaxID: 4932},
	{Name: "Gallus gallus", Common: "Chicken", TaxID: 9031},
	{Name: "Sus scrofa", Common: "Pig", TaxID: 9823},
	{Name: "Xenopus laevis", Common: "African clawed frog", TaxID: 8355},
	{Name: "Oryza sativa", Common: "Rice", TaxID: 4530},
	{Name: "Schizosaccharomyces pombe", Common: "Fission yeast", TaxID: 4896},
	{Name: "Plasmodium falciparum", Common: "Malaria parasite", TaxID: 5833},
	{Name: "Canis familiaris", Common: "Dog", TaxID: 9615},
}

type source []Species

func (s source) String(i int) string {
	return s[i].Label() + " " + s[i].ID()
}

func (s source) Len() int {
	return len(s)
}

// Filter ranks the species against query. An empty query returns the whole
// list in its usual order.
func Filter(list []Species, query string) []Species {
	if query == "" {
		return append([]Species(nil), list...)
	}
	matches := fuzzy.FindFrom(query, source(list))
	out := make([]Species, 0, len(matches))
	for _, m := range matches {
		out = append(out, list[m.Index])
	}
	return out
}
