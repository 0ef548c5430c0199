package model

import "strings"

// OntologyFromTermID extracts the ontology key from a term accession.
// "GO:0005575" -> "GO", "EFO_0000001" -> "EFO". Accessions without a
// separator are NEWT taxonomy IDs. The no-roots placeholder has no ontology.
func OntologyFromTermID(termID string) (string, bool) {
	if i := strings.LastIndex(termID, ":"); i != -1 {
		return termID[:i], true
	}
	if i := strings.LastIndex(termID, "_"); i != -1 {
		return termID[:i], true
	}
	if strings.EqualFold(termID, NoRootTermsID) {
		return "", false
	}
	return NEWT, true
}

// IsNEWT reports whether the ontology key denotes the NEWT taxonomy.
func IsNEWT(ontology string) bool {
	return strings.EqualFold(ontology, NEWT)
}

// TermIDPrefix is the text a term ID search field starts with once an ontology
// is chosen.
func TermIDPrefix(ontology string) string {
	switch {
	case ontology == "":
		return ""
	case strings.EqualFold(ontology, EFO):
		return ontology + "_"
	case IsNEWT(ontology):
		return ""
	}
	return ontology + ":"
}
