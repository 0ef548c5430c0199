package lookup

import "github.com/compomics/ols-dialog/pkg/model"

// Inputable receives the term chosen in the dialog.
type Inputable interface {
	InsertOLSResult(sel model.Selection) error
}

// InputableFunc adapts a function to Inputable.
type InputableFunc func(sel model.Selection) error

// InsertOLSResult calls f.
func (f InputableFunc) InsertOLSResult(sel model.Selection) error {
	return f(sel)
}

// Request carries the host's context for a selection.
type Request struct {
	Field       string
	ModifiedRow int // -1 when adding a new row
	MappedTerm  string
}

// NewRequest returns a request for a new row.
func NewRequest(field, mappedTerm string) Request {
	return Request{Field: field, ModifiedRow: -1, MappedTerm: mappedTerm}
}
