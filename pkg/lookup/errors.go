package lookup

import (
	"errors"
	"fmt"
)

// DefaultConnectionMessage is shown for every failed call to the service.
const DefaultConnectionMessage = "An error occurred when trying to contact the OLS. Make sure that\n" +
	"you are online. Also check your firewall (and proxy) settings.\n\n" +
	"If you use a private OLS deployment, check the endpoint in your\n" +
	"configuration file."

// Dialog titles for connection failures.
const (
	TitleConnectionError = "OLS Connection Error"
	TitleLoadError       = "Failed to Contact the OLS"
	TitleHierarchyError  = "Error Opening Term Hierarchy"
)

// ConnectionError wraps a failed remote call. Message is meant for the user.
type ConnectionError struct {
	Title   string
	Message string
	Op      string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Title, e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// NoticeError is an informational problem with the user's input
type NoticeError struct {
	Title   string
	Message string
}

func (e *NoticeError) Error() string {
	return e.Message
}

var (
	// ErrTooShort means the term name is below the minimum search length.
	ErrTooShort = errors.New("search text too short")

	// ErrNoMatch means a term ID search found nothing.
	ErrNoMatch = &NoticeError{Title: "No Matching Terms", Message: "No matching terms found."}

	// ErrNothingSelected means there is no term to use or inspect.
	ErrNothingSelected = errors.New("no term selected")
)

// Notices raised by the mass search form.
var (
	ErrMassNotNumber     = &NoticeError{Title: "Modification Mass", Message: "The mass is not a number!"}
	ErrAccuracyNotNumber = &NoticeError{Title: "Mass Accuracy", Message: "The precision is not a number!"}
	ErrAccuracyNegative  = &NoticeError{Title: "Mass Accuracy", Message: "The precision has to be a positive value."}
	ErrMassTypeMissing   = &NoticeError{Title: "Mass Type", Message: "Select a mass type to search with."}
)

// Notices raised when the browse tab has to be left.
var (
	ErrBrowseNEWT     = &NoticeError{Title: "Browse Ontology Disabled", Message: "Browse Ontology is not available for NEWT."}
	ErrBrowseMultiple = &NoticeError{Title: "Browse Ontology Disabled", Message: "Browse Ontology is not available when searching several ontologies."}
)

// IsConnection reports whether err is a connection failure.
func IsConnection(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// AsNotice extracts a notice from err.
func AsNotice(err error) (*NoticeError, bool) {
	var ne *NoticeError
	if errors.As(err, &ne) {
		return ne, true
	}
	return nil, false
}
