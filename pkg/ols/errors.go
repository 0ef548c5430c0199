package ols

import (
	"errors"
	"fmt"
	"strings"
)

// RemoteError is returned for any failed call to the service.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("ols %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Fault is a SOAP fault raised by the service
type Fault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
}

func (f *Fault) Error() string {
	msg := strings.TrimSpace(f.String)
	if msg == "" {
		msg = "unknown fault"
	}
	if f.Code != "" {
		return fmt.Sprintf("soap fault %s: %s", strings.TrimSpace(f.Code), msg)
	}
	return "soap fault: " + msg
}

// IsRemote reports whether err came from a call to the service.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}
