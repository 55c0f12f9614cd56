package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// FetchErrorKind classifies a failed retrieval.
type FetchErrorKind string

// Fetch failure classes. A timed-out request is reported distinctly; every
// other transport-level failure (DNS, refused connection, non-2xx status)
// is grouped under Transport.
const (
	FetchTimeout   FetchErrorKind = "timeout"
	FetchTransport FetchErrorKind = "transport"
)

// FetchError is the terminal failure for one locator's retrieval. There
// are no retries; the pipeline drains regardless.
type FetchError struct {
	Kind FetchErrorKind
	URL  Locator
	Err  error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s error for %s: %v", e.Kind, e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s error for %s", e.Kind, e.URL)
}

// Unwrap supports errors.Is/As chains.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// ClassifyFetchError wraps err as a FetchError, distinguishing timeouts
// from other transport failures.
func ClassifyFetchError(url Locator, err error) *FetchError {
	kind := FetchTransport
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = FetchTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = FetchTimeout
	}
	return &FetchError{Kind: kind, URL: url, Err: err}
}

// ParseErrorKind classifies a failed parse.
type ParseErrorKind string

// Parse failure classes.
const (
	ParseMalformed          ParseErrorKind = "malformed"
	ParseUnsupportedOptions ParseErrorKind = "unsupported_options"
)

// ParseError reports that a payload could not be converted to a RecordSet.
type ParseError struct {
	Kind ParseErrorKind
	Err  error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("parse %s error", e.Kind)
}

// Unwrap supports errors.Is/As chains.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err is a fetch timeout.
func IsTimeout(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == FetchTimeout
}
