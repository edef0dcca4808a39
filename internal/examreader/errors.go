package examreader

import (
	"errors"
	"fmt"
)

// Kind classifies reader failures.
type Kind int

const (
	KindUnknown Kind = iota
	KindIO
	KindTemplate
	KindRedaction
	KindInvalidHeader
)

// Sentinels for errors.Is. Any *Error of the same Kind matches.
var (
	ErrIO            = &Error{Kind: KindIO}
	ErrTemplate      = &Error{Kind: KindTemplate}
	ErrRedaction     = &Error{Kind: KindRedaction}
	ErrInvalidHeader = &Error{Kind: KindInvalidHeader}
	ErrUnknown       = &Error{Kind: KindUnknown}
)

// Error is returned by every reader in this package.
type Error struct {
	Kind     Kind
	Msg      string // diagnostic for Template, key for Redaction
	Expected string // InvalidHeader only
	Found    string // InvalidHeader only
	Err      error  // underlying cause for IO
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindIO:
		return fmt.Sprintf("reading error: %v", e.Err)
	case KindTemplate:
		return "input file is badly formatted: " + e.Msg
	case KindRedaction:
		return "input file is badly formatted: " + e.Msg + " is not available"
	case KindInvalidHeader:
		return fmt.Sprintf("invalid header (expected %q, found %q)", e.Expected, e.Found)
	default:
		return "unknown error"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind so callers can test against the package sentinels.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func ioError(err error) error {
	return &Error{Kind: KindIO, Err: err}
}

func templateError(msg string) error {
	return &Error{Kind: KindTemplate, Msg: msg}
}

func invalidHeader(expected, found string) error {
	return &Error{Kind: KindInvalidHeader, Expected: expected, Found: found}
}
