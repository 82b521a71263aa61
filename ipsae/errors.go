package ipsae

import (
	"errors"
	"fmt"
)

// Kinds of failure. Every error returned by this module's loaders and
// scorers wraps exactly one of these, so callers can test for them with
// errors.Is.
var (
	// ErrShape is returned when residues, coordinates and the PAE matrix
	// do not agree on their dimensions.
	ErrShape = errors.New("input shape mismatch")

	// ErrUnsupportedFormat is returned when a file type is not recognized.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrMalformed is returned when a file has a recognized type but its
	// content cannot be parsed.
	ErrMalformed = errors.New("malformed content")

	// ErrMissingData is returned when an expected field, key or chain is
	// absent.
	ErrMissingData = errors.New("missing data")

	// ErrCutoff is returned when a PAE or distance cutoff is not a
	// positive finite number.
	ErrCutoff = errors.New("invalid cutoff")
)

// Error describes a failed load or scoring operation.
type Error struct {
	Kind   error  // one of ErrShape, ErrUnsupportedFormat, ...
	Op     string // operation that failed, e.g. "load pae"
	Path   string // file involved, if any
	Detail string
	Err    error // underlying cause, if any
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" in '%s'", e.Path)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += fmt.Sprintf(" (%s)", e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

// WithPath returns a copy of e that names the file involved.
func (e *Error) WithPath(path string) *Error {
	cp := *e
	cp.Path = path
	return &cp
}

// Errorf creates an *Error of the given kind with a formatted detail
// message.
func Errorf(kind error, op, format string, v ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Detail: fmt.Sprintf(format, v...)}
}

// Wrap creates an *Error of the given kind around an underlying cause.
func Wrap(kind error, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}
