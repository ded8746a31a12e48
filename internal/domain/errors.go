package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is matched by every error raised for malformed input: rows
	// whose field count disagrees with the header, bad timestamps and
	// non-numeric lab values.
	ErrParse = errors.New("parse error")

	// ErrNotFound is matched when a query names a patient that has no entry
	// in the index it needs.
	ErrNotFound = errors.New("not found")

	// ErrInvalidOperator is matched when a comparison operator is neither ">" nor "<".
	ErrInvalidOperator = errors.New("invalid operator")

	// ErrIO is matched when a record source cannot be opened or read.
	ErrIO = errors.New("i/o error")
)

// ParseError describes input that could not be interpreted.
//
// Line is 1-based and zero when the value did not come from a source line
// (for example a timestamp parsed at query time).
type ParseError struct {
	Source string
	Line   int
	Field  string
	Value  string
	Reason string
	cause  error
}

// NewParseError builds a ParseError. cause may be nil.
func NewParseError(source string, line int, field, value, reason string, cause error) *ParseError {
	return &ParseError{Source: source, Line: line, Field: field, Value: value, Reason: reason, cause: cause}
}

func (e *ParseError) Error() string {
	msg := "parse error"
	if e.Source != "" {
		msg += " in " + e.Source
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" line %d", e.Line)
	}
	if e.Field != "" {
		msg += fmt.Sprintf(" field %s=%q", e.Field, e.Value)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.cause }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// NotFoundError reports a patient missing from the patient or lab index.
type NotFoundError struct {
	// Index is "patient" or "lab".
	Index     string
	PatientID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("patient %q not found in %s index", e.PatientID, e.Index)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InvalidOperatorError reports an unsupported comparison operator.
type InvalidOperatorError struct {
	Operator string
}

func (e *InvalidOperatorError) Error() string {
	return fmt.Sprintf("invalid operator %q: must be \">\" or \"<\"", e.Operator)
}

func (e *InvalidOperatorError) Is(target error) bool { return target == ErrInvalidOperator }

// IOError wraps a failure to open or read a record source.
//
// The original underlying error can be accessed via errors.Unwrap.
type IOError struct {
	Source string
	Op     string
	cause  error
}

// NewIOError wraps cause as an IOError for the given source and operation.
func NewIOError(source, op string, cause error) *IOError {
	return &IOError{Source: source, Op: op, cause: cause}
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Source, e.cause)
}

func (e *IOError) Unwrap() error { return e.cause }

func (e *IOError) Is(target error) bool { return target == ErrIO }
