// Package verr defines the typed errors produced by the curation template
// engine and a non-fail-fast collector used when a whole template or row is
// validated in one pass.
//
// Two result shapes are used deliberately and must not be conflated:
// single-cell mutations fail fast with one *Error, while load/QC paths
// accumulate every defect into an *Errors before reporting.
package verr

import (
	"fmt"
	"strings"
)

// Kind discriminates the error taxonomy. One kind per column grammar or
// structural rule.
type Kind string

const (
	KindHeader     Kind = "header"
	KindTemplate   Kind = "template"
	KindEdit       Kind = "edit"
	KindCurie      Kind = "curie"
	KindPmid       Kind = "pmid"
	KindDiseaseID  Kind = "disease_id"
	KindHgnc       Kind = "hgnc"
	KindHgvs       Kind = "hgvs"
	KindTranscript Kind = "transcript"
	KindWhiteSpace Kind = "whitespace"
	KindLabel      Kind = "label"
	KindAge        Kind = "age"
	KindDeceased   Kind = "deceased"
	KindSex        Kind = "sex"
	KindSeparator  Kind = "separator"
	KindHpoCell    Kind = "hpo_cell"
	KindTermID     Kind = "term_id"
	KindEmpty      Kind = "empty"
)

// Error is a single typed validation failure.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// New builds an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	ve, ok := err.(*Error)
	return ok && ve.Kind == kind
}

// Constructors for recurring failures. Messages are part of the public
// contract: curation front ends display them verbatim.

func Header(format string, args ...any) *Error   { return New(KindHeader, format, args...) }
func Template(format string, args ...any) *Error { return New(KindTemplate, format, args...) }
func Edit(format string, args ...any) *Error     { return New(KindEdit, format, args...) }
func Curie(format string, args ...any) *Error    { return New(KindCurie, format, args...) }
func Hgvs(format string, args ...any) *Error     { return New(KindHgvs, format, args...) }

func LeadingWS(value string) *Error {
	return New(KindWhiteSpace, "Leading whitespace in '%s'", value)
}

func TrailingWS(value string) *Error {
	return New(KindWhiteSpace, "Trailing whitespace in '%s'", value)
}

func ConsecutiveWS(value string) *Error {
	return New(KindWhiteSpace, "Consecutive whitespace in '%s'", value)
}

func ForbiddenCharacter(c rune, label string) *Error {
	return New(KindLabel, "Forbidden character '%c' found in label '%s'", c, label)
}

func EmptyValue() *Error {
	return New(KindEmpty, "Value must not be empty")
}

func EmptyField(fieldName string) *Error {
	return New(KindEmpty, "%s must not be empty", fieldName)
}

func LacksTranscriptVersion(tx string) *Error {
	return New(KindTranscript, "Transcript '%s' is missing a version", tx)
}

func UnrecognizedTranscriptPrefix(tx string) *Error {
	return New(KindTranscript, "Unrecognized transcript prefix '%s'", tx)
}

func TermIDParse(identifier string) *Error {
	return New(KindTermID, "Failed to parse TermId: %s", identifier)
}

func CannotDeleteHeader(row int) *Error {
	return Edit("Cannot delete row %d (header)", row)
}

func DeleteBeyondMaxRow(row, maxRow int) *Error {
	return Edit("Attempt to delete row %d in columns with %d rows", row, maxRow)
}

func RowIndex(idx, rowCount int) *Error {
	return Template("Attempt to index row at index %d with row count %d", idx, rowCount)
}

func ColumnIndex(idx, colCount int) *Error {
	return Template("Attempt to index column at index %d with column count %d", idx, colCount)
}

// Errors is an ordered, append-only collection of validation failures. A
// single pass over a template reports every defect, never just the first.
type Errors struct {
	errs []error
}

// NewErrors returns an empty collector.
func NewErrors() *Errors { return &Errors{} }

// Push appends err; nil is ignored so callers can push check results
// unconditionally.
func (e *Errors) Push(err error) {
	if err == nil {
		return
	}
	// Flatten nested collectors so messages stay one-per-defect.
	if inner, ok := err.(*Errors); ok {
		e.errs = append(e.errs, inner.errs...)
		return
	}
	e.errs = append(e.errs, err)
}

// HasError reports whether anything was collected. It is the sole boolean
// gate used at layer boundaries.
func (e *Errors) HasError() bool { return len(e.errs) > 0 }

// Len returns the number of collected errors.
func (e *Errors) Len() int { return len(e.errs) }

// Messages returns every collected message in insertion order.
func (e *Errors) Messages() []string {
	out := make([]string, len(e.errs))
	for i, err := range e.errs {
		out[i] = err.Error()
	}
	return out
}

// Err returns nil when the collector is empty, otherwise the collector
// itself, so validation functions can end with `return errs.Err()`.
func (e *Errors) Err() error {
	if e == nil || len(e.errs) == 0 {
		return nil
	}
	return e
}

func (e *Errors) Error() string {
	return strings.Join(e.Messages(), "; ")
}
