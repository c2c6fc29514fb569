// Package formerrors defines the typed failures produced while checking and
// compiling form definitions. Metadata problems are collected into an
// ErrorList rather than returned one at a time so callers can report every
// issue at once.
package formerrors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind categorises a compilation failure.
type Kind string

const (
	// KindValidation marks a malformed form definition (ids, names, kinds).
	KindValidation Kind = "validation"
	// KindMissingOption marks a single_choice field declared without options.
	KindMissingOption Kind = "missing_option"
	// KindCircularReference marks a field participating in a condition cycle.
	KindCircularReference Kind = "circular_reference"
	// KindUnknown wraps any unanticipated failure during compilation.
	KindUnknown Kind = "unknown"
)

// Is reports whether k matches target. KindMissingOption is a specialisation
// of KindValidation and matches it too.
func (k Kind) Is(target Kind) bool {
	return k == target || (k == KindMissingOption && target == KindValidation)
}

// Error is a single definition-level failure. FieldID identifies the offending
// field when one is known; Path locates it inside the definition
// (for example "fields[2].condition.targetFieldId").
type Error struct {
	Kind    Kind
	FieldID string
	Path    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("[")
	sb.WriteString(string(e.Kind))
	sb.WriteString("] ")
	if e.Path != "" {
		sb.WriteString(e.Path)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	return sb.String()
}

// Unwrap exposes the underlying cause for KindUnknown errors.
func (e *Error) Unwrap() error {
	return e.Err
}

// New constructs an Error.
func New(kind Kind, fieldID, path, message string) *Error {
	return &Error{Kind: kind, FieldID: fieldID, Path: path, Message: message}
}

// Newf constructs an Error with a formatted message.
func Newf(kind Kind, fieldID, path, format string, args ...any) *Error {
	return New(kind, fieldID, path, fmt.Sprintf(format, args...))
}

// Unknown wraps err as a KindUnknown failure, keeping its message.
func Unknown(err error) *Error {
	if err == nil {
		err = errors.New("unknown failure")
	}
	return &Error{Kind: KindUnknown, Message: err.Error(), Err: err}
}

// ErrorList accumulates errors instead of stopping at the first one.
type ErrorList struct {
	Errors []*Error
}

// NewErrorList returns an empty list.
func NewErrorList() *ErrorList {
	return &ErrorList{Errors: make([]*Error, 0)}
}

// Add appends err; nil is ignored.
func (el *ErrorList) Add(err *Error) {
	if err == nil {
		return
	}
	el.Errors = append(el.Errors, err)
}

// Addf creates and appends an error.
func (el *ErrorList) Addf(kind Kind, fieldID, path, format string, args ...any) {
	el.Add(Newf(kind, fieldID, path, format, args...))
}

// Merge appends every error of other.
func (el *ErrorList) Merge(other *ErrorList) {
	if other == nil {
		return
	}
	el.Errors = append(el.Errors, other.Errors...)
}

// HasErrors reports whether anything was collected.
func (el *ErrorList) HasErrors() bool {
	return el != nil && len(el.Errors) > 0
}

// Count returns the number of collected errors.
func (el *ErrorList) Count() int {
	if el == nil {
		return 0
	}
	return len(el.Errors)
}

// HasKind reports whether at least one error of kind, or of a specialisation
// of it, was collected.
func (el *ErrorList) HasKind(kind Kind) bool {
	if el == nil {
		return false
	}
	for _, err := range el.Errors {
		if err.Kind.Is(kind) {
			return true
		}
	}
	return false
}

// ByKind returns the errors matching kind in collection order.
func (el *ErrorList) ByKind(kind Kind) []*Error {
	if el == nil {
		return nil
	}
	var out []*Error
	for _, err := range el.Errors {
		if err.Kind.Is(kind) {
			out = append(out, err)
		}
	}
	return out
}

// Error joins every collected message, one per line.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "found %d error(s)", len(el.Errors))
	for _, err := range el.Errors {
		sb.WriteString("\n  ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// ToError returns nil for an empty list and the list itself otherwise.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}

// AsList extracts an ErrorList from err. A lone *Error is wrapped into a
// single-entry list; any other error becomes a KindUnknown entry.
func AsList(err error) *ErrorList {
	if err == nil {
		return nil
	}
	var list *ErrorList
	if errors.As(err, &list) {
		return list
	}
	out := NewErrorList()
	var single *Error
	if errors.As(err, &single) {
		out.Add(single)
		return out
	}
	out.Add(Unknown(err))
	return out
}

// IsKind reports whether err is, or contains, an error of the given kind.
func IsKind(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	var list *ErrorList
	if errors.As(err, &list) {
		return list.HasKind(kind)
	}
	var single *Error
	if errors.As(err, &single) {
		return single.Kind.Is(kind)
	}
	return false
}
