// Package errs classifies failures of tracker operations so that callers can
// decide how to surface them.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the class of a failure
type Kind int

const (
	// Storage covers connectivity and query failures. Errors without a kind
	// are treated as storage failures.
	Storage Kind = iota
	// Configuration means reference data needed by an operation is missing,
	// e.g. no offset for a type/level pair.
	Configuration
	// Validation means the caller supplied incomplete or malformed input.
	Validation
	// NotFound means the addressed submission does not exist.
	NotFound
	// Conflict means the submission is not in a state that allows the operation.
	Conflict
)

// Sentinels for errors.Is checks
var (
	ErrStorage       = errors.New("storage error")
	ErrConfiguration = errors.New("configuration error")
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration"
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	default:
		return "storage"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case Configuration:
		return ErrConfiguration
	case Validation:
		return ErrValidation
	case NotFound:
		return ErrNotFound
	case Conflict:
		return ErrConflict
	default:
		return ErrStorage
	}
}

// Error is a classified failure of a single operation
type Error struct {
	Kind   Kind
	Op     string   // operation that failed, e.g. "ledger.RecordAttempt"
	Fields []string // input fields involved, if any
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.sentinel().Error())
	if len(e.Fields) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(e.Fields, ", "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel of the error's kind
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// E builds a classified error
func E(kind Kind, op string, err error, fields ...string) *Error {
	return &Error{Kind: kind, Op: op, Fields: fields, Err: err}
}

// Validationf is a shortcut for a validation error with a formatted message
func Validationf(op string, fields []string, format string, args ...any) *Error {
	return E(Validation, op, fmt.Errorf(format, args...), fields...)
}

// KindOf returns the kind of the outermost classified error in err's chain.
// Unclassified errors come from the storage layer.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Storage
}

// FieldsOf returns the input fields attached to err, if any
func FieldsOf(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}
