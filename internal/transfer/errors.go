package transfer

import (
	"errors"
	"fmt"

	"github.com/OscarFredriksson/tire-logger/internal/schema"
)

// ErrorCode categorizes import failures.
type ErrorCode string

const (
	// ErrCodeMalformed indicates the document is not valid JSON.
	ErrCodeMalformed ErrorCode = "E201"

	// ErrCodeShape indicates the document does not have the table/row shape.
	ErrCodeShape ErrorCode = "E202"

	// ErrCodeInvalidMode indicates an unknown conflict mode.
	ErrCodeInvalidMode ErrorCode = "E203"

	// ErrCodeUnknownTable indicates the document names a table the store lacks.
	ErrCodeUnknownTable ErrorCode = "E204"

	// ErrCodeConstraint indicates a uniqueness, not-null or foreign-key violation.
	ErrCodeConstraint ErrorCode = "E205"

	// ErrCodeStore indicates any other store failure.
	ErrCodeStore ErrorCode = "E206"
)

// Error is returned by ParseDocument, Importer.Import and Exporter.Export.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Table is the affected table, if any.
	Table string

	// Row is the 0-based row index within Table, -1 when not row-specific.
	Row int

	// Validation lists schema problems for ErrCodeShape.
	Validation schema.Errors

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	switch {
	case e.Table != "" && e.Row >= 0:
		return fmt.Sprintf("%s: %s (table=%s, row=%d)", e.Code, msg, e.Table, e.Row)
	case e.Table != "":
		return fmt.Sprintf("%s: %s (table=%s)", e.Code, msg, e.Table)
	default:
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, table string, row int, msg string, err error) *Error {
	return &Error{Code: code, Message: msg, Table: table, Row: row, Err: err}
}

// CodeOf returns the ErrorCode carried by err, or "" if none.
func CodeOf(err error) ErrorCode {
	var te *Error
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

// IsShapeError reports whether the document or options are at fault
// rather than the store.
func IsShapeError(err error) bool {
	switch CodeOf(err) {
	case ErrCodeMalformed, ErrCodeShape, ErrCodeInvalidMode:
		return true
	}
	return false
}

// IsConstraintError reports whether err is a store constraint violation.
func IsConstraintError(err error) bool {
	return CodeOf(err) == ErrCodeConstraint
}

// IsUnknownTableError reports whether err names a table the store lacks.
func IsUnknownTableError(err error) bool {
	return CodeOf(err) == ErrCodeUnknownTable
}
