package schema

import (
	"fmt"
	"strings"
)

// Validation error codes (E100-E199)
const (
	ErrInvalidValue      = "E101" // value conflicts with the schema
	ErrFieldNotAllowed   = "E102" // field or table name not allowed
	ErrMissingField      = "E103" // required field absent
	ErrNoAllowedPosition = "E104" // tire allows no wheel position
	ErrMalformedInput    = "E105" // input is not parseable
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Errors joins validation errors into one error value, nil when empty.
type Errors []ValidationError

func (errs Errors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Err returns errs as an error, or nil when there are none.
func (errs Errors) Err() error {
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func classify(msg string) string {
	switch {
	case strings.Contains(msg, "not allowed"):
		return ErrFieldNotAllowed
	case strings.Contains(msg, "incomplete"), strings.Contains(msg, "required"):
		return ErrMissingField
	default:
		return ErrInvalidValue
	}
}
