package query

import (
	"errors"
	"fmt"
)

// ErrUnhandledChart is returned when a chart variant reaches code that does
// not know it. A spec built by FromMap never triggers it.
var ErrUnhandledChart = errors.New("unhandled chart type")

// ValidationError reports a query that breaks a validation rule. Field names
// the offending query key and Value holds what was supplied, if anything.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid query: %s %q: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid query: %s: %s", e.Field, e.Reason)
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalid(field string, value any, format string, args ...any) *ValidationError {
	v := ""
	if value != nil {
		v = fmt.Sprint(value)
	}
	return &ValidationError{Field: field, Value: v, Reason: fmt.Sprintf(format, args...)}
}
