package domain

import (
	"errors"
	"strings"
)

var (
	// Validation errors
	ErrMissingField    = errors.New("required field is empty")
	ErrInvalidAmount   = errors.New("amount is not a valid number")
	ErrMissingDate     = errors.New("date is required")
	ErrInvalidCategory = errors.New("category must be income or expense")

	// Collection errors
	ErrNotFound    = errors.New("record not found")
	ErrDuplicateID = errors.New("record id already exists")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownKind     = errors.New("unknown collection kind")

	// ErrInvalidConfiguration marks a caller bug, such as a non-positive page size.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// FieldError ties a validation error to the draft field that caused it.
type FieldError struct {
	Field string
	Err   error
}

// MissingField reports an empty required text field.
func MissingField(name string) *FieldError {
	return &FieldError{Field: name, Err: ErrMissingField}
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ValidationErrors is the full set of problems found in a draft.
type ValidationErrors []*FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Unwrap exposes every field error to errors.Is and errors.As.
func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, len(v))
	for i, fe := range v {
		errs[i] = fe
	}
	return errs
}

// Fields returns the names of the offending fields in report order.
func (v ValidationErrors) Fields() []string {
	names := make([]string, len(v))
	for i, fe := range v {
		names[i] = fe.Field
	}
	return names
}

// ErrorCode returns a stable machine-readable code for a domain error.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrMissingField):
		return "missing_field"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrMissingDate):
		return "missing_date"
	case errors.Is(err, ErrInvalidCategory):
		return "invalid_category"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrUnknownKind):
		return "unknown_kind"
	case errors.Is(err, ErrDuplicateID):
		return "duplicate_id"
	case errors.Is(err, ErrInvalidConfiguration):
		return "invalid_configuration"
	default:
		return "internal"
	}
}
