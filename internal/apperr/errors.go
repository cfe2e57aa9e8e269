package apperr

import (
	"errors"
	"fmt"
)

// Error categories surfaced by the core. Callers branch on them with errors.Is.
var (
	ErrDecode      = errors.New("unreadable pdf")
	ErrNotFound    = errors.New("document not found")
	ErrValidation  = errors.New("validation failed")
	ErrUnsupported = errors.New("only PDF files are supported")
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Invalid returns a ValidationError for the given field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Decode wraps a parser failure so that it matches ErrDecode.
func Decode(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrDecode, err)
}

// NotFound wraps ErrNotFound with the identifier that was looked up.
func NotFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Unsupported wraps ErrUnsupported with the rejected filename.
func Unsupported(filename string) error {
	return fmt.Errorf("%w: %s", ErrUnsupported, filename)
}
