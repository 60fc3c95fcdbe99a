package records

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports a record that breaks the caller contract.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

func IsValidationError(err error) bool {
	var validationError *ValidationError
	if errors.As(err, &validationError) {
		return true
	}
	var validationErrors *ValidationErrors
	return errors.As(err, &validationErrors)
}

// NewIndexedValidationError prefixes msg with the 1-based position of the record in its batch.
func NewIndexedValidationError(index int, err error) error {
	field := ""
	var validationError *ValidationError
	if errors.As(err, &validationError) {
		field = validationError.Field
	}
	return &ValidationError{Field: field, Msg: fmt.Sprintf("validation error at record %d: %s", index, err.Error())}
}

type ValidationErrors struct {
	Errors []error
}

func (ve *ValidationErrors) Error() string {
	errorMessages := make([]string, len(ve.Errors))
	for i, err := range ve.Errors {
		errorMessages[i] = err.Error()
	}
	return fmt.Sprintf("multiple validation errors: %s", strings.Join(errorMessages, "; "))
}

func (ve *ValidationErrors) Add(err error) {
	ve.Errors = append(ve.Errors, err)
}

// Messages returns the individual error strings, for JSON error bodies.
func (ve *ValidationErrors) Messages() []string {
	out := make([]string, len(ve.Errors))
	for i, err := range ve.Errors {
		out[i] = err.Error()
	}
	return out
}

func (ve *ValidationErrors) orNil() error {
	if len(ve.Errors) == 0 {
		return nil
	}
	return ve
}
