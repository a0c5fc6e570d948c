package form

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSubmitInProgress is returned while a submission is being delivered.
var ErrSubmitInProgress = errors.New("a submission is already in progress")

// ErrSubmitDisabled is returned while the button shows the outcome of the
// last submission. It clears when the button reverts to idle.
var ErrSubmitDisabled = errors.New("submit is disabled until the button resets")

// ErrUnknownField is returned when an event names a field the form does not have.
var ErrUnknownField = errors.New("unknown field")

// ValidationError is a failed validator verdict. Message is shown to the
// user verbatim.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// NewValidationError creates a validation error with no field attached.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// reasonOf returns the user-facing text for a validator error.
func reasonOf(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return err.Error()
}

// FormatValidationErrors formats field failures for terminal output.
func FormatValidationErrors(errs []error) string {
	if len(errs) == 0 {
		return "No validation errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Form validation failed with %d error(s):\n", len(errs)))
	for i, err := range errs {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}
