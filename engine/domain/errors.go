package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for validation failures.
var (
	ErrEmptyTranscript = errors.New("transcript is empty")
	ErrMissingTitle    = errors.New("title is missing")
	ErrMissingSpeaker  = errors.New("speaker is missing")
	ErrMissingID       = errors.New("document id is missing")
)

// ValidationError wraps a sentinel with the offending document.
type ValidationError struct {
	DocID   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validate: %s (doc=%q)", e.Wrapped, e.DocID)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

// NewValidationError creates a ValidationError.
func NewValidationError(docID string, wrapped error) *ValidationError {
	return &ValidationError{DocID: docID, Wrapped: wrapped}
}
