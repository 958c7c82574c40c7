package application

import (
	"errors"
	"fmt"
)

var (
	// ErrIdentityNotFound indicates the requested identity does not exist.
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrAmbiguousIdentity indicates a label matched more than one identity.
	ErrAmbiguousIdentity = errors.New("identity label is ambiguous")

	// ErrNoMatchingIdentity indicates an override found no identity whose
	// email matches the repository's live config.
	ErrNoMatchingIdentity = errors.New("no identity matches the current git config")

	// ErrNotARepository indicates a path is not inside a git working copy.
	ErrNotARepository = errors.New("not a git repository")
)

// ValidationError reports the first identity field rule that was violated.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
