package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable wraps any failure to reach or query a store.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrNotFound is returned when a record addressed by id does not exist for the owner.
	ErrNotFound = errors.New("not found")
	// ErrUpstream wraps transport or API failures of the text generation service.
	ErrUpstream = errors.New("upstream error")
	// ErrEmptyResponse is returned when the generator answers with blank text.
	ErrEmptyResponse = errors.New("empty response from model")
	// ErrInvalidSnapshot is returned when snapshot totals are not finite numbers.
	ErrInvalidSnapshot = errors.New("invalid snapshot")

	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrEmailTaken          = errors.New("email already in use")
	ErrUnsupportedFileType = errors.New("only .jpeg, .jpg and .png formats are allowed")
	ErrUploadsDisabled     = errors.New("uploads are disabled")
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
