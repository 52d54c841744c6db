package services

import (
	"errors"
	"strings"
)

var (
	// ErrNotInitialized is returned by every store operation invoked before
	// Init succeeded.
	ErrNotInitialized = errors.New("store not initialized")

	// ErrNotFound is returned by mutating operations on an absent record.
	// Read operations signal absence with a nil record instead.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidImportFormat is returned when an import document does not
	// carry a customers array at the top level.
	ErrInvalidImportFormat = errors.New("invalid import format")
)

// ValidationError carries every rule violation found on a record.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// AsValidationError unwraps err into a ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
