package errors

import (
	stdErrors "errors"
	"fmt"
)

// NotFoundError represents a lookup that a provider answered with "no such record"
type NotFoundError struct {
	Source string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s not found", e.Source, e.Key)
}

// NewNotFoundError creates a new NotFoundError for the given source and lookup key
func NewNotFoundError(source, key string) *NotFoundError {
	return &NotFoundError{Source: source, Key: key}
}

// IsNotFoundError checks if error is a NotFoundError
func IsNotFoundError(err error) bool {
	var notFound *NotFoundError
	return stdErrors.As(err, &notFound)
}
