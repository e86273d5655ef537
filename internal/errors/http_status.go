package errors

import (
	stdErrors "errors"
	"fmt"
)

// HTTPStatusError represents an unexpected non-2xx response from an external API
type HTTPStatusError struct {
	Source     string
	StatusCode int
	URL        string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s returned status %d for %s", e.Source, e.StatusCode, e.URL)
}

// NewHTTPStatusError creates a new HTTPStatusError
func NewHTTPStatusError(source string, statusCode int, url string) *HTTPStatusError {
	return &HTTPStatusError{Source: source, StatusCode: statusCode, URL: url}
}

// IsHTTPStatusError checks if error is an HTTPStatusError
func IsHTTPStatusError(err error) bool {
	var statusErr *HTTPStatusError
	return stdErrors.As(err, &statusErr)
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not an HTTPStatusError
func StatusCode(err error) int {
	var statusErr *HTTPStatusError
	if stdErrors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}
