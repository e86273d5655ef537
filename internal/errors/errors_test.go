package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("OpenLibrary", "9780374529253")

	expected := "OpenLibrary: 9780374529253 not found"
	if err.Error() != expected {
		t.Fatalf("Error message = %q, want %q", err.Error(), expected)
	}

	if !IsNotFoundError(err) {
		t.Fatalf("IsNotFoundError returned false for NotFoundError")
	}

	wrapped := fmt.Errorf("lookup: %w", err)
	if !IsNotFoundError(wrapped) {
		t.Fatalf("IsNotFoundError returned false for wrapped NotFoundError")
	}

	if IsNotFoundError(stdErrors.New("boom")) {
		t.Fatalf("IsNotFoundError returned true for plain error")
	}
}

func TestHTTPStatusError(t *testing.T) {
	err := NewHTTPStatusError("Google Books", 503, "https://example.test/volumes")

	expected := "Google Books returned status 503 for https://example.test/volumes"
	if err.Error() != expected {
		t.Fatalf("Error message = %q, want %q", err.Error(), expected)
	}

	wrapped := stdErrors.Join(err)
	if !IsHTTPStatusError(wrapped) {
		t.Fatalf("IsHTTPStatusError returned false for wrapped HTTPStatusError")
	}
	if StatusCode(wrapped) != 503 {
		t.Fatalf("StatusCode = %d, want 503", StatusCode(wrapped))
	}
}

func TestStatusCode_OtherErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "nil", err: nil},
		{name: "plain", err: stdErrors.New("boom")},
		{name: "not found", err: NewNotFoundError("OpenLibrary", "x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusCode(tt.err); got != 0 {
				t.Fatalf("StatusCode = %d, want 0", got)
			}
		})
	}
}

func TestRateLimitError(t *testing.T) {
	err := NewRateLimitError("Google Books rate limit reached")
	if err.Error() != "Google Books rate limit reached" {
		t.Fatalf("Error message = %q", err.Error())
	}

	wrapped := fmt.Errorf("search: %w", err)
	if !IsRateLimitError(wrapped) {
		t.Fatalf("IsRateLimitError returned false for wrapped RateLimitError")
	}
	if IsRateLimitError(NewNotFoundError("OpenLibrary", "x")) {
		t.Fatalf("IsRateLimitError returned true for NotFoundError")
	}
}

func TestStopProcessingError(t *testing.T) {
	err := NewStopProcessingError("dedupe stopped by user")
	if err.Error() != "dedupe stopped by user" {
		t.Fatalf("Error message = %q", err.Error())
	}

	if !IsStopProcessingError(fmt.Errorf("wrap: %w", err)) {
		t.Fatalf("IsStopProcessingError returned false for wrapped StopProcessingError")
	}
	if IsStopProcessingError(stdErrors.New("boom")) {
		t.Fatalf("IsStopProcessingError returned true for plain error")
	}
}
