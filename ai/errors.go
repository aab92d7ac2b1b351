package ai

import (
	"errors"
	"fmt"
)

// UnavailableError indicates the AI provider could not serve a request:
// the provider is unreachable, returned an empty response, retries were
// exhausted, or the input made the call impossible (no key, blank prompt).
// API handlers map it to 503.
type UnavailableError struct {
	Message string
	Err     error // last underlying error, may be nil
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Unavailable builds an UnavailableError with an optional cause.
func Unavailable(message string, err error) *UnavailableError {
	return &UnavailableError{Message: message, Err: err}
}

// IsUnavailable reports whether err wraps an UnavailableError.
func IsUnavailable(err error) bool {
	var unavailable *UnavailableError
	return errors.As(err, &unavailable)
}
