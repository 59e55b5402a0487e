package inference

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrEmptyResponse is returned when the provider answers with no text
var ErrEmptyResponse = errors.New("model returned an empty response")

// APIError is a provider error classified by HTTP status
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// RetryExhaustedError is returned once the retry ceiling has been passed
type RetryExhaustedError struct {
	Model    string
	Attempts int
	Err      error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("model %s still failing after %d attempts: %v", e.Model, e.Attempts, e.Err)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Err }

// IsRetryableStatusCode checks if an HTTP status code should trigger a retry.
// Only rate limiting and temporary unavailability are retried.
func IsRetryableStatusCode(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode == http.StatusServiceUnavailable
}

// IsRetryable reports whether err is a rate-limit or unavailable error
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return IsRetryableStatusCode(apiErr.StatusCode)
	}
	return false
}
