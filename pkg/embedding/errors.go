package embedding

import (
	"errors"
	"fmt"
)

// ErrUnauthorized means the provider rejected our credentials. Retrying
// cannot help, and the orchestrator aborts the rest of its run on it.
var ErrUnauthorized = errors.New("embedding provider rejected credentials")

// RateLimitError is returned on HTTP 429. It is transient and retried
// with exponential backoff.
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("embedding provider rate limited: %s", e.Message)
}

// ProviderError covers any other provider-side failure. It fails the
// current document once retries are exhausted but never the whole run.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("embedding provider error (status %d): %s", e.StatusCode, e.Message)
}

// ValidationError reports a vector whose dimensionality does not match
// the configured model dimension.
type ValidationError struct {
	Index int
	Got   int
	Want  int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("embedding %d has %d dimensions, want %d", e.Index, e.Got, e.Want)
}
