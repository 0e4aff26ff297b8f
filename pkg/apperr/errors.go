package apperr

import (
	"errors"
	"fmt"
)

// ExtractionError means the source PDF could not be read. Ingestion of the
// affected document is aborted; the rest of the batch continues.
type ExtractionError struct {
	Document string
	Cause    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %q: %v", e.Document, e.Cause)
}

func (e *ExtractionError) Unwrap() error { return e.Cause }

// EmbeddingError wraps a failed embedding call. Transient failures (timeout,
// 429, 5xx) are retried with backoff before the document is failed.
type EmbeddingError struct {
	StatusCode int
	Cause      error
	Transient  bool

	// RetryAfter holds the raw Retry-After header value when the provider
	// sent one, in whole seconds.
	RetryAfter string
}

func (e *EmbeddingError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("embedding request failed (status %d): %v", e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("embedding request failed: %v", e.Cause)
}

func (e *EmbeddingError) Unwrap() error { return e.Cause }

func (e *EmbeddingError) Retryable() bool { return e.Transient }

// StoreError wraps a datastore failure. Writes surface it to the caller;
// retrieval reads degrade to the next search tier instead.
type StoreError struct {
	Op    string
	Cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Cause)
}

func (e *StoreError) Unwrap() error { return e.Cause }

// GenerationError wraps a failed generation call. It is never shown to a
// user; the conversation manager substitutes the generic apology message.
type GenerationError struct {
	Cause error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Cause)
}

func (e *GenerationError) Unwrap() error { return e.Cause }

// Store is a convenience constructor used by the repository layer.
func Store(op string, cause error) error {
	if cause == nil {
		return nil
	}
	return &StoreError{Op: op, Cause: cause}
}

// IsRetryable reports whether err is a transient embedding failure.
func IsRetryable(err error) bool {
	var ee *EmbeddingError
	return errors.As(err, &ee) && ee.Retryable()
}
