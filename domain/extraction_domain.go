package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAPIKeyMissing is a configuration failure: retrying cannot fix it,
	// so jobs that hit it are failed permanently.
	ErrAPIKeyMissing = errors.New("openai api key not configured")

	// ErrMalformedExtraction means the model output held no decodable JSON
	// object. The job may still retry the whole pipeline; a fresh completion
	// can come back parseable.
	ErrMalformedExtraction = errors.New("malformed extraction response")

	ErrEmptyCompletion = errors.New("completion response contained no choices")
)

// UpstreamError carries the HTTP status and body of a failed AI endpoint
// call. It is retryable at the job level.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream AI endpoint error: status %d: %s", e.StatusCode, e.Body)
}

// StorageError wraps a failed read/write against a storage disk.
type StorageError struct {
	Disk string
	Key  string
	Op   string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed on disk %q key %q: %v", e.Op, e.Disk, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
