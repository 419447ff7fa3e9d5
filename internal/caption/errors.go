package caption

import "errors"

// Common errors returned by Captioner implementations. All of them are
// transient from the pipeline's point of view: the worker retries the call
// and falls back to the sentinel result when attempts are exhausted.
var (
	// ErrRequestFailed is returned when the transport-level call to the
	// backend fails or the backend answers with a non-success status.
	ErrRequestFailed = errors.New("captioning request failed")

	// ErrInvalidResponse is returned when the backend response cannot be
	// parsed or lacks the title/description fields.
	ErrInvalidResponse = errors.New("invalid response from captioning model")

	// ErrInvalidConfig is returned when a backend is constructed with an
	// unusable configuration.
	ErrInvalidConfig = errors.New("invalid captioner configuration")
)
