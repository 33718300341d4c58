package pipeline

import "errors"

var (
	// ErrUnknownEncoding is returned when the configured source encoding has
	// no decoder.
	ErrUnknownEncoding = errors.New("unknown source encoding")

	// ErrWriteFailed is returned when neither the primary nor the fallback
	// output path could be written.
	ErrWriteFailed = errors.New("output not written")

	// ErrAborted is returned when the operator closes input before answering
	// a prompt.
	ErrAborted = errors.New("aborted by operator")
)
