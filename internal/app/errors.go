package app

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")

	// ingestion
	ErrDocumentLimitReached = errors.New("document limit reached")
	ErrNoContent            = errors.New("document produced no content")
	ErrTooLarge             = errors.New("document is too large")
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// query
	ErrSynthesisUnavailable = errors.New("answer synthesis unavailable")

	// persistence
	ErrStorageFailure = errors.New("storage failure")
)
