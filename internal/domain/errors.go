package domain

import "errors"

var (
	// ErrProductNotFound signals an unknown product identifier.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidRequest signals malformed query input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrRetrievalFailed signals a structural failure of the vector index lookup.
	ErrRetrievalFailed = errors.New("retrieval failed")
	// ErrEmptyQueryText signals text that is empty after whitespace normalization.
	ErrEmptyQueryText = errors.New("empty query text")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrExplanationUnavailable signals a text generation failure or timeout.
	// Never surfaced to callers: the explainer recovers via the template fallback.
	ErrExplanationUnavailable = errors.New("explanation unavailable")
)
