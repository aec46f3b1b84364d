package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrEmptyQuery signals a blank query string.
	ErrEmptyQuery = errors.New("empty query")
	// ErrNoDocuments signals that no document set has been loaded.
	ErrNoDocuments = errors.New("no documents loaded")
	// ErrInvalidDocument signals a document that cannot be indexed.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrEmbeddingUnavailable signals that no embedding provider is configured.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrRateLimited signals a rate limit hit on an external provider.
	ErrRateLimited = errors.New("rate limited")
)
