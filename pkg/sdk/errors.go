package docai

import "github.com/hsnnrn/hasandocai-sub002/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound               = domain.ErrNotFound
	ErrEmptyQuery             = domain.ErrEmptyQuery
	ErrNoDocuments            = domain.ErrNoDocuments
	ErrInvalidDocument        = domain.ErrInvalidDocument
	ErrEmbeddingUnavailable   = domain.ErrEmbeddingUnavailable
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrRateLimited            = domain.ErrRateLimited
)
