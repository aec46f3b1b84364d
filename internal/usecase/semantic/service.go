// Package semantic is the optional embedding side path: it scores sections
// by cosine similarity against the query vector. The lexical pipeline never
// depends on it and runs unchanged when it is absent or failing.
package semantic

import (
	"context"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/hsnnrn/hasandocai-sub002/internal/domain"
	"github.com/hsnnrn/hasandocai-sub002/internal/index"
)

// Service lazily embeds the sections of the current snapshot and caches the
// vectors until the document-set fingerprint changes.
type Service struct {
	embed  domain.Embedder
	logger *zap.Logger

	mu          sync.Mutex
	fingerprint string
	vectors     map[string][]float32 // sectionID -> embedding
}

// New creates the semantic scorer. embed must be non-nil; callers with no
// provider configured pass a nil *Service to the retriever instead.
func New(embed domain.Embedder, logger *zap.Logger) *Service {
	return &Service{embed: embed, logger: logger}
}

// Score embeds the query and returns cosine similarity per section ID.
func (s *Service) Score(
	ctx context.Context, snap *index.Snapshot, query string,
) (map[string]float64, error) {
	if s.embed == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	qres, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	vectors, err := s.sectionVectors(ctx, snap)
	if err != nil {
		return nil, err
	}

	scores := make(map[string]float64, len(vectors))
	for sectionID, vec := range vectors {
		scores[sectionID] = cosine(qres.Embedding, vec)
	}
	return scores, nil
}

// sectionVectors returns the cached vectors for the snapshot, embedding all
// sections on fingerprint change.
func (s *Service) sectionVectors(
	ctx context.Context, snap *index.Snapshot,
) (map[string][]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fingerprint == snap.Fingerprint && s.vectors != nil {
		return s.vectors, nil
	}

	texts := make([]string, len(snap.Sections))
	for i := range snap.Sections {
		texts[i] = snap.Sections[i].Original
	}

	var batch domain.BatchEmbeddingResult
	var err error
	if be, ok := s.embed.(domain.BatchEmbedder); ok {
		batch, err = be.BatchEmbed(ctx, texts)
	} else {
		batch, err = domain.BatchFallback(ctx, s.embed, texts)
	}
	if err != nil {
		return nil, fmt.Errorf("embed sections: %w", err)
	}
	if len(batch.Embeddings) != len(snap.Sections) {
		return nil, fmt.Errorf("embed sections: got %d vectors for %d sections: %w",
			len(batch.Embeddings), len(snap.Sections), domain.ErrEmbeddingProviderError)
	}

	vectors := make(map[string][]float32, len(snap.Sections))
	for i := range snap.Sections {
		vectors[snap.Sections[i].SectionID] = batch.Embeddings[i]
	}

	s.fingerprint = snap.Fingerprint
	s.vectors = vectors
	if s.logger != nil {
		s.logger.Debug("Section vectors rebuilt",
			zap.String("fingerprint", snap.Fingerprint),
			zap.Int("sections", len(vectors)),
		)
	}
	return vectors, nil
}

// cosine computes cosine similarity, 0 for zero vectors or mismatched
// dimensions.
func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
