package retrieve

import (
	"context"

	"github.com/hsnnrn/hasandocai-sub002/internal/index"
)

// SemanticScorer is the optional embedding side path. It returns cosine
// similarity per section ID for the query. The lexical pipeline runs
// unchanged when no scorer is configured or when scoring fails.
type SemanticScorer interface {
	Score(ctx context.Context, snap *index.Snapshot, query string) (map[string]float64, error)
}
