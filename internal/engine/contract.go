package engine

import (
	"context"

	"github.com/hsnnrn/hasandocai-sub002/internal/domain/result"
)

// ResultCache is the query-result cache consumed by the engine, keyed by the
// normalized query string. Implementations: in-process LRU+TTL
// (cache/memory) and Redis-backed (cache/redis). The engine invalidates it
// on every document mutation; the cache cannot detect staleness itself.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]result.Result, bool)
	Set(ctx context.Context, key string, results []result.Result)
	Invalidate(ctx context.Context)
}
