package health

import "context"

// CachePinger checks result-cache backend availability (Redis-backed cache
// only; the in-process cache has nothing to ping).
type CachePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
