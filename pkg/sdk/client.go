package docai

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hsnnrn/hasandocai-sub002/internal/aggregate"
	cachememory "github.com/hsnnrn/hasandocai-sub002/internal/cache/memory"
	"github.com/hsnnrn/hasandocai-sub002/internal/domain"
	"github.com/hsnnrn/hasandocai-sub002/internal/engine"
	"github.com/hsnnrn/hasandocai-sub002/internal/usecase/retrieve"
	semanticuc "github.com/hsnnrn/hasandocai-sub002/internal/usecase/semantic"
)

const (
	defaultCacheCapacity = 100
	defaultCacheTTL      = 5 * time.Minute
)

// EmbeddingResult is one embedding vector with token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder is the text embedding provider contract for the semantic path.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// Client is the docai SDK entry point.
type Client struct {
	eng    *engine.Engine
	obs    *observer
	rerank bool
}

// New creates an embedded docai client.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		cacheCapacity: defaultCacheCapacity,
		cacheTTL:      defaultCacheTTL,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	engCfg := engine.DefaultConfig()
	if cfg.maxRefs > 0 {
		engCfg.Retrieval.MaxRefs = cfg.maxRefs
	}
	if cfg.minScore > 0 {
		engCfg.Retrieval.MinScore = cfg.minScore
	}

	var cache engine.ResultCache
	if !cfg.cacheDisabled {
		cache = cachememory.New(cfg.cacheCapacity, cfg.cacheTTL)
	}

	var sem retrieve.SemanticScorer
	if cfg.embedder != nil {
		sem = semanticuc.New(&embedderAdapter{inner: cfg.embedder}, zap.NewNop())
	}

	return &Client{
		eng:    engine.New(engCfg, cache, sem, zap.NewNop()),
		obs:    obs,
		rerank: cfg.rerank,
	}, nil
}

// Close releases client resources. The embedded engine holds no external
// connections; Close exists for interface symmetry with future backends.
func (c *Client) Close() {}

// SetDocuments replaces the whole document set. Returns true when the index
// was rebuilt; an unchanged set is a no-op that keeps the cache warm.
func (c *Client) SetDocuments(ctx context.Context, docs []Document) (rebuilt bool, err error) {
	start := time.Now()
	defer func() { c.obs.observe("set_documents", start, err) }()

	rebuilt, err = c.eng.SetDocuments(ctx, docsToDomain(docs))
	if err != nil {
		return false, fmt.Errorf("set documents: %w", err)
	}
	return rebuilt, nil
}

// Query runs hybrid retrieval over the loaded document set.
func (c *Client) Query(ctx context.Context, query string) (results []Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("query", start, err) }()

	raw, err := c.eng.Query(ctx, query, retrieve.Options{Rerank: c.rerank})
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return resultsFromDomain(raw), nil
}

// Extract runs the extraction cascades over a raw text with no retrieval.
func (c *Client) Extract(text string) Extraction {
	start := time.Now()
	defer func() { c.obs.observe("extract", start, nil) }()

	return extractionFromDomain(c.eng.ExtractText(text))
}

// Aggregate retrieves, extracts, and aggregates in one call.
func (c *Client) Aggregate(
	ctx context.Context, query string, opts AggregateOptions,
) (analysis Analysis, err error) {
	start := time.Now()
	defer func() { c.obs.observe("aggregate", start, err) }()

	raw, err := c.eng.Analyze(ctx, query,
		retrieve.Options{MaxRefs: opts.MaxRefs},
		aggregate.Options{
			Dedup:          opts.Dedup,
			CurrencyFilter: opts.CurrencyFilter,
			IncludeStats:   opts.IncludeStats,
		},
	)
	if err != nil {
		return Analysis{}, fmt.Errorf("aggregate: %w", err)
	}
	return analysisFromDomain(raw), nil
}

// Intent returns the detected intent class for a query: "price", "list" or
// "general".
func (c *Client) Intent(query string) string {
	return string(c.eng.DetectIntent(query))
}

// Invalidate drops all cached query results.
func (c *Client) Invalidate(ctx context.Context) {
	c.eng.Invalidate(ctx)
}

// embedderAdapter wraps the public Embedder to satisfy internal
// domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}
