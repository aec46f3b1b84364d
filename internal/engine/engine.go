// Package engine owns every piece of mutable retrieval state: the current
// document set fingerprint, the index snapshot, and the result cache.
// Callers hold an Engine instance; there is no package-level state.
package engine

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/hsnnrn/hasandocai-sub002/internal/aggregate"
	"github.com/hsnnrn/hasandocai-sub002/internal/bm25"
	"github.com/hsnnrn/hasandocai-sub002/internal/domain"
	"github.com/hsnnrn/hasandocai-sub002/internal/domain/intent"
	"github.com/hsnnrn/hasandocai-sub002/internal/domain/result"
	"github.com/hsnnrn/hasandocai-sub002/internal/domain/textnorm"
	"github.com/hsnnrn/hasandocai-sub002/internal/extract"
	"github.com/hsnnrn/hasandocai-sub002/internal/index"
	"github.com/hsnnrn/hasandocai-sub002/internal/metrics"
	"github.com/hsnnrn/hasandocai-sub002/internal/usecase/analyze"
	"github.com/hsnnrn/hasandocai-sub002/internal/usecase/retrieve"
)

// Config holds engine-level settings.
type Config struct {
	Retrieval retrieve.Config
	BM25K1    float64
	BM25B     float64
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		Retrieval: retrieve.DefaultConfig(),
		BM25K1:    bm25.DefaultK1,
		BM25B:     bm25.DefaultB,
	}
}

// Engine is the retrieval-and-analytics core. Index rebuilds happen off the
// query-serving path: a fresh snapshot is built aside and published with an
// atomic pointer swap, so concurrent queries see the old or the new index,
// never a partial one.
type Engine struct {
	cfg      Config
	retr     *retrieve.Service
	analyzer *analyze.Service
	cache    ResultCache // optional
	logger   *zap.Logger

	mu   sync.Mutex // serializes SetDocuments
	snap atomic.Pointer[index.Snapshot]
}

// New creates an engine. cache and sem may be nil.
func New(cfg Config, cache ResultCache, sem retrieve.SemanticScorer, logger *zap.Logger) *Engine {
	return &Engine{
		cfg:      cfg,
		retr:     retrieve.New(cfg.Retrieval, sem, logger),
		analyzer: analyze.New(logger),
		cache:    cache,
		logger:   logger,
	}
}

// SetDocuments replaces the document set. The index is rebuilt only when
// the document-set fingerprint changed; a rebuild clears the result cache.
// Returns whether a rebuild happened.
func (e *Engine) SetDocuments(ctx context.Context, docs []domain.Document) (bool, error) {
	for _, d := range docs {
		if err := d.Validate(); err != nil {
			return false, err
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	fingerprint := domain.Fingerprint(docs)
	if current := e.snap.Load(); current != nil && current.Fingerprint == fingerprint {
		return false, nil
	}

	start := time.Now()
	snap := index.Build(docs, e.cfg.BM25K1, e.cfg.BM25B)
	e.snap.Store(snap)

	if e.cache != nil {
		e.cache.Invalidate(ctx)
	}

	metrics.IndexRebuildsTotal.Inc()
	metrics.IndexRebuildDuration.Observe(time.Since(start).Seconds())
	metrics.IndexedSections.Set(float64(len(snap.Sections)))

	e.logger.Debug("Index rebuilt",
		zap.String("fingerprint", fingerprint),
		zap.Int("documents", len(docs)),
		zap.Int("sections", len(snap.Sections)),
		zap.Duration("took", time.Since(start)),
	)
	return true, nil
}

// Snapshot returns the current index snapshot, nil before the first
// SetDocuments.
func (e *Engine) Snapshot() *index.Snapshot {
	return e.snap.Load()
}

// Query runs hybrid retrieval for one query, consulting the result cache
// first. The cache key is the normalized query string.
func (e *Engine) Query(ctx context.Context, query string, opts retrieve.Options) ([]result.Result, error) {
	normalized := strings.TrimSpace(textnorm.Normalize(query))
	if normalized == "" {
		return nil, domain.ErrEmptyQuery
	}
	snap := e.snap.Load()
	if snap == nil {
		return nil, domain.ErrNoDocuments
	}

	queryIntent := intent.Detect(normalized)
	start := time.Now()
	defer func() {
		metrics.QueryDuration.WithLabelValues(string(queryIntent)).Observe(time.Since(start).Seconds())
	}()

	if e.cache != nil {
		if cached, ok := e.cache.Get(ctx, normalized); ok {
			metrics.ResultCacheTotal.WithLabelValues("hit").Inc()
			metrics.QueriesTotal.WithLabelValues(string(queryIntent), "cached").Inc()
			return cached, nil
		}
		metrics.ResultCacheTotal.WithLabelValues("miss").Inc()
	}

	results := e.retr.Retrieve(ctx, snap, query, opts)

	if e.cache != nil {
		e.cache.Set(ctx, normalized, results)
	}
	metrics.QueriesTotal.WithLabelValues(string(queryIntent), "ok").Inc()
	return results, nil
}

// DetectIntent classifies a raw query without running retrieval.
func (e *Engine) DetectIntent(query string) intent.Intent {
	return intent.Detect(textnorm.Normalize(query))
}

// Analyze runs retrieval and then extraction + aggregation over the result
// sections, producing the payload the external generation step consumes.
func (e *Engine) Analyze(
	ctx context.Context, query string,
	retrOpts retrieve.Options, aggOpts aggregate.Options,
) (analyze.Analysis, error) {
	results, err := e.Query(ctx, query, retrOpts)
	if err != nil {
		return analyze.Analysis{}, err
	}

	analysis := e.analyzer.Analyze(e.snap.Load(), results, aggOpts)
	countExtracted(analysis.Extraction)
	return analysis, nil
}

// ExtractText runs the extraction cascades over a raw text, outside any
// retrieval context.
func (e *Engine) ExtractText(text string) analyze.Extraction {
	ex := analyze.Extraction{
		Amounts:    extract.Amounts(text),
		Dates:      extract.Dates(text),
		InvoiceIDs: extract.InvoiceIDs(text),
	}
	countExtracted(ex)
	return ex
}

// Invalidate clears the result cache without touching the index. Exposed
// for callers that mutate documents out of band.
func (e *Engine) Invalidate(ctx context.Context) {
	if e.cache != nil {
		e.cache.Invalidate(ctx)
	}
}

func countExtracted(ex analyze.Extraction) {
	metrics.ExtractedValuesTotal.WithLabelValues("amount").Add(float64(len(ex.Amounts)))
	metrics.ExtractedValuesTotal.WithLabelValues("date").Add(float64(len(ex.Dates)))
	metrics.ExtractedValuesTotal.WithLabelValues("invoice_id").Add(float64(len(ex.InvoiceIDs)))
}
