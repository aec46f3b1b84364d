package docai

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	cacheCapacity int
	cacheTTL      time.Duration
	cacheDisabled bool

	embedder Embedder

	maxRefs  int
	minScore float64
	rerank   bool

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithCache sizes the in-process result cache.
// Defaults: 100 entries, 5 minute TTL.
func WithCache(capacity int, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheCapacity = capacity
		c.cacheTTL = ttl
	})
}

// WithoutCache disables result caching; every query runs the full pipeline.
func WithoutCache() Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheDisabled = true
	})
}

// WithEmbedder enables the semantic side path using the given provider.
// Queries work without it; only embedding-based recall is lost.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithMaxRefs caps the number of results per query. Default: 5.
func WithMaxRefs(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxRefs = n
	})
}

// WithMinScore drops results scoring below the threshold. Default: 0.1.
func WithMinScore(s float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.minScore = s
	})
}

// WithRerank enables the diversity/position re-rank stage on every query.
func WithRerank() Option {
	return optionFunc(func(c *clientConfig) {
		c.rerank = true
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
