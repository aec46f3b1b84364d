// Package redis implements the result cache on a Redis-compatible server
// via rueidis. TTL is enforced server-side; Invalidate bumps a generation
// counter instead of scanning keys, so stale entries age out on their own.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/rueidis"
	"go.uber.org/zap"

	"github.com/hsnnrn/hasandocai-sub002/internal/domain/match"
	"github.com/hsnnrn/hasandocai-sub002/internal/domain/result"
)

// Config holds connection parameters for the Redis-backed result cache.
type Config struct {
	Addrs     []string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

// Cache stores result snapshots as JSON values with server-side expiry.
type Cache struct {
	client rueidis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// New creates a Redis-backed result cache.
func New(cfg Config, logger *zap.Logger) (*Cache, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "docai:"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Cache{
		client: client,
		prefix: cfg.KeyPrefix,
		ttl:    cfg.TTL,
		logger: logger,
	}, nil
}

// NewCacheForTest wraps an existing client (usually a mock). Test use only.
func NewCacheForTest(client rueidis.Client, prefix string, ttl time.Duration) *Cache {
	return &Cache{client: client, prefix: prefix, ttl: ttl, logger: zap.NewNop()}
}

// resultDTO is the wire shape of one cached hit.
type resultDTO struct {
	SectionID  string  `json:"section_id"`
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	Excerpt    string  `json:"excerpt"`
	Score      float64 `json:"score"`
	Page       int     `json:"page"`
	MatchType  string  `json:"match_type"`
}

// Get returns the cached results for a normalized query. Transport errors
// degrade to a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]result.Result, bool) {
	cmd := c.client.B().Get().Key(c.resultKey(ctx, key)).Build()
	data, err := c.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if !rueidis.IsRedisNil(err) {
			c.logger.Warn("Result cache get failed", zap.Error(err))
		}
		return nil, false
	}

	var dtos []resultDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		c.logger.Warn("Result cache entry corrupt, dropping", zap.Error(err))
		return nil, false
	}

	results := make([]result.Result, 0, len(dtos))
	for _, d := range dtos {
		results = append(results, result.New(
			d.SectionID, d.DocumentID, d.Filename, d.Excerpt,
			d.Score, d.Page, match.Type(d.MatchType),
		))
	}
	return results, true
}

// Set stores a snapshot of the results with the configured TTL. Failures
// are logged and swallowed: a missing cache entry just means a fresh
// retrieval next time.
func (c *Cache) Set(ctx context.Context, key string, results []result.Result) {
	dtos := make([]resultDTO, 0, len(results))
	for i := range results {
		r := &results[i]
		dtos = append(dtos, resultDTO{
			SectionID:  r.SectionID(),
			DocumentID: r.DocumentID(),
			Filename:   r.Filename(),
			Excerpt:    r.Excerpt(),
			Score:      r.Score(),
			Page:       r.Page(),
			MatchType:  string(r.MatchType()),
		})
	}

	data, err := json.Marshal(dtos)
	if err != nil {
		c.logger.Warn("Result cache marshal failed", zap.Error(err))
		return
	}

	cmd := c.client.B().Set().Key(c.resultKey(ctx, key)).Value(string(data)).Ex(c.ttl).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		c.logger.Warn("Result cache set failed", zap.Error(err))
	}
}

// Invalidate advances the generation counter, orphaning every cached entry.
// Orphans expire via their own TTL.
func (c *Cache) Invalidate(ctx context.Context) {
	cmd := c.client.B().Incr().Key(c.generationKey()).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		c.logger.Warn("Result cache invalidate failed", zap.Error(err))
	}
}

// Ping checks connectivity for health reporting.
func (c *Cache) Ping(ctx context.Context) error {
	cmd := c.client.B().Ping().Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (c *Cache) Close() {
	c.client.Close()
}

func (c *Cache) generationKey() string {
	return c.prefix + "results:gen"
}

func (c *Cache) resultKey(ctx context.Context, key string) string {
	gen := "0"
	cmd := c.client.B().Get().Key(c.generationKey()).Build()
	if v, err := c.client.Do(ctx, cmd).ToString(); err == nil {
		gen = v
	}
	h := sha256.Sum256([]byte(key))
	return c.prefix + "results:" + gen + ":" + hex.EncodeToString(h[:])
}
