package retrieve

import (
	"regexp"
	"strings"

	"github.com/hsnnrn/hasandocai-sub002/internal/domain/intent"
	"github.com/hsnnrn/hasandocai-sub002/internal/domain/match"
	"github.com/hsnnrn/hasandocai-sub002/internal/domain/textnorm"
	"github.com/hsnnrn/hasandocai-sub002/internal/index"
)

// priceIndicator recognizes sections carrying monetary content: a decimal
// amount, a currency symbol, or a currency code.
var priceIndicator = regexp.MustCompile(`(?i)\d+[.,]\d{2}|₺|\$|€|£|\b(TL|TRY|USD|EUR|GBP)\b`)

// candidateQuery carries the per-query precomputed inputs shared by every
// candidate scoring call.
type candidateQuery struct {
	normalized string
	words      []string
	trigrams   map[string]struct{}
	intent     intent.Intent
}

// breakdown is the composed score of one candidate, kept as named
// sub-scores so each contribution is testable on its own.
type breakdown struct {
	keyword  float64 // keyword ratio, possibly trigram-refined
	filename float64 // document filename match score
	bm25     float64 // raw BM25 score for the section
	final    float64
	match    match.Type
	skip     bool
	floored  bool // filename-only floor applied; exempt from price post-filter
}

// scoreCandidate is a pure function from one candidate section (plus query
// context) to its final fused score. No state is mutated.
func scoreCandidate(
	cfg Config, sec *index.Section, q candidateQuery,
	filenameScore, bm25Score float64,
) breakdown {
	br := breakdown{filename: filenameScore, bm25: bm25Score, match: match.Partial}

	// An exact normalized-substring hit of the whole query outranks every
	// other signal and bypasses fusion and intent adjustments.
	if q.normalized != "" && strings.Contains(sec.Normalized, q.normalized) {
		br.final = 1.0
		br.match = match.Exact
		return br
	}

	if len(q.words) == 0 {
		br.skip = true
		return br
	}

	matched := 0
	for _, w := range q.words {
		if _, ok := sec.Words[w]; ok {
			matched++
		}
	}
	ratio := float64(matched) / float64(len(q.words))

	threshold := cfg.ThresholdDefault
	if filenameScore > 0 {
		threshold = cfg.ThresholdFilenameMatched
	}
	// Weak content with no BM25 support is skipped outright, unless a
	// strong filename match keeps the section alive for the floor below.
	if ratio < threshold && bm25Score <= 0 && filenameScore < cfg.FilenameFloorMatch {
		br.skip = true
		return br
	}

	br.keyword = ratio
	if ratio > cfg.TrigramRefineMin && len(q.trigrams) > 0 {
		tri := textnorm.Jaccard(q.trigrams, sec.Trigrams)
		br.keyword = 0.7*ratio + 0.3*tri
		br.match = match.Ngram
	}

	contentScore := br.keyword
	score := br.keyword + filenameScore*cfg.FilenameBoost

	switch q.intent {
	case intent.Price:
		if priceIndicator.MatchString(sec.Original) {
			score += cfg.PriceBoost
		} else {
			score *= cfg.PricePenalty
		}
	case intent.List, intent.General:
		// no adjustment
	}

	if bm25Score > 0 {
		normalized := bm25Score / cfg.BM25Norm
		if normalized > 1 {
			normalized = 1
		}
		score = cfg.KeywordWeight*score + cfg.BM25Weight*normalized
	}

	// Filename-only floor: a strong filename match with weak content is
	// never dropped below FilenameFloor, whatever the adjustments above
	// did to it.
	if filenameScore >= cfg.FilenameFloorMatch && contentScore < cfg.FilenameFloorContent {
		br.floored = true
		if score < cfg.FilenameFloor {
			score = cfg.FilenameFloor
		}
	}

	br.final = clamp01(score)
	return br
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
