package retrieve

import (
	"sort"

	"github.com/hsnnrn/hasandocai-sub002/internal/domain/result"
	"github.com/hsnnrn/hasandocai-sub002/internal/domain/textnorm"
	"github.com/hsnnrn/hasandocai-sub002/internal/index"
)

// Rerank recombines each result's original score with excerpt keyword
// density, position in document, and filename relevance, then applies a
// per-document diversity cap and a near-duplicate filter.
//
// Weighting: density*Wd + position*Wp + filename*Wf + original*(1-Wd-Wp-Wf).
func Rerank(
	results []result.Result, snap *index.Snapshot, queryWords []string, cfg Config,
) []result.Result {
	if len(results) == 0 {
		return results
	}

	originalWeight := 1 - cfg.RerankDensityWeight - cfg.RerankPositionWeight - cfg.RerankFilenameWeight
	if originalWeight < 0 {
		originalWeight = 0
	}

	reranked := make([]result.Result, 0, len(results))
	for i := range results {
		r := &results[i]

		density := keywordDensity(queryWords, r.Excerpt())
		position := positionScore(r.Page())

		var filename float64
		if doc, ok := snap.DocumentByID(r.DocumentID()); ok {
			filename = filenameMatchScore(queryWords, doc.FilenameWords)
		}

		score := cfg.RerankDensityWeight*density +
			cfg.RerankPositionWeight*position +
			cfg.RerankFilenameWeight*filename +
			originalWeight*r.Score()
		reranked = append(reranked, r.WithScore(clamp01(score)))
	}

	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].Score() > reranked[j].Score()
	})

	return dropNearDuplicates(applyDiversityCap(reranked, cfg.DiversityCap), cfg.DuplicateJaccard)
}

// keywordDensity is the fraction of query words present in the excerpt.
func keywordDensity(queryWords []string, excerpt string) float64 {
	if len(queryWords) == 0 {
		return 0
	}
	words := textnorm.WordSet(excerpt)
	matched := 0
	for _, w := range queryWords {
		if _, ok := words[w]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(queryWords))
}

// positionScore favors earlier pages: page 1 scores 1.0, decaying from
// there. Unknown pages (0) score as page 1.
func positionScore(page int) float64 {
	if page <= 1 {
		return 1
	}
	return 1 / float64(page)
}

// applyDiversityCap keeps at most limit results per document, preserving
// order.
func applyDiversityCap(results []result.Result, limit int) []result.Result {
	if limit <= 0 {
		return results
	}
	perDoc := make(map[string]int)
	out := results[:0]
	for _, r := range results {
		if perDoc[r.DocumentID()] >= limit {
			continue
		}
		perDoc[r.DocumentID()]++
		out = append(out, r)
	}
	return out
}

// dropNearDuplicates removes the later of any two results whose excerpt
// word sets overlap with Jaccard >= threshold.
func dropNearDuplicates(results []result.Result, threshold float64) []result.Result {
	if threshold <= 0 || len(results) < 2 {
		return results
	}
	kept := make([]map[string]struct{}, 0, len(results))
	out := results[:0]
	for _, r := range results {
		words := textnorm.WordSet(r.Excerpt())
		dup := false
		for _, prev := range kept {
			if textnorm.Jaccard(words, prev) >= threshold {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		kept = append(kept, words)
		out = append(out, r)
	}
	return out
}
