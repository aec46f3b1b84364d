// Package retrieve implements the hybrid retrieval pipeline: intent
// detection, filename matching, candidate generation over the inverted
// index, multi-signal score fusion, and optional re-ranking.
package retrieve

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/hsnnrn/hasandocai-sub002/internal/domain/intent"
	"github.com/hsnnrn/hasandocai-sub002/internal/domain/match"
	"github.com/hsnnrn/hasandocai-sub002/internal/domain/result"
	"github.com/hsnnrn/hasandocai-sub002/internal/domain/textnorm"
	"github.com/hsnnrn/hasandocai-sub002/internal/index"
)

// Options carries per-request overrides of the configured defaults.
// Zero values fall back to Config.
type Options struct {
	MaxRefs  int
	MinScore float64
	Rerank   bool
}

// Service orchestrates hybrid retrieval over an index snapshot. It holds no
// per-query mutable state; a single Service serves concurrent queries.
type Service struct {
	cfg    Config
	sem    SemanticScorer // optional, nil disables the semantic side path
	logger *zap.Logger
}

// New creates a retrieval service. sem may be nil.
func New(cfg Config, sem SemanticScorer, logger *zap.Logger) *Service {
	return &Service{cfg: cfg, sem: sem, logger: logger}
}

// genericOverviewWords are query words that ask about the corpus itself
// rather than its content ("belgeler?", "what is there?"). A query made
// only of these short-circuits to the overview path.
var genericOverviewWords = map[string]struct{}{
	"belge": {}, "belgeler": {}, "dokuman": {}, "dokumanlar": {},
	"dosya": {}, "dosyalar": {}, "document": {}, "documents": {},
	"file": {}, "files": {}, "var": {}, "nedir": {}, "what": {}, "there": {},
}

// Retrieve runs the full pipeline for one query against a snapshot. Empty
// document sets, empty candidate pools, and all-below-threshold scores all
// return an empty list, never an error.
func (s *Service) Retrieve(
	ctx context.Context, snap *index.Snapshot, query string, opts Options,
) []result.Result {
	if snap == nil || len(snap.Sections) == 0 {
		return nil
	}

	q := candidateQuery{
		normalized: strings.TrimSpace(textnorm.Normalize(query)),
		words:      textnorm.Tokenize(query),
		trigrams:   textnorm.Trigrams(query),
	}
	q.intent = intent.Detect(q.normalized)

	maxRefs := opts.MaxRefs
	if maxRefs <= 0 {
		maxRefs = s.cfg.MaxRefs
	}
	minScore := opts.MinScore
	if minScore <= 0 {
		minScore = s.cfg.MinScore
	}

	// List queries and corpus-level generic queries bypass scoring and
	// enumerate one excerpt per document, ignoring maxRefs.
	if q.intent == intent.List || s.isGenericQuery(q.words) {
		return s.overview(snap)
	}

	fnScores := s.filenameScores(snap, q.words)
	candidates := s.generateCandidates(snap, q.words, fnScores)
	bm25Scores := s.bm25Scores(snap, query)

	var hits []scoredHit
	for sectionID := range candidates {
		sec, ok := snap.SectionByID(sectionID)
		if !ok {
			continue
		}
		br := scoreCandidate(s.cfg, sec, q, fnScores[sec.DocumentID], bm25Scores[sectionID])
		if br.skip {
			continue
		}
		hits = append(hits, scoredHit{
			res: result.New(
				sec.SectionID, sec.DocumentID, sec.Filename,
				excerpt(sec.Original, s.cfg.ExcerptLen),
				br.final, sec.Page, br.match,
			),
			floored: br.floored,
		})
	}

	hits = s.mergeSemantic(ctx, snap, query, hits)

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].res.Score() != hits[j].res.Score() {
			return hits[i].res.Score() > hits[j].res.Score()
		}
		return hits[i].res.SectionID() < hits[j].res.SectionID()
	})

	var results []result.Result
	var floored []bool
	for _, h := range hits {
		if h.res.Score() < minScore {
			continue
		}
		results = append(results, h.res)
		floored = append(floored, h.floored)
	}

	if q.intent == intent.Price {
		results = s.filterPrice(snap, results, floored)
	} else if len(results) > maxRefs {
		results = results[:maxRefs]
	}

	if opts.Rerank {
		results = Rerank(results, snap, q.words, s.cfg)
	}
	return results
}

// isGenericQuery reports whether every query word is corpus-level
// vocabulary (or the query tokenizes to nothing).
func (s *Service) isGenericQuery(words []string) bool {
	if len(words) == 0 {
		return true
	}
	for _, w := range words {
		if _, ok := genericOverviewWords[w]; !ok {
			return false
		}
	}
	return true
}

// overview returns one representative excerpt per document, uncapped.
func (s *Service) overview(snap *index.Snapshot) []result.Result {
	results := make([]result.Result, 0, len(snap.Documents))
	for _, doc := range snap.Documents {
		if len(doc.SectionIDs) == 0 {
			continue
		}
		sec, ok := snap.SectionByID(doc.SectionIDs[0])
		if !ok {
			continue
		}
		results = append(results, result.New(
			sec.SectionID, sec.DocumentID, sec.Filename,
			excerpt(sec.Original, s.cfg.ExcerptLen),
			s.cfg.OverviewScore, sec.Page, match.Partial,
		))
	}
	return results
}

// filenameScores computes the best filename tier per document.
func (s *Service) filenameScores(snap *index.Snapshot, queryWords []string) map[string]float64 {
	scores := make(map[string]float64, len(snap.Documents))
	for _, doc := range snap.Documents {
		if score := filenameMatchScore(queryWords, doc.FilenameWords); score > 0 {
			scores[doc.DocumentID] = score
		}
	}
	return scores
}

// generateCandidates unions exact index lookups, capped substring matches
// against indexed words, and every section of filename-matched documents.
func (s *Service) generateCandidates(
	snap *index.Snapshot, queryWords []string, fnScores map[string]float64,
) map[string]struct{} {
	candidates := make(map[string]struct{})

	for _, w := range queryWords {
		for sectionID := range snap.Lookup(w) {
			candidates[sectionID] = struct{}{}
		}

		// Partial matches are capped per query word for cost control.
		matches := 0
		for indexed, sections := range snap.Inverted {
			if matches >= s.cfg.PartialMatchCap {
				break
			}
			if indexed == w || !strings.Contains(indexed, w) {
				continue
			}
			matches++
			for sectionID := range sections {
				candidates[sectionID] = struct{}{}
			}
		}
	}

	for docID := range fnScores {
		doc, ok := snap.DocumentByID(docID)
		if !ok {
			continue
		}
		for _, sectionID := range doc.SectionIDs {
			candidates[sectionID] = struct{}{}
		}
	}
	return candidates
}

// bm25Scores scores the whole corpus once per query.
func (s *Service) bm25Scores(snap *index.Snapshot, query string) map[string]float64 {
	hits := snap.Corpus.Search(query, 0)
	scores := make(map[string]float64, len(hits))
	for _, h := range hits {
		scores[h.SectionID] = h.Score
	}
	return scores
}

// filterPrice keeps sections carrying a price indicator (floored
// filename-only matches are kept too) and caps the list at PriceTopK.
func (s *Service) filterPrice(
	snap *index.Snapshot, results []result.Result, floored []bool,
) []result.Result {
	var out []result.Result
	for i := range results {
		sec, ok := snap.SectionByID(results[i].SectionID())
		if !ok {
			continue
		}
		if !floored[i] && !priceIndicator.MatchString(sec.Original) {
			continue
		}
		out = append(out, results[i])
		if len(out) >= s.cfg.PriceTopK {
			break
		}
	}
	return out
}

// scoredHit pairs a result with its floor flag through sorting and
// post-filtering.
type scoredHit struct {
	res     result.Result
	floored bool
}

// mergeSemantic adds embedding-path candidates that the lexical pass
// missed. Scoring failures disable the side path for this query only.
func (s *Service) mergeSemantic(
	ctx context.Context, snap *index.Snapshot, query string, hits []scoredHit,
) []scoredHit {
	if s.sem == nil {
		return hits
	}
	semScores, err := s.sem.Score(ctx, snap, query)
	if err != nil {
		if s.logger != nil {
			s.logger.Debug("Semantic side path unavailable", zap.Error(err))
		}
		return hits
	}

	present := make(map[string]struct{}, len(hits))
	for _, h := range hits {
		present[h.res.SectionID()] = struct{}{}
	}

	for sectionID, score := range semScores {
		if score < s.cfg.SemanticMinScore {
			continue
		}
		if _, ok := present[sectionID]; ok {
			continue
		}
		sec, ok := snap.SectionByID(sectionID)
		if !ok {
			continue
		}
		hits = append(hits, scoredHit{
			res: result.New(
				sec.SectionID, sec.DocumentID, sec.Filename,
				excerpt(sec.Original, s.cfg.ExcerptLen),
				clamp01(score), sec.Page, match.Semantic,
			),
		})
	}
	return hits
}

// excerpt trims text to at most n runes on a word boundary.
func excerpt(text string, n int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	cut := string(runes[:n])
	if idx := strings.LastIndexByte(cut, ' '); idx > n/2 {
		cut = cut[:idx]
	}
	return cut
}
