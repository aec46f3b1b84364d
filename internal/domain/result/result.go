// Package result defines the retrieval hit value type.
package result

import "github.com/hsnnrn/hasandocai-sub002/internal/domain/match"

// Result is a single retrieval hit. Produced fresh per query; callers that
// cache results must store a snapshot, never a shared reference.
type Result struct {
	sectionID  string
	documentID string
	filename   string
	excerpt    string
	score      float64
	page       int
	matchType  match.Type
}

// New creates a retrieval result. The score is clamped into [0, 1].
func New(
	sectionID, documentID, filename, excerpt string,
	score float64, page int, matchType match.Type,
) Result {
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return Result{
		sectionID:  sectionID,
		documentID: documentID,
		filename:   filename,
		excerpt:    excerpt,
		score:      score,
		page:       page,
		matchType:  matchType,
	}
}

// SectionID returns the matched section identifier.
func (r *Result) SectionID() string { return r.sectionID }

// DocumentID returns the parent document identifier.
func (r *Result) DocumentID() string { return r.documentID }

// Filename returns the parent document filename.
func (r *Result) Filename() string { return r.filename }

// Excerpt returns the raw text excerpt backing the hit.
func (r *Result) Excerpt() string { return r.excerpt }

// Score returns the relevance score in [0, 1].
func (r *Result) Score() float64 { return r.score }

// Page returns the page or ordering number of the section.
func (r *Result) Page() int { return r.page }

// MatchType returns the kind of evidence behind the hit.
func (r *Result) MatchType() match.Type { return r.matchType }

// WithScore returns a copy of the result carrying a new score.
func (r Result) WithScore(score float64) Result {
	return New(r.sectionID, r.documentID, r.filename, r.excerpt, score, r.page, r.matchType)
}
