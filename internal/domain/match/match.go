// Package match defines the closed set of ways a section can match a query.
package match

// Type is the kind of evidence behind a retrieval hit.
type Type string

// Match type constants.
const (
	// Exact means the normalized query is a substring of the section text.
	Exact Type = "exact"
	// Partial means keyword overlap between query and section.
	Partial Type = "partial"
	// Ngram means trigram-refined fuzzy phrase similarity.
	Ngram Type = "ngram"
	// Semantic means the hit came from the embedding side path.
	Semantic Type = "semantic"
)

// IsValid checks if the type is one of the supported values.
func (t Type) IsValid() bool {
	return t == Exact || t == Partial || t == Ngram || t == Semantic
}
