package retrieve

import "strings"

// Filename match tiers, highest wins. The prefix tier carries a small
// penalty proportional to the length difference so "inv" against
// "invoice-2024" scores below a near-complete prefix.
const (
	tierExact           = 1.0
	tierPrefix          = 0.95
	tierContains        = 0.85
	tierReversePrefix   = 0.75
	tierReverseContains = 0.65

	prefixMinQueryLen   = 4
	prefixLenPenalty    = 0.01
	prefixLenPenaltyCap = 0.15
)

// filenameMatchScore compares normalized query words against a document's
// normalized filename words and returns the best tier hit, 0 when nothing
// matches. Documents scoring above zero are "filename-matched": all their
// sections become candidates regardless of content overlap.
func filenameMatchScore(queryWords, filenameWords []string) float64 {
	var best float64
	for _, qw := range queryWords {
		for _, fw := range filenameWords {
			if s := wordPairScore(qw, fw); s > best {
				best = s
			}
		}
	}
	return best
}

func wordPairScore(qw, fw string) float64 {
	switch {
	case qw == fw:
		return tierExact
	case len(qw) >= prefixMinQueryLen && strings.HasPrefix(fw, qw):
		penalty := float64(len(fw)-len(qw)) * prefixLenPenalty
		if penalty > prefixLenPenaltyCap {
			penalty = prefixLenPenaltyCap
		}
		return tierPrefix - penalty
	case strings.Contains(fw, qw):
		return tierContains
	case strings.HasPrefix(qw, fw):
		return tierReversePrefix
	case strings.Contains(qw, fw):
		return tierReverseContains
	default:
		return 0
	}
}
