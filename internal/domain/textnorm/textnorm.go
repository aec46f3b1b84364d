// Package textnorm provides locale folding, tokenization, and trigram
// shingles for the lexical retrieval path.
package textnorm

import (
	"strings"
	"unicode"
)

// turkishFold maps Turkish-specific characters onto their ASCII neighbors so
// "FATURA TUTARI" and "fatura tutarı" normalize identically.
var turkishFold = map[rune]rune{
	'ı': 'i', 'İ': 'i',
	'ğ': 'g', 'Ğ': 'g',
	'ü': 'u', 'Ü': 'u',
	'ş': 's', 'Ş': 's',
	'ö': 'o', 'Ö': 'o',
	'ç': 'c', 'Ç': 'c',
}

// minTokenLen is the shortest token kept by Tokenize. Shorter tokens are
// almost always stopword fragments ("ve", "de") or punctuation debris.
const minTokenLen = 3

// Normalize folds Turkish characters and lowercases the text. Digits,
// currency symbols, and separators pass through untouched so numeric
// patterns stay matchable on normalized text.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if folded, ok := turkishFold[r]; ok {
			r = folded
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Tokenize normalizes text and splits it into words on any
// non-letter/non-digit rune, discarding tokens shorter than three runes.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(Normalize(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	words := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= minTokenLen {
			words = append(words, f)
		}
	}
	return words
}

// WordSet tokenizes text into a set of unique words.
func WordSet(text string) map[string]struct{} {
	words := Tokenize(text)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Trigrams produces overlapping 3-word shingles of the normalized token
// stream. Texts shorter than three words yield an empty set.
func Trigrams(text string) map[string]struct{} {
	words := Tokenize(text)
	if len(words) < 3 {
		return map[string]struct{}{}
	}
	set := make(map[string]struct{}, len(words)-2)
	for i := 0; i+2 < len(words); i++ {
		set[words[i]+" "+words[i+1]+" "+words[i+2]] = struct{}{}
	}
	return set
}

// Jaccard computes |A∩B| / |A∪B| over two string sets.
// Two empty sets have similarity 0.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	inter := 0
	for k := range small {
		if _, ok := large[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
