package resolver

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/pmezard/go-difflib/difflib"
)

// SimilarityFunc scores two strings on a 0-1 scale, 1 meaning identical
type SimilarityFunc func(query, candidate string) float64

// Algorithm names accepted by ByName
const (
	AlgorithmSequence    = "sequence"
	AlgorithmLevenshtein = "levenshtein"
)

// SequenceRatio is the Ratcliff/Obershelp similarity 2*M/T, where M is the number
// of characters in matching blocks and T the combined length of both strings.
func SequenceRatio(query, candidate string) float64 {
	if query == "" && candidate == "" {
		return 1
	}
	m := difflib.NewMatcher(runes(candidate), runes(query))
	return m.Ratio()
}

// LevenshteinRatio is 1 - distance/maxLen, measured in runes
func LevenshteinRatio(query, candidate string) float64 {
	maxLen := max(utf8.RuneCountInString(query), utf8.RuneCountInString(candidate))
	if maxLen == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(query, candidate)
	return 1 - float64(dist)/float64(maxLen)
}

// ByName returns the similarity function registered under name
func ByName(name string) (SimilarityFunc, error) {
	switch strings.ToLower(name) {
	case "", AlgorithmSequence:
		return SequenceRatio, nil
	case AlgorithmLevenshtein:
		return LevenshteinRatio, nil
	default:
		return nil, fmt.Errorf("unknown similarity algorithm %q", name)
	}
}

// runes splits s into one element per character
func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
