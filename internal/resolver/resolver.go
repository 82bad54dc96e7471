// Package resolver maps free-text medicine names to canonical catalog names
// by approximate string matching.
package resolver

import "strings"

// DefaultCutoff is the minimum similarity a candidate needs to be returned
const DefaultCutoff = 0.6

// Config holds configuration for the resolver
type Config struct {
	Similarity SimilarityFunc
	Cutoff     float64
	FoldCase   bool
}

// Resolver picks the single closest candidate name for a query
type Resolver struct {
	similarity SimilarityFunc
	cutoff     float64
	foldCase   bool
}

// New creates a resolver, defaulting to SequenceRatio and DefaultCutoff
func New(cfg Config) *Resolver {
	sim := cfg.Similarity
	if sim == nil {
		sim = SequenceRatio
	}

	cutoff := cfg.Cutoff
	if cutoff <= 0 || cutoff > 1 {
		cutoff = DefaultCutoff
	}

	return &Resolver{
		similarity: sim,
		cutoff:     cutoff,
		foldCase:   cfg.FoldCase,
	}
}

// Cutoff returns the similarity threshold in effect
func (r *Resolver) Cutoff() float64 {
	return r.cutoff
}

// Resolve returns the candidate most similar to query, or false when no candidate
// reaches the cutoff.
//
// A candidate equal to the query always wins. Otherwise the highest score wins and
// ties go to the lexicographically greater candidate.
func (r *Resolver) Resolve(query string, candidates []string) (string, bool) {
	if query == "" {
		return "", false
	}

	for _, c := range candidates {
		if c == query {
			return c, true
		}
	}

	q := r.fold(query)
	best, bestScore, found := "", -1.0, false
	for _, c := range candidates {
		score := r.similarity(q, r.fold(c))
		if score < r.cutoff {
			continue
		}
		if score > bestScore || (score == bestScore && c > best) {
			best, bestScore, found = c, score, true
		}
	}

	return best, found
}

// Score exposes the similarity the resolver would assign to a pair
func (r *Resolver) Score(query, candidate string) float64 {
	return r.similarity(r.fold(query), r.fold(candidate))
}

func (r *Resolver) fold(s string) string {
	if r.foldCase {
		return strings.ToLower(s)
	}
	return s
}
