package usecase

import (
	"math"
	"slices"

	"github.com/medalt/backend/internal/catalog"
	"github.com/medalt/backend/internal/domain"
	"github.com/medalt/backend/internal/vectorspace"
)

type scoredPosition struct {
	pos   int
	score float64
}

// Rank returns up to topN catalog entries most similar in composition to the entry
// at target, best first.
//
// The target is excluded by position, so a duplicate of the queried entry can still
// be returned as an alternative. Equal scores keep ascending catalog order. Fewer
// than topN results are returned when the catalog is smaller.
func Rank(c *catalog.Catalog, index *vectorspace.Index, target, topN int) []domain.MatchResult {
	if topN <= 0 || index == nil || target < 0 || target >= index.Len() {
		return []domain.MatchResult{}
	}

	scores := index.Similarities(target)
	ranked := make([]scoredPosition, 0, len(scores)-1)
	for pos, score := range scores {
		if pos == target {
			continue
		}
		ranked = append(ranked, scoredPosition{pos: pos, score: score})
	}

	slices.SortStableFunc(ranked, func(a, b scoredPosition) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		}
		return 0
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}

	results := make([]domain.MatchResult, 0, len(ranked))
	for _, r := range ranked {
		entry := c.Entry(r.pos)
		results = append(results, domain.MatchResult{
			BrandName:  entry.Name,
			Formula:    entry.Composition,
			Price:      entry.Price,
			MatchScore: percent(r.score),
		})
	}
	return results
}

// percent converts a 0-1 similarity to a percentage with one decimal place
func percent(score float64) float64 {
	return math.Round(score*1000) / 10
}
