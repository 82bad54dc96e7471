// Package vectorspace builds a TF-IDF vector space over catalog composition text
// and answers cosine similarity queries against it.
//
// The index is fitted once over the whole corpus and is never mutated afterwards,
// so a single *Index may be shared by any number of concurrent readers.
package vectorspace

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// tokenPattern matches runs of two or more word characters
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Vector is a sparse document vector sorted by term position
type Vector struct {
	Indices []int
	Values  []float64
}

// Norm returns the L2 norm of the vector
func (v Vector) Norm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Dot returns the dot product of two sparse vectors
func (v Vector) Dot(o Vector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.Indices) && j < len(o.Indices) {
		switch {
		case v.Indices[i] == o.Indices[j]:
			sum += v.Values[i] * o.Values[j]
			i++
			j++
		case v.Indices[i] < o.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

type posting struct {
	doc    int
	weight float64
}

// Index is a fitted vocabulary plus one L2-normalized TF-IDF row per document
type Index struct {
	vocabulary map[string]int
	terms      []string
	idf        []float64
	rows       []Vector
	postings   [][]posting
}

// Tokenize lowercases text and splits it into terms, dropping English stop words
func Tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := raw[:0]
	for _, t := range raw {
		if !IsStopWord(t) {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// Build fits the vector space over texts. Row i of the index corresponds to texts[i].
// It returns nil for an empty corpus.
//
// Weights are raw term counts times the smoothed inverse document frequency
// idf(t) = ln((1+n)/(1+df(t))) + 1, with each row scaled to unit length.
// Documents without any terms get a zero row.
func Build(texts []string) *Index {
	if len(texts) == 0 {
		return nil
	}

	counts := make([]map[string]int, len(texts))
	df := make(map[string]int)
	for i, text := range texts {
		tf := make(map[string]int)
		for _, tok := range Tokenize(text) {
			tf[tok]++
		}
		for term := range tf {
			df[term]++
		}
		counts[i] = tf
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	idx := &Index{
		vocabulary: make(map[string]int, len(terms)),
		terms:      terms,
		idf:        make([]float64, len(terms)),
		rows:       make([]Vector, len(texts)),
		postings:   make([][]posting, len(terms)),
	}

	n := float64(len(texts))
	for pos, term := range terms {
		idx.vocabulary[term] = pos
		idx.idf[pos] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	for doc, tf := range counts {
		row := Vector{
			Indices: make([]int, 0, len(tf)),
			Values:  make([]float64, 0, len(tf)),
		}
		for term := range tf {
			row.Indices = append(row.Indices, idx.vocabulary[term])
		}
		sort.Ints(row.Indices)
		for _, pos := range row.Indices {
			row.Values = append(row.Values, float64(tf[terms[pos]])*idx.idf[pos])
		}

		if norm := row.Norm(); norm > 0 {
			for k := range row.Values {
				row.Values[k] /= norm
			}
		}

		for k, pos := range row.Indices {
			idx.postings[pos] = append(idx.postings[pos], posting{doc: doc, weight: row.Values[k]})
		}
		idx.rows[doc] = row
	}

	return idx
}

// Len returns the number of document rows
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.rows)
}

// VocabularySize returns the number of distinct terms
func (x *Index) VocabularySize() int {
	if x == nil {
		return 0
	}
	return len(x.terms)
}

// Terms returns the vocabulary in column order. The slice must not be modified.
func (x *Index) Terms() []string {
	return x.terms
}

// IDF returns the inverse document frequency of term and whether it is in the vocabulary
func (x *Index) IDF(term string) (float64, bool) {
	pos, ok := x.vocabulary[term]
	if !ok {
		return 0, false
	}
	return x.idf[pos], true
}

// Row returns the weighted vector of document i
func (x *Index) Row(i int) Vector {
	return x.rows[i]
}

// Cosine returns the cosine similarity of documents i and j
func (x *Index) Cosine(i, j int) float64 {
	a, b := x.rows[i], x.rows[j]
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return clamp(a.Dot(b) / (na * nb))
}

// Similarities returns the cosine similarity of document i against every document,
// itself included, indexed by document position.
func (x *Index) Similarities(i int) []float64 {
	scores := make([]float64, len(x.rows))
	row := x.rows[i]
	for k, pos := range row.Indices {
		w := row.Values[k]
		for _, p := range x.postings[pos] {
			scores[p.doc] += w * p.weight
		}
	}
	for d := range scores {
		scores[d] = clamp(scores[d])
	}
	return scores
}

// clamp keeps rounding error from pushing unit-vector products outside [0, 1]
func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
