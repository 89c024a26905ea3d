//-------------------------------------------------------------------------
//
// pgEdge Search Server
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package weighting

import (
	"fmt"
	"math"
	"strings"
)

// Similarity functions between a query and a document weight vector.
const (
	SimilarityDot    = "dot"
	SimilarityCosine = "cosine"
)

// Document is a registered document and its term weights.
type Document struct {
	Name      string
	Length    int                // Number of terms
	TermFreqs map[string]int     // Raw term frequencies
	Weights   map[string]float64 // Scheme weights
	norm      float64
}

// Builder collects documents for an Index. It is not safe for
// concurrent use.
type Builder struct {
	scheme     Scheme
	similarity string
	docs       []*Document
	byName     map[string]int
	docFreqs   map[string]int
	totalLen   int
}

// NewBuilder creates a builder for the given scheme and similarity.
func NewBuilder(scheme Scheme, similarity string) (*Builder, error) {
	switch strings.ToLower(similarity) {
	case SimilarityDot, "":
		similarity = SimilarityDot
	case SimilarityCosine:
		similarity = SimilarityCosine
	default:
		return nil, fmt.Errorf("unknown similarity: %s", similarity)
	}
	if scheme == nil {
		scheme = NewTFIDF()
	}

	return &Builder{
		scheme:     scheme,
		similarity: similarity,
		byName:     make(map[string]int),
		docFreqs:   make(map[string]int),
	}, nil
}

// AddDocument registers a document by name with its term sequence.
// Documents are addressed in the index by registration order.
func (b *Builder) AddDocument(name string, terms []string) error {
	if _, dup := b.byName[name]; dup {
		return fmt.Errorf("duplicate document %q", name)
	}

	freqs := make(map[string]int, len(terms))
	for _, t := range terms {
		freqs[t]++
	}
	for t := range freqs {
		b.docFreqs[t]++
	}

	b.byName[name] = len(b.docs)
	b.docs = append(b.docs, &Document{
		Name:      name,
		Length:    len(terms),
		TermFreqs: freqs,
	})
	b.totalLen += len(terms)
	return nil
}

// Build computes every document's weights and returns the index. The
// builder must not be used afterwards.
func (b *Builder) Build() *Index {
	avgDL := 0.0
	if len(b.docs) > 0 {
		avgDL = float64(b.totalLen) / float64(len(b.docs))
	}
	b.scheme.SetCorpusStats(len(b.docs), avgDL)

	for _, doc := range b.docs {
		doc.Weights = make(map[string]float64, len(doc.TermFreqs))
		var sum float64
		for term, tf := range doc.TermFreqs {
			w := b.scheme.Score(tf, b.docFreqs[term], doc.Length)
			doc.Weights[term] = w
			sum += w * w
		}
		doc.norm = math.Sqrt(sum)
	}

	return &Index{
		scheme:     b.scheme,
		similarity: b.similarity,
		docs:       b.docs,
		byName:     b.byName,
		docFreqs:   b.docFreqs,
		totalLen:   b.totalLen,
	}
}

// Index is an immutable per-document weight index. It is safe for
// concurrent reads.
type Index struct {
	scheme     Scheme
	similarity string
	docs       []*Document
	byName     map[string]int
	docFreqs   map[string]int
	totalLen   int
}

// Size returns the number of documents in the index.
func (idx *Index) Size() int { return len(idx.docs) }

// Scheme returns the name of the weighting scheme.
func (idx *Index) Scheme() string { return idx.scheme.Name() }

// Similarity returns the name of the similarity function.
func (idx *Index) Similarity() string { return idx.similarity }

// Document returns the document at ordinal i.
func (idx *Index) Document(i int) *Document {
	if i < 0 || i >= len(idx.docs) {
		return nil
	}
	return idx.docs[i]
}

// Lookup returns the ordinal of the named document.
func (idx *Index) Lookup(name string) (int, bool) {
	i, ok := idx.byName[name]
	return i, ok
}

// Similarities scores the query terms against every document and returns
// one score per document in registration order.
func (idx *Index) Similarities(terms []string) []float64 {
	scores := make([]float64, len(idx.docs))
	if len(terms) == 0 {
		return scores
	}

	queryFreqs := make(map[string]int, len(terms))
	for _, t := range terms {
		queryFreqs[t]++
	}

	if idx.similarity == SimilarityCosine {
		idx.cosine(queryFreqs, scores)
	} else {
		idx.dot(queryFreqs, scores)
	}
	return scores
}

// dot sums the query term counts times the document weights.
func (idx *Index) dot(queryFreqs map[string]int, scores []float64) {
	for i, doc := range idx.docs {
		var score float64
		for term, qtf := range queryFreqs {
			score += float64(qtf) * doc.Weights[term]
		}
		scores[i] = score
	}
}

// cosine compares an idf-weighted query vector with each document vector.
func (idx *Index) cosine(queryFreqs map[string]int, scores []float64) {
	query := make(map[string]float64, len(queryFreqs))
	var sum float64
	for term, qtf := range queryFreqs {
		w := float64(qtf) * idx.scheme.IDF(idx.docFreqs[term])
		if w == 0 {
			continue
		}
		query[term] = w
		sum += w * w
	}
	qnorm := math.Sqrt(sum)
	if qnorm == 0 {
		return
	}

	for i, doc := range idx.docs {
		if doc.norm == 0 {
			continue
		}
		var dot float64
		for term, w := range query {
			dot += w * doc.Weights[term]
		}
		scores[i] = dot / (qnorm * doc.norm)
	}
}
