//-------------------------------------------------------------------------
//
// pgEdge Search Server
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package ranking

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/pgEdge/pgedge-search-server/internal/corpus"
)

// DefaultNumTopics is the default number of latent topics.
const DefaultNumTopics = 100

// singularEpsilon is the smallest singular value kept as a topic.
const singularEpsilon = 1e-10

// Topic ranks documents by cosine similarity in a latent topic space
// obtained from a truncated singular value decomposition of the
// term-document count matrix.
type Topic struct {
	dict      *corpus.Dictionary
	numTopics int
	basis     *mat.Dense  // terms × topics
	docs      [][]float64 // unit-length topic vectors in corpus order
	bows      []corpus.BagOfWords
}

// NewTopic builds the topic model. numTopics is an upper bound; the model
// keeps at most as many topics as the matrix has non-zero singular values.
func NewTopic(dict *corpus.Dictionary, docs [][]string, numTopics int) (*Topic, error) {
	if dict == nil {
		return nil, fmt.Errorf("topic model requires a dictionary")
	}
	if numTopics <= 0 {
		numTopics = DefaultNumTopics
	}

	t := &Topic{
		dict: dict,
		bows: make([]corpus.BagOfWords, len(docs)),
		docs: make([][]float64, len(docs)),
	}
	for i, terms := range docs {
		t.bows[i] = dict.Doc2Bow(terms)
	}

	numTerms := dict.Len()
	if numTerms == 0 || len(docs) == 0 {
		return t, nil
	}

	counts := mat.NewDense(numTerms, len(docs), nil)
	for j, bow := range t.bows {
		for _, e := range bow {
			counts.Set(e.ID, j, float64(e.Count))
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(counts, mat.SVDThin); !ok {
		return nil, fmt.Errorf("singular value decomposition failed")
	}

	k := 0
	for _, v := range svd.Values(nil) {
		if v > singularEpsilon && k < numTopics {
			k++
		}
	}
	t.numTopics = k
	if k == 0 {
		return t, nil
	}

	var u mat.Dense
	svd.UTo(&u)
	t.basis = mat.DenseCopyOf(u.Slice(0, numTerms, 0, k))

	var projected mat.Dense
	projected.Mul(t.basis.T(), counts)
	for j := range docs {
		t.docs[j] = unit(mat.Col(nil, j, &projected))
	}

	return t, nil
}

// Name returns "topic".
func (t *Topic) Name() string { return ModelTopic }

// NumTopics returns the number of topics actually kept.
func (t *Topic) NumTopics() int { return t.numTopics }

// BagsOfWords returns the document-term vectors the model was built from.
func (t *Topic) BagsOfWords() []corpus.BagOfWords { return t.bows }

// Project maps a bag of term ids into topic space.
func (t *Topic) Project(bow corpus.BagOfWords) []float64 {
	if t.basis == nil {
		return nil
	}
	numTerms, _ := t.basis.Dims()
	q := mat.NewVecDense(numTerms, nil)
	for _, e := range bow {
		q.SetVec(e.ID, float64(e.Count))
	}

	var v mat.VecDense
	v.MulVec(t.basis.T(), q)
	return mat.Col(nil, 0, &v)
}

// Rank converts the terms to a bag of ids, projects them into topic space
// and scores every document by cosine similarity.
func (t *Topic) Rank(terms []string) []Hit {
	scores := make([]float64, len(t.docs))

	query := unit(t.Project(t.dict.Doc2Bow(terms)))
	if query != nil {
		for i, d := range t.docs {
			if d != nil {
				scores[i] = floats.Dot(query, d)
			}
		}
	}

	return sortHits(scores)
}

// Threshold returns the configured threshold unchanged.
func (t *Topic) Threshold(configured float64) float64 { return configured }

// unit scales v to unit length in place. A zero vector yields nil.
func unit(v []float64) []float64 {
	if len(v) == 0 {
		return nil
	}
	n := floats.Norm(v, 2)
	if n == 0 || math.IsNaN(n) {
		return nil
	}
	floats.Scale(1/n, v)
	return v
}
