//-------------------------------------------------------------------------
//
// pgEdge Search Server
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package ranking provides the ranking strategies that score a normalized
// query against every document of a language's corpus.
package ranking

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pgEdge/pgedge-search-server/internal/corpus"
	"github.com/pgEdge/pgedge-search-server/internal/weighting"
)

// Model names accepted by Build.
const (
	ModelTopic     = "topic"
	ModelWeighting = "weighting"
)

// ErrUnknownModel is returned by Build for an unsupported model name.
var ErrUnknownModel = errors.New("model must be either 'topic' or 'weighting'")

// Hit is the score of one document, addressed by corpus ordinal.
type Hit struct {
	Doc   int
	Score float64
}

// Ranker scores a normalized query against every document. Rankers are
// immutable once built and safe for concurrent use.
type Ranker interface {
	// Name returns the model name.
	Name() string

	// Rank returns one hit per document sorted by descending score.
	// Documents with equal scores keep their corpus order.
	Rank(terms []string) []Hit

	// Threshold returns the effective score threshold given the
	// configured one.
	Threshold(configured float64) float64
}

// Input is everything a model build needs for one language.
type Input struct {
	Dictionary *corpus.Dictionary
	Documents  [][]string // term sequences in corpus order
	Names      []string   // document names in corpus order
	NumTopics  int
	Scheme     string
	Similarity string
}

// Build constructs the named ranker.
func Build(name string, in Input) (Ranker, error) {
	switch name {
	case ModelTopic:
		return NewTopic(in.Dictionary, in.Documents, in.NumTopics)
	case ModelWeighting:
		return NewWeighting(in.Names, in.Documents, in.Scheme, in.Similarity)
	default:
		return nil, fmt.Errorf("%w: got %q", ErrUnknownModel, name)
	}
}

// sortHits turns per-document scores into hits sorted by descending score,
// preserving document order among ties.
func sortHits(scores []float64) []Hit {
	hits := make([]Hit, len(scores))
	for i, s := range scores {
		hits[i] = Hit{Doc: i, Score: s}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	return hits
}

// Normalize divides every score by the top score so that the best hit
// scores 1. Hits must already be sorted. A non-positive top score leaves
// the hits unchanged.
func Normalize(hits []Hit) []Hit {
	out := make([]Hit, len(hits))
	copy(out, hits)
	if len(out) == 0 || out[0].Score <= 0 {
		return out
	}
	top := out[0].Score
	for i := range out {
		out[i].Score /= top
	}
	return out
}

// Weighting ranks documents by term-weight overlap. Its scores are not
// comparable with topic similarities, so it never applies a threshold.
type Weighting struct {
	index *weighting.Index
}

// NewWeighting registers every document under its name and builds the
// weight index.
func NewWeighting(names []string, docs [][]string, scheme, similarity string) (*Weighting, error) {
	if len(names) != len(docs) {
		return nil, fmt.Errorf("got %d document names for %d documents", len(names), len(docs))
	}

	s, err := weighting.NewScheme(scheme)
	if err != nil {
		return nil, err
	}
	b, err := weighting.NewBuilder(s, similarity)
	if err != nil {
		return nil, err
	}
	for i, name := range names {
		if err := b.AddDocument(name, docs[i]); err != nil {
			return nil, err
		}
	}

	return &Weighting{index: b.Build()}, nil
}

// Name returns "weighting".
func (w *Weighting) Name() string { return ModelWeighting }

// Index returns the underlying weight index.
func (w *Weighting) Index() *weighting.Index { return w.index }

// Rank scores the raw query terms against every document.
func (w *Weighting) Rank(terms []string) []Hit {
	return sortHits(w.index.Similarities(terms))
}

// Threshold always returns 0.
func (w *Weighting) Threshold(float64) float64 { return 0 }
