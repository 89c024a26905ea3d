//-------------------------------------------------------------------------
//
// pgEdge Search Server
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package weighting provides term-weighting schemes and an immutable
// per-document weight index used by the weighting ranking strategy.
package weighting

import (
	"fmt"
	"math"
	"strings"
)

// Scheme names.
const (
	SchemeTFIDF = "tfidf"
	SchemeBM25  = "bm25"
)

// Scheme weights a term occurrence within a document given corpus
// statistics.
type Scheme interface {
	// Name returns the scheme identifier.
	Name() string

	// SetCorpusStats records the number of documents and their average
	// length in terms.
	SetCorpusStats(docCount int, avgDocLength float64)

	// IDF returns the inverse document frequency for a term that occurs
	// in docFreq documents.
	IDF(docFreq int) float64

	// Score returns the weight of a term with frequency tf in a document
	// of docLen terms.
	Score(tf, docFreq, docLen int) float64
}

// NewScheme returns the scheme with the given name.
func NewScheme(name string) (Scheme, error) {
	switch strings.ToLower(name) {
	case SchemeTFIDF, "":
		return NewTFIDF(), nil
	case SchemeBM25:
		return New(), nil
	default:
		return nil, fmt.Errorf("unknown weighting scheme: %s", name)
	}
}

// TFIDF weights a term by its relative frequency in the document scaled
// by a smoothed inverse document frequency:
//
//	w(t, d) = tf(t, d) / |d| * (log((N + 1) / (df(t) + 1)) + 1)
type TFIDF struct {
	DocCount int
}

// NewTFIDF creates a tf-idf scheme.
func NewTFIDF() *TFIDF {
	return &TFIDF{}
}

// Name returns "tfidf".
func (s *TFIDF) Name() string { return SchemeTFIDF }

// SetCorpusStats sets the document count. The average length is unused.
func (s *TFIDF) SetCorpusStats(docCount int, _ float64) {
	s.DocCount = docCount
}

// IDF returns the smoothed inverse document frequency, which is always
// positive for a term present in the corpus.
func (s *TFIDF) IDF(docFreq int) float64 {
	if s.DocCount == 0 || docFreq == 0 {
		return 0
	}
	return math.Log(float64(s.DocCount+1)/float64(docFreq+1)) + 1
}

// Score returns the tf-idf weight.
func (s *TFIDF) Score(tf, docFreq, docLen int) float64 {
	if tf == 0 || docLen == 0 {
		return 0
	}
	return float64(tf) / float64(docLen) * s.IDF(docFreq)
}
