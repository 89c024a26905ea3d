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
	"math"
)

// DefaultK1 is the default term frequency saturation parameter.
// Higher values mean term frequency has more impact.
const DefaultK1 = 1.2

// DefaultB is the default document length normalization parameter.
// B=0 means no normalization, B=1 means full normalization.
const DefaultB = 0.75

// BM25 implements the BM25 (Best Matching 25) weighting function.
type BM25 struct {
	K1       float64 // Term frequency saturation (default 1.2)
	B        float64 // Document length normalization (default 0.75)
	AvgDL    float64 // Average document length
	DocCount int     // Total number of documents
}

// New creates a new BM25 scheme with default parameters.
func New() *BM25 {
	return NewWithParams(DefaultK1, DefaultB)
}

// NewWithParams creates a BM25 scheme with custom parameters.
func NewWithParams(k1, b float64) *BM25 {
	return &BM25{
		K1: k1,
		B:  b,
	}
}

// Name returns "bm25".
func (bm *BM25) Name() string { return SchemeBM25 }

// SetCorpusStats sets the corpus statistics needed for scoring.
func (bm *BM25) SetCorpusStats(docCount int, avgDocLength float64) {
	bm.DocCount = docCount
	bm.AvgDL = avgDocLength
}

// IDF uses the Lucene variant of the BM25 formula, which is never
// negative:
//
//	IDF(t) = log(1 + (N - df(t) + 0.5) / (df(t) + 0.5))
func (bm *BM25) IDF(docFreq int) float64 {
	if bm.DocCount == 0 || docFreq == 0 {
		return 0
	}

	n := float64(bm.DocCount)
	df := float64(docFreq)
	return math.Log(1 + (n-df+0.5)/(df+0.5))
}

// Score calculates the BM25 weight for a term with frequency tf in a
// document of docLen terms.
func (bm *BM25) Score(tf, docFreq, docLen int) float64 {
	if tf == 0 || docFreq == 0 || bm.DocCount == 0 {
		return 0
	}

	avgDL := bm.AvgDL
	if avgDL == 0 {
		avgDL = 1
	}

	tfFloat := float64(tf)
	lengthNorm := 1 - bm.B + bm.B*(float64(docLen)/avgDL)
	tfScore := (tfFloat * (bm.K1 + 1)) / (tfFloat + bm.K1*lengthNorm)

	return bm.IDF(docFreq) * tfScore
}
