//-------------------------------------------------------------------------
//
// pgEdge Search Server
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// WriteMatrixMarket serializes bag-of-words documents as a Matrix Market
// coordinate matrix: one row per document, one column per term id, with
// 1-based indices.
func WriteMatrixMarket(w io.Writer, numTerms int, docs []BagOfWords) error {
	nnz := 0
	for _, bow := range docs {
		nnz += len(bow)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "%%MatrixMarket matrix coordinate real general")
	fmt.Fprintf(bw, "%d %d %d\n", len(docs), numTerms, nnz)
	for i, bow := range docs {
		for _, e := range bow {
			fmt.Fprintf(bw, "%d %d %d\n", i+1, e.ID+1, e.Count)
		}
	}

	return bw.Flush()
}

// WriteMatrixMarketFile writes the matrix to path, replacing any
// existing file.
func WriteMatrixMarketFile(path string, numTerms int, docs []BagOfWords) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create corpus matrix: %w", err)
	}

	if err := WriteMatrixMarket(f, numTerms, docs); err != nil {
		f.Close()
		return fmt.Errorf("failed to write corpus matrix: %w", err)
	}
	return f.Close()
}
