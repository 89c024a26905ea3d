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
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// VocabularyOptions controls dictionary construction.
type VocabularyOptions struct {
	// RemoveHapax drops terms that occur exactly once in the corpus.
	RemoveHapax bool

	// CleanDir receives the hapax-filtered term streams, one file per
	// document. Required when RemoveHapax is set.
	CleanDir string
}

// Vocabulary is the frozen dictionary of a corpus together with the
// per-document term sequences the models are built from.
type Vocabulary struct {
	Dictionary *Dictionary

	// Documents holds each document's surviving terms in ordinal order.
	Documents [][]string

	// Dir is the clean directory when hapax removal wrote one, else the
	// corpus directory.
	Dir string
}

// BuildVocabulary builds the dictionary for a corpus. With hapax removal
// each document keeps only terms whose corpus-wide frequency exceeds one,
// and the filtered streams are also written to opts.CleanDir. The clean
// directory is only written, never read back. The corpus frequencies are
// left untouched.
func BuildVocabulary(c *Corpus, opts VocabularyOptions) (*Vocabulary, error) {
	dct := NewDictionary()

	if !opts.RemoveHapax {
		for _, doc := range c.Documents {
			if err := dct.AddDocument(doc.Terms); err != nil {
				return nil, err
			}
		}
		dct.Freeze()
		return &Vocabulary{Dictionary: dct, Documents: c.TermSequences(), Dir: c.Dir}, nil
	}

	if opts.CleanDir == "" {
		return nil, fmt.Errorf("hapax removal requires a clean directory")
	}
	if err := os.MkdirAll(opts.CleanDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create clean directory: %w", err)
	}

	docs := make([][]string, len(c.Documents))
	for i, doc := range c.Documents {
		kept := RemoveHapax(doc.Terms, c.Frequencies)
		docs[i] = kept
		if err := dct.AddDocument(kept); err != nil {
			return nil, err
		}

		out := filepath.Join(opts.CleanDir, doc.Name)
		if err := os.WriteFile(out, []byte(strings.Join(kept, " ")), 0644); err != nil {
			return nil, fmt.Errorf("failed to write clean text %s: %w", out, err)
		}
	}
	dct.Freeze()

	return &Vocabulary{Dictionary: dct, Documents: docs, Dir: opts.CleanDir}, nil
}

// RemoveHapax returns the terms whose frequency exceeds one.
func RemoveHapax(terms []string, freq Frequencies) []string {
	kept := make([]string, 0, len(terms))
	for _, t := range terms {
		if freq[t] > 1 {
			kept = append(kept, t)
		}
	}
	return kept
}
