//-------------------------------------------------------------------------
//
// pgEdge Search Server
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package corpus loads per-document term streams, counts term
// frequencies and builds the term dictionary used by the ranking models.
package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pgEdge/pgedge-search-server/internal/language"
)

// ErrEmptyCorpus is returned when a term-stream directory has no documents.
var ErrEmptyCorpus = errors.New("corpus has no documents")

// Document is one entry of a term-stream directory.
type Document struct {
	Ordinal int      // position in enumeration order
	Name    string   // file name, shared with the original document
	Path    string   // path of the term-stream file
	Terms   []string // filtered terms in file order
}

// Frequencies maps a term to its number of occurrences across a corpus.
type Frequencies map[string]int

// Corpus is the ordered set of documents loaded from one directory.
type Corpus struct {
	Dir         string
	Documents   []Document
	Frequencies Frequencies
}

// Load reads every regular file in dir as a single-line term stream,
// lower-cases it, drops the terms the profile excludes and counts the
// surviving terms. Files are enumerated in lexical order.
func Load(dir string, profile *language.Profile) (*Corpus, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus directory: %w", err)
	}

	c := &Corpus{
		Dir:         dir,
		Frequencies: make(Frequencies),
	}

	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}

		path := filepath.Join(dir, e.Name())
		line, err := readFirstLine(path)
		if err != nil {
			return nil, err
		}

		terms := profile.Filter(strings.Fields(strings.ToLower(line)))
		for _, t := range terms {
			c.Frequencies[t]++
		}

		c.Documents = append(c.Documents, Document{
			Ordinal: len(c.Documents),
			Name:    e.Name(),
			Path:    path,
			Terms:   terms,
		})
	}

	if len(c.Documents) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrEmptyCorpus)
	}

	return c, nil
}

// readFirstLine returns the first line of a file without its terminator.
func readFirstLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open term stream: %w", err)
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read term stream %s: %w", path, err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Names returns the document file names in ordinal order.
func (c *Corpus) Names() []string {
	names := make([]string, len(c.Documents))
	for i, d := range c.Documents {
		names[i] = d.Name
	}
	return names
}

// TermSequences returns each document's terms in ordinal order.
func (c *Corpus) TermSequences() [][]string {
	seqs := make([][]string, len(c.Documents))
	for i, d := range c.Documents {
		seqs[i] = d.Terms
	}
	return seqs
}
