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
	"errors"
	"sort"
)

// ErrDictionaryFrozen is returned when documents are added to a frozen
// dictionary.
var ErrDictionaryFrozen = errors.New("dictionary is frozen")

// BowEntry is one (term id, count) pair of a bag-of-words vector.
type BowEntry struct {
	ID    int
	Count int
}

// BagOfWords is a sparse term-count vector sorted by term id.
type BagOfWords []BowEntry

// Dictionary is a bijective mapping between terms and integer ids. Ids
// are assigned in first-seen order and never change. It also tracks the
// document frequency and collection frequency of every term.
type Dictionary struct {
	token2id map[string]int
	id2token []string
	dfs      []int // documents containing the term
	cfs      []int // total occurrences of the term
	numDocs  int
	numPos   int
	frozen   bool
}

// NewDictionary creates an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{
		token2id: make(map[string]int),
	}
}

// AddDocument registers the terms of one document, assigning ids to new
// terms.
func (d *Dictionary) AddDocument(terms []string) error {
	if d.frozen {
		return ErrDictionaryFrozen
	}

	seen := make(map[int]bool, len(terms))
	for _, t := range terms {
		id, ok := d.token2id[t]
		if !ok {
			id = len(d.id2token)
			d.token2id[t] = id
			d.id2token = append(d.id2token, t)
			d.dfs = append(d.dfs, 0)
			d.cfs = append(d.cfs, 0)
		}
		d.cfs[id]++
		if !seen[id] {
			d.dfs[id]++
			seen[id] = true
		}
	}
	d.numDocs++
	d.numPos += len(terms)

	return nil
}

// Freeze stops any further additions.
func (d *Dictionary) Freeze() { d.frozen = true }

// ID returns the id of a term.
func (d *Dictionary) ID(term string) (int, bool) {
	id, ok := d.token2id[term]
	return id, ok
}

// Token returns the term with the given id, or "" if out of range.
func (d *Dictionary) Token(id int) string {
	if id < 0 || id >= len(d.id2token) {
		return ""
	}
	return d.id2token[id]
}

// Len returns the number of distinct terms.
func (d *Dictionary) Len() int { return len(d.id2token) }

// NumDocs returns the number of documents added.
func (d *Dictionary) NumDocs() int { return d.numDocs }

// NumPositions returns the total number of term occurrences added.
func (d *Dictionary) NumPositions() int { return d.numPos }

// DocFreq returns the number of documents containing the term id.
func (d *Dictionary) DocFreq(id int) int {
	if id < 0 || id >= len(d.dfs) {
		return 0
	}
	return d.dfs[id]
}

// CollectionFreq returns the total occurrences of the term id.
func (d *Dictionary) CollectionFreq(id int) int {
	if id < 0 || id >= len(d.cfs) {
		return 0
	}
	return d.cfs[id]
}

// Doc2Bow converts terms to a bag-of-words vector. Unknown terms are
// ignored.
func (d *Dictionary) Doc2Bow(terms []string) BagOfWords {
	counts := make(map[int]int)
	for _, t := range terms {
		if id, ok := d.token2id[t]; ok {
			counts[id]++
		}
	}

	bow := make(BagOfWords, 0, len(counts))
	for id, c := range counts {
		bow = append(bow, BowEntry{ID: id, Count: c})
	}
	sort.Slice(bow, func(i, j int) bool { return bow[i].ID < bow[j].ID })

	return bow
}
