//-------------------------------------------------------------------------
//
// pgEdge Search Server
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package language holds the per-language profiles (stopwords and
// punctuation) and the stopword-overlap language detector.
package language

import (
	"strings"
)

// asciiPunctuation matches the ASCII punctuation class.
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// extraPunctuation covers typographic symbols found in the corpus.
const extraPunctuation = "·€£$“”«»¿¡…"

// quoteTokens are the two-character quote forms emitted by tokenizers.
var quoteTokens = []string{"``", "''"}

// Options controls which term classes a profile filters out.
type Options struct {
	RemoveStopwords   bool
	RemovePunctuation bool
}

// DefaultOptions filters both stopwords and punctuation.
func DefaultOptions() Options {
	return Options{RemoveStopwords: true, RemovePunctuation: true}
}

// Profile describes one supported language. It is immutable once built.
type Profile struct {
	name        string
	code        string
	stopwords   map[string]struct{} // always populated, used for detection
	punctuation map[string]struct{}
	opts        Options
}

// NewProfile builds the profile for a language with a bundled stopword list.
func NewProfile(name, code string, opts Options) (*Profile, error) {
	stop, err := Stopwords(name)
	if err != nil {
		return nil, err
	}
	return NewProfileWithStopwords(name, code, stop, opts), nil
}

// NewProfileWithStopwords builds a profile from an explicit stopword set.
func NewProfileWithStopwords(name, code string, stopwords map[string]struct{}, opts Options) *Profile {
	stop := make(map[string]struct{}, len(stopwords))
	for w := range stopwords {
		stop[strings.ToLower(w)] = struct{}{}
	}

	return &Profile{
		name:        strings.ToLower(name),
		code:        code,
		stopwords:   stop,
		punctuation: punctuationSet(),
		opts:        opts,
	}
}

func punctuationSet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, r := range asciiPunctuation + extraPunctuation {
		set[string(r)] = struct{}{}
	}
	for _, q := range quoteTokens {
		set[q] = struct{}{}
	}
	return set
}

// Name returns the language name, e.g. "english".
func (p *Profile) Name() string { return p.name }

// Code returns the ISO code used in corpus directory names, e.g. "en".
func (p *Profile) Code() string { return p.code }

// IsStopword reports whether term is in the language's stopword list,
// regardless of whether stopword removal is enabled.
func (p *Profile) IsStopword(term string) bool {
	_, ok := p.stopwords[term]
	return ok
}

// IsPunctuation reports whether term is a punctuation symbol.
func (p *Profile) IsPunctuation(term string) bool {
	_, ok := p.punctuation[term]
	return ok
}

// Excludes reports whether term is dropped from indexing and queries.
func (p *Profile) Excludes(term string) bool {
	if term == "" {
		return true
	}
	if p.opts.RemoveStopwords && p.IsStopword(term) {
		return true
	}
	if p.opts.RemovePunctuation && p.IsPunctuation(term) {
		return true
	}
	return false
}

// Filter returns the terms that are not excluded, preserving order.
func (p *Profile) Filter(terms []string) []string {
	kept := make([]string, 0, len(terms))
	for _, t := range terms {
		if !p.Excludes(t) {
			kept = append(kept, t)
		}
	}
	return kept
}

// StopwordOverlap counts the distinct tokens that are stopwords of this
// language.
func (p *Profile) StopwordOverlap(tokens map[string]struct{}) int {
	n := 0
	for t := range tokens {
		if p.IsStopword(t) {
			n++
		}
	}
	return n
}
