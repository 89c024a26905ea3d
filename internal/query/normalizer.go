//-------------------------------------------------------------------------
//
// pgEdge Search Server
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package query turns raw query text into the term sequence matched
// against a language's models.
package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/pgEdge/pgedge-search-server/internal/language"
	"github.com/pgEdge/pgedge-search-server/internal/morph"
)

// Rewrite is a literal substring replacement applied to lemmatized text.
type Rewrite struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

// DefaultRewrites canonicalizes compound spellings of domain terms. Order
// matters: later rewrites see the output of earlier ones.
func DefaultRewrites() []Rewrite {
	return []Rewrite{
		{From: "crowd funding", To: "crowd_funding"},
		{From: "crowdfunding", To: "crowd_funding"},
		{From: "crowd fund", To: "crowd_fund"},
		{From: "crowdfund", To: "crowd_fund"},
		{From: "setup", To: "set up"},
		{From: "set-up", To: "set up"},
	}
}

// quoteReplacer maps the right single quotation mark to an apostrophe.
var quoteReplacer = strings.NewReplacer("’", "'")

// Normalizer applies the fixed normalization pipeline for one language.
// It holds no per-query state and is safe for concurrent use.
type Normalizer struct {
	profile    *language.Profile
	lemmatizer morph.Lemmatizer
	rewrites   []Rewrite
}

// NewNormalizer creates a normalizer. A nil rewrites slice selects
// DefaultRewrites; an empty non-nil slice disables rewriting.
func NewNormalizer(profile *language.Profile, lemmatizer morph.Lemmatizer, rewrites []Rewrite) *Normalizer {
	if rewrites == nil {
		rewrites = DefaultRewrites()
	}
	return &Normalizer{
		profile:    profile,
		lemmatizer: lemmatizer,
		rewrites:   rewrites,
	}
}

// Profile returns the language profile used for filtering.
func (n *Normalizer) Profile() *language.Profile { return n.profile }

// Lemmatizer returns the analyzer used for lemmatization.
func (n *Normalizer) Lemmatizer() morph.Lemmatizer { return n.lemmatizer }

// Normalize fixes quotes, lemmatizes, applies the rewrite table, then
// splits on whitespace and drops stopwords and punctuation.
func (n *Normalizer) Normalize(ctx context.Context, text string) ([]string, error) {
	text = quoteReplacer.Replace(text)

	lemmas, err := n.lemmatizer.Lemmatize(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to lemmatize query: %w", err)
	}

	return n.profile.Filter(strings.Fields(strings.ToLower(n.Rewrite(lemmas)))), nil
}

// Rewrite applies the rewrite table in order.
func (n *Normalizer) Rewrite(text string) string {
	for _, rw := range n.rewrites {
		if rw.From == "" {
			continue
		}
		text = strings.ReplaceAll(text, rw.From, rw.To)
	}
	return text
}
