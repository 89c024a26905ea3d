//-------------------------------------------------------------------------
//
// pgEdge Search Server
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package morph

import (
	"context"
	"fmt"
	"strings"

	"github.com/kljensen/snowball"

	"github.com/pgEdge/pgedge-search-server/internal/language"
)

// Snowball is an in-process analyzer that uses Snowball stems in place of
// lemmas. It suits corpora whose term streams were produced by the same
// stemmer, and deployments without an analysis service.
type Snowball struct {
	language string
}

// NewSnowball creates a stemming analyzer for a Snowball language name
// such as "english" or "spanish".
func NewSnowball(lang string) (*Snowball, error) {
	lang = strings.ToLower(lang)
	if _, err := snowball.Stem("test", lang, true); err != nil {
		return nil, fmt.Errorf("snowball: %w", err)
	}
	return &Snowball{language: lang}, nil
}

// Lemmatize lower-cases and stems every word token. Punctuation tokens
// pass through unchanged.
func (s *Snowball) Lemmatize(_ context.Context, text string) (string, error) {
	tokens := language.LowerTokens(language.WordPunct(text))
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		stem, err := snowball.Stem(tok, s.language, true)
		if err != nil || stem == "" {
			stem = tok
		}
		out = append(out, stem)
	}
	return strings.Join(out, " "), nil
}
