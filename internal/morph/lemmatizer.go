//-------------------------------------------------------------------------
//
// pgEdge Search Server
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package morph provides lemmatization through an external morphological
// analysis service, plus an offline stemming analyzer.
package morph

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrAnalyzerUnavailable is returned when the analysis service cannot
	// be reached or the exchange fails. It is recoverable.
	ErrAnalyzerUnavailable = errors.New("morphological analyzer unavailable")

	// ErrEmptyAnalysis is returned when the service answers a non-empty
	// request with no usable records. It is recoverable.
	ErrEmptyAnalysis = errors.New("morphological analysis returned no lemmas")

	// ErrUnknownProvider is returned for an unsupported analyzer provider.
	ErrUnknownProvider = errors.New("unknown analyzer provider")
)

// LiteralTag is the grammatical tag the analyzer gives to dates and other
// literal tokens, whose surface form is kept instead of the lemma.
const LiteralTag = "W"

// Lemmatizer turns free text into a space-separated sequence of lemmas.
type Lemmatizer interface {
	Lemmatize(ctx context.Context, text string) (string, error)
}

// IsRecoverable reports whether err allows a caller to retry or fall back
// to unlemmatized text.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrAnalyzerUnavailable) || errors.Is(err, ErrEmptyAnalysis)
}

// ParseAnalysis extracts lemmas from analyzer output. Each usable line
// has four fields: surface form, lemma, tag and probability. Literal
// tokens keep their surface form; lines of any other shape are ignored.
func ParseAnalysis(output string) string {
	var forms []string
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) != 4 {
			continue
		}
		if fields[2] == LiteralTag {
			forms = append(forms, fields[0])
		} else {
			forms = append(forms, fields[1])
		}
	}
	return strings.Join(forms, " ")
}
