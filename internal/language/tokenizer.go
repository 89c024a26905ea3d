//-------------------------------------------------------------------------
//
// pgEdge Search Server
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package language

import (
	"strings"
	"unicode"
)

// WordPunct splits text into runs of word characters and runs of
// punctuation, dropping whitespace. "Don't stop!" yields
// ["Don", "'", "t", "stop", "!"].
func WordPunct(text string) []string {
	var tokens []string
	var current strings.Builder
	inWord := false

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush()
		case isWordRune(r):
			if !inWord {
				flush()
			}
			inWord = true
			current.WriteRune(r)
		default:
			if inWord {
				flush()
			}
			inWord = false
			current.WriteRune(r)
		}
	}
	flush()

	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_'
}

// LowerTokens lower-cases every token.
func LowerTokens(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = strings.ToLower(t)
	}
	return out
}
