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
	"log/slog"
	"strings"

	"github.com/pgEdge/pgedge-search-server/internal/language"
)

// fallback degrades to unlemmatized text when the wrapped analyzer fails
// with a recoverable error.
type fallback struct {
	next   Lemmatizer
	logger *slog.Logger
}

// WithFallback wraps a lemmatizer so that recoverable failures yield the
// lower-cased tokens of the input instead of an error.
func WithFallback(next Lemmatizer, logger *slog.Logger) Lemmatizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &fallback{next: next, logger: logger}
}

func (f *fallback) Lemmatize(ctx context.Context, text string) (string, error) {
	lemmas, err := f.next.Lemmatize(ctx, text)
	if err == nil {
		return lemmas, nil
	}
	if !IsRecoverable(err) {
		return "", err
	}

	f.logger.Warn("lemmatization failed, using unlemmatized text", "error", err)
	return Unlemmatized(text), nil
}

// Unlemmatized returns the lower-cased word/punctuation tokens of text.
func Unlemmatized(text string) string {
	return strings.Join(language.LowerTokens(language.WordPunct(text)), " ")
}
