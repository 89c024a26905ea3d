//-------------------------------------------------------------------------
//
// pgEdge Search Server
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package snippet builds result excerpts from the sentences of a
// document that best match a query.
package snippet

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"

	"github.com/pgEdge/pgedge-search-server/internal/morph"
)

// BestSentences is the number of sentences selected for every snippet,
// whatever count the extractor was configured with.
const BestSentences = 3

// GapMarker joins selected sentences that are not adjacent in the source.
const GapMarker = " [...] "

// Extractor builds snippets. It is safe for concurrent use.
type Extractor struct {
	lemmatizer morph.Lemmatizer
	rewrite    func(string) string
	configured int

	mu        sync.Mutex
	tokenizer *sentences.DefaultSentenceTokenizer
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRewrite applies fn to each sentence's lemmas before matching, so
// sentences see the same compound rewrites as the query terms.
func WithRewrite(fn func(string) string) Option {
	return func(e *Extractor) {
		e.rewrite = fn
	}
}

// NewExtractor creates an extractor that lemmatizes sentences with l.
// configured is the requested sentence count; it is recorded but
// selection always uses BestSentences.
func NewExtractor(l morph.Lemmatizer, configured int, opts ...Option) (*Extractor, error) {
	tok, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load sentence tokenizer: %w", err)
	}
	e := &Extractor{
		lemmatizer: l,
		configured: configured,
		tokenizer:  tok,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Configured returns the configured sentence count.
func (e *Extractor) Configured() int { return e.configured }

// Extract reads the document at path and builds its snippet for the
// normalized query terms.
func (e *Extractor) Extract(ctx context.Context, path string, terms []string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	return e.FromText(ctx, string(data), terms)
}

// FromText builds the snippet of a document's content.
func (e *Extractor) FromText(ctx context.Context, content string, terms []string) (string, error) {
	sents := e.Split(Body(content))

	matches := make([][]int, len(sents))
	for i, s := range sents {
		lemmas, err := e.lemmatizer.Lemmatize(ctx, s)
		if err != nil {
			return "", fmt.Errorf("failed to lemmatize sentence %d: %w", i, err)
		}
		if e.rewrite != nil {
			lemmas = e.rewrite(lemmas)
		}
		matches[i] = Positions(strings.Fields(strings.ToLower(lemmas)), terms)
	}

	return Stitch(sents, Best(matches, BestSentences)), nil
}

// Split segments text into trimmed, non-empty sentences.
func (e *Extractor) Split(text string) []string {
	e.mu.Lock()
	tokens := e.tokenizer.Tokenize(text)
	e.mu.Unlock()

	out := make([]string, 0, len(tokens))
	for _, s := range tokens {
		if t := strings.TrimSpace(s.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Body returns the text the snippet is taken from: the third line of a
// three-line document (title, intro, body), else every line joined by a
// space.
func Body(content string) string {
	lines := strings.SplitAfter(content, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	if len(lines) == 3 {
		return lines[2]
	}
	return strings.Join(lines, " ")
}

// Positions returns the index of every sentence token equal to a query
// term. A token matching several query terms is listed once per match.
func Positions(tokens, terms []string) []int {
	var pos []int
	for i, tok := range tokens {
		for _, q := range terms {
			if tok == q {
				pos = append(pos, i)
			}
		}
	}
	return pos
}

// Best returns the indexes of the n sentences with the most matches.
// Sentences with equal counts keep document order.
func Best(matches [][]int, n int) []int {
	idx := make([]int, len(matches))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return len(matches[idx[a]]) > len(matches[idx[b]])
	})
	if len(idx) > n {
		idx = idx[:n]
	}
	return idx
}

// Stitch joins the selected sentences in document order. Adjacent
// sentences are separated by a space, others by GapMarker, and the
// result ends with an ellipsis.
func Stitch(sents []string, best []int) string {
	if len(best) == 0 {
		return ""
	}

	order := append([]int(nil), best...)
	sort.Ints(order)

	var b strings.Builder
	prev := -1
	for i, idx := range order {
		switch {
		case i == 0:
		case idx == prev+1:
			b.WriteByte(' ')
		default:
			b.WriteString(GapMarker)
		}
		b.WriteString(sents[idx])
		prev = idx
	}

	if strings.HasSuffix(b.String(), ".") {
		b.WriteString("..")
	} else {
		b.WriteString("...")
	}
	return b.String()
}
