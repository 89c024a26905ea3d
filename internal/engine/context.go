//-------------------------------------------------------------------------
//
// pgEdge Search Server
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pgEdge/pgedge-search-server/internal/config"
	"github.com/pgEdge/pgedge-search-server/internal/corpus"
	"github.com/pgEdge/pgedge-search-server/internal/language"
	"github.com/pgEdge/pgedge-search-server/internal/morph"
	"github.com/pgEdge/pgedge-search-server/internal/query"
	"github.com/pgEdge/pgedge-search-server/internal/ranking"
	"github.com/pgEdge/pgedge-search-server/internal/snippet"
)

// Context is everything built for one language. It is constructed once
// and never modified, so it is safe for concurrent queries.
type Context struct {
	profile      *language.Profile
	corpus       *corpus.Corpus
	vocabulary   *corpus.Vocabulary
	documents    []corpus.Document
	ranker       ranking.Ranker
	normalizer   *query.Normalizer
	snippets     *snippet.Extractor
	documentsDir string
}

// languageSpec holds the inputs of one language's build.
type languageSpec struct {
	cfg        config.LanguageConfig
	profile    *language.Profile
	lemmatizer morph.Lemmatizer
}

// buildContext runs the corpus, vocabulary and model stages for one
// language.
func buildContext(
	ctx context.Context,
	cfg *config.Config,
	spec languageSpec,
	logger *slog.Logger,
) (*Context, error) {
	code := spec.cfg.Code
	lemmaDir := cfg.Corpus.ResolvePath(filepath.Join(cfg.Corpus.LemmasDir, code))

	logger.Info("loading term frequencies", "dir", lemmaDir)
	c, err := corpus.Load(lemmaDir, spec.profile)
	if err != nil {
		return nil, err
	}
	logger.Info("term frequencies loaded",
		"documents", len(c.Documents),
		"terms", len(c.Frequencies))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := corpus.VocabularyOptions{RemoveHapax: cfg.Model.HapaxRemoval()}
	if opts.RemoveHapax {
		opts.CleanDir = cfg.Corpus.ResolvePath(filepath.Join(cfg.Corpus.CleanDir, code))
	}
	vocab, err := corpus.BuildVocabulary(c, opts)
	if err != nil {
		return nil, err
	}
	logger.Info("dictionary built",
		"vocabulary", vocab.Dictionary.Len(),
		"remove_hapax", opts.RemoveHapax,
		"clean_dir", opts.CleanDir)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ranker, err := ranking.Build(cfg.Model.Name, ranking.Input{
		Dictionary: vocab.Dictionary,
		Documents:  vocab.Documents,
		Names:      c.Names(),
		NumTopics:  cfg.Model.NumTopics,
		Scheme:     cfg.Model.Scheme,
		Similarity: cfg.Model.Similarity,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build %s model: %w", cfg.Model.Name, err)
	}

	if topic, ok := ranker.(*ranking.Topic); ok {
		logger.Info("topic model built", "topics", topic.NumTopics())
		if cfg.Corpus.MatrixDir != "" {
			dir := cfg.Corpus.ResolvePath(cfg.Corpus.MatrixDir)
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create matrix directory: %w", err)
			}
			path := filepath.Join(dir, "corpus_"+code+".mm")
			if err := corpus.WriteMatrixMarketFile(path, vocab.Dictionary.Len(), topic.BagsOfWords()); err != nil {
				return nil, err
			}
			logger.Debug("document-term matrix written", "path", path)
		}
	} else {
		logger.Info("weighting model built",
			"scheme", cfg.Model.Scheme,
			"similarity", cfg.Model.Similarity)
	}

	rewrites := make([]query.Rewrite, len(cfg.Query.Rewrites))
	for i, rw := range cfg.Query.Rewrites {
		rewrites[i] = query.Rewrite{From: rw.From, To: rw.To}
	}

	normalizer := query.NewNormalizer(spec.profile, spec.lemmatizer, rewrites)
	extractor, err := snippet.NewExtractor(spec.lemmatizer, cfg.Snippet.Sentences,
		snippet.WithRewrite(normalizer.Rewrite))
	if err != nil {
		return nil, err
	}

	return &Context{
		profile:    spec.profile,
		corpus:     c,
		vocabulary: vocab,
		documents:  c.Documents,
		ranker:     ranker,
		normalizer: normalizer,
		snippets:   extractor,
		documentsDir: cfg.Corpus.ResolvePath(
			filepath.Join(cfg.Corpus.DocumentsDir, code, cfg.Corpus.ArticleSubdir)),
	}, nil
}

// Name returns the language name.
func (c *Context) Name() string { return c.profile.Name() }

// Code returns the language code.
func (c *Context) Code() string { return c.profile.Code() }

// Ranker returns the language's ranking model.
func (c *Context) Ranker() ranking.Ranker { return c.ranker }

// Dictionary returns the language's term dictionary.
func (c *Context) Dictionary() *corpus.Dictionary { return c.vocabulary.Dictionary }

// Frequencies returns the corpus term frequencies.
func (c *Context) Frequencies() corpus.Frequencies { return c.corpus.Frequencies }

// NumDocuments returns the number of ranked documents.
func (c *Context) NumDocuments() int { return len(c.documents) }

// DocumentName returns the file name of the document at ordinal i.
func (c *Context) DocumentName(i int) string { return c.documents[i].Name }

// DocumentPath returns the original document file of ordinal i.
func (c *Context) DocumentPath(i int) string {
	return filepath.Join(c.documentsDir, c.documents[i].Name)
}

// Info summarizes the context.
func (c *Context) Info() LanguageInfo {
	info := LanguageInfo{
		Name:       c.Name(),
		Code:       c.Code(),
		Model:      c.ranker.Name(),
		Documents:  len(c.documents),
		Vocabulary: c.vocabulary.Dictionary.Len(),
		Terms:      len(c.corpus.Frequencies),
	}
	if topic, ok := c.ranker.(*ranking.Topic); ok {
		info.Topics = topic.NumTopics()
	}
	return info
}
