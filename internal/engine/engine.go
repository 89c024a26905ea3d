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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/pgEdge/pgedge-search-server/internal/catalog"
	"github.com/pgEdge/pgedge-search-server/internal/config"
	"github.com/pgEdge/pgedge-search-server/internal/language"
	"github.com/pgEdge/pgedge-search-server/internal/morph"
	"github.com/pgEdge/pgedge-search-server/internal/ranking"
)

// Engine holds one immutable Context per language and executes queries.
type Engine struct {
	contexts  map[string]*Context
	order     []string
	detector  *language.Detector
	resolver  *catalog.Resolver
	catalog   catalog.Store
	model     string
	threshold float64
	logQuery  bool
	logger    *slog.Logger
}

// Options contains the settings for creating an Engine.
type Options struct {
	Config *config.Config
	Logger *slog.Logger

	// Lemmatizers replaces the configured analyzer of the named
	// languages.
	Lemmatizers map[string]morph.Lemmatizer

	// Catalog supplies URL overrides and records queries. Nil means no
	// catalog.
	Catalog catalog.Store

	// PoolSize bounds the number of languages built concurrently.
	PoolSize int
}

// New builds the model context of every configured language. Any failure
// aborts the whole build.
func New(ctx context.Context, opts Options) (*Engine, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("engine requires a configuration")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Model.Name != ranking.ModelTopic && cfg.Model.Name != ranking.ModelWeighting {
		return nil, fmt.Errorf("%w: got %q", ranking.ErrUnknownModel, cfg.Model.Name)
	}

	store := opts.Catalog
	if store == nil {
		store = catalog.Nop{}
	}

	resolver := catalog.NewResolver(cfg.URLs.Base, cfg.URLs.Overrides)
	stored, err := store.URLOverrides(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load URL overrides: %w", err)
	}
	resolver = resolver.With(stored)

	specs, err := languageSpecs(cfg, opts.Lemmatizers, logger)
	if err != nil {
		return nil, err
	}

	contexts, err := buildAll(ctx, cfg, specs, opts.PoolSize, logger)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		contexts:  make(map[string]*Context, len(specs)),
		catalog:   store,
		resolver:  resolver,
		model:     cfg.Model.Name,
		threshold: cfg.Model.Threshold,
		logQuery:  cfg.Catalog.LogQueries,
		logger:    logger,
	}

	profiles := make([]*language.Profile, len(specs))
	for i, spec := range specs {
		name := spec.profile.Name()
		e.contexts[name] = contexts[i]
		e.order = append(e.order, name)
		profiles[i] = spec.profile
	}
	e.detector = language.NewDetector(profiles, cfg.DefaultLanguage)

	logger.Info("engine ready",
		"model", e.model,
		"languages", strings.Join(e.order, ","),
		"url_overrides", resolver.Len())

	return e, nil
}

// languageSpecs creates each language's profile and analyzer.
func languageSpecs(
	cfg *config.Config,
	lemmatizers map[string]morph.Lemmatizer,
	logger *slog.Logger,
) ([]languageSpec, error) {
	popts := language.Options{
		RemoveStopwords:   cfg.Model.StopwordRemoval(),
		RemovePunctuation: cfg.Model.PunctuationRemoval(),
	}

	specs := make([]languageSpec, 0, len(cfg.Languages))
	for _, lc := range cfg.Languages {
		profile, err := language.NewProfile(lc.Name, lc.Code, popts)
		if err != nil {
			return nil, fmt.Errorf("language %s: %w", lc.Name, err)
		}

		l, ok := lemmatizers[lc.Name]
		if !ok {
			l, err = morph.New(morph.Options{
				Provider:   lc.Analyzer.Provider,
				Language:   lc.Name,
				Address:    lc.Analyzer.Address,
				Timeout:    lc.Analyzer.Timeout,
				MaxRetries: lc.Analyzer.MaxRetries,
				RetryDelay: lc.Analyzer.RetryDelay,
				Fallback:   cfg.Query.FallbackUnlemmatized,
				Logger:     logger.With("language", lc.Name),
			})
			if err != nil {
				return nil, fmt.Errorf("language %s: failed to create analyzer: %w", lc.Name, err)
			}
		} else if cfg.Query.FallbackUnlemmatized {
			l = morph.WithFallback(l, logger.With("language", lc.Name))
		}

		specs = append(specs, languageSpec{cfg: lc, profile: profile, lemmatizer: l})
	}
	return specs, nil
}

// buildAll builds every language on a bounded worker pool.
func buildAll(
	ctx context.Context,
	cfg *config.Config,
	specs []languageSpec,
	poolSize int,
	logger *slog.Logger,
) ([]*Context, error) {
	if poolSize < 1 {
		poolSize = runtime.NumCPU()
	}
	if poolSize > len(specs) {
		poolSize = len(specs)
	}
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create build pool: %w", err)
	}
	defer pool.Release()

	contexts := make([]*Context, len(specs))
	errs := make([]error, len(specs))

	var wg sync.WaitGroup
	for i, spec := range specs {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			langLogger := logger.With("language", spec.cfg.Name)
			start := time.Now()
			c, err := buildContext(ctx, cfg, spec, langLogger)
			if err != nil {
				errs[i] = fmt.Errorf("language %s: %w", spec.cfg.Name, err)
				return
			}
			contexts[i] = c
			langLogger.Info("language model loaded", "duration", time.Since(start))
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = fmt.Errorf("language %s: %w", spec.cfg.Name, submitErr)
		}
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return contexts, nil
}

// Languages returns the language names in configuration order.
func (e *Engine) Languages() []string {
	return append([]string(nil), e.order...)
}

// Context returns the model context of a language.
func (e *Engine) Context(name string) (*Context, error) {
	c, ok := e.contexts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, name)
	}
	return c, nil
}

// Model returns the active model name.
func (e *Engine) Model() string { return e.model }

// Info summarizes every language's model.
func (e *Engine) Info() []LanguageInfo {
	infos := make([]LanguageInfo, 0, len(e.order))
	for _, name := range e.order {
		infos = append(infos, e.contexts[name].Info())
	}
	return infos
}

// Detect returns the detected language of text and the stopword overlap
// of every language.
func (e *Engine) Detect(text string) (string, map[string]int) {
	return e.detector.Detect(text), e.detector.Scores(text)
}

// Threshold returns the effective score threshold of the active model.
func (e *Engine) Threshold() float64 {
	for _, c := range e.contexts {
		return c.ranker.Threshold(e.threshold)
	}
	return e.threshold
}

// Search detects the query language, normalizes the query and ranks every
// document of that language.
func (e *Engine) Search(ctx context.Context, raw string) (*Query, []ranking.Hit, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil, ErrEmptyQuery
	}

	lang := e.detector.Detect(raw)
	c, err := e.Context(lang)
	if err != nil {
		return nil, nil, err
	}

	terms, err := c.normalizer.Normalize(ctx, raw)
	if err != nil {
		return nil, nil, err
	}

	q := &Query{Raw: raw, Language: lang, Terms: terms}
	e.logger.Debug("query normalized", "language", lang, "terms", terms)

	return q, c.ranker.Rank(terms), nil
}

// Select applies the result filter: hits scoring strictly above the
// model's threshold are accepted in rank order until MaxResults have been
// accepted.
func (e *Engine) Select(q *Query, hits []ranking.Hit) ([]Candidate, error) {
	if q == nil {
		return nil, ErrNoQuery
	}
	c, err := e.Context(q.Language)
	if err != nil {
		return nil, err
	}

	threshold := c.ranker.Threshold(e.threshold)
	var out []Candidate
	for _, h := range hits {
		if len(out) == MaxResults {
			break
		}
		if h.Score <= threshold {
			continue
		}
		name := c.DocumentName(h.Doc)
		out = append(out, Candidate{
			Doc:   h.Doc,
			Name:  name,
			Path:  c.DocumentPath(h.Doc),
			URL:   e.resolver.URL(name),
			Score: h.Score,
		})
	}
	return out, nil
}

// Results formats the accepted hits of a query as records. Unreadable
// documents abort the whole result set.
func (e *Engine) Results(ctx context.Context, q *Query, hits []ranking.Hit) ([]Record, error) {
	candidates, err := e.Select(q, hits)
	if err != nil {
		return nil, err
	}
	c, err := e.Context(q.Language)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(candidates))
	for _, cand := range candidates {
		data, err := os.ReadFile(cand.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read document %s: %w", cand.Name, err)
		}
		content := string(data)

		snip, err := c.snippets.FromText(ctx, content, q.Terms)
		if err != nil {
			return nil, fmt.Errorf("failed to build snippet for %s: %w", cand.Name, err)
		}

		records = append(records, Record{
			URL:     cand.URL,
			Title:   title(content),
			Snippet: snip,
		})
	}
	return records, nil
}

// title returns the trimmed first line of a document.
func title(content string) string {
	line, _, _ := strings.Cut(content, "\n")
	return strings.TrimSpace(line)
}

// Execute runs a query end to end and records it in the catalog.
func (e *Engine) Execute(ctx context.Context, raw string) (*Response, error) {
	start := time.Now()

	q, hits, err := e.Search(ctx, raw)
	if err != nil {
		return nil, err
	}

	records, err := e.Results(ctx, q, hits)
	if err != nil {
		return nil, err
	}

	e.Record(ctx, q, len(records), start)

	return &Response{
		Language: q.Language,
		Terms:    q.Terms,
		Results:  records,
	}, nil
}

// Record logs an executed query and, when enabled, stores it in the
// catalog. Catalog failures are only logged.
func (e *Engine) Record(ctx context.Context, q *Query, results int, start time.Time) {
	elapsed := time.Since(start)
	e.logger.Info("query executed",
		"language", q.Language,
		"terms", len(q.Terms),
		"results", results,
		"duration", elapsed)

	if !e.logQuery {
		return
	}
	if err := e.catalog.LogQuery(ctx, catalog.QueryLogEntry{
		Query:    q.Raw,
		Language: q.Language,
		Terms:    q.Terms,
		Results:  results,
		Duration: elapsed,
		At:       start,
	}); err != nil {
		e.logger.Warn("failed to log query", "error", err)
	}
}

// Close releases the catalog.
func (e *Engine) Close() error {
	if e.catalog != nil {
		return e.catalog.Close()
	}
	return nil
}
