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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-search-server/internal/catalog"
	"github.com/pgEdge/pgedge-search-server/internal/config"
	"github.com/pgEdge/pgedge-search-server/internal/morph"
	"github.com/pgEdge/pgedge-search-server/internal/ranking"
)

// plainLemmatizer stands in for the analyzer service.
type plainLemmatizer struct{}

func (plainLemmatizer) Lemmatize(_ context.Context, text string) (string, error) {
	return morph.Unlemmatized(text), nil
}

type testDoc struct {
	name   string
	lemmas string
	text   string
}

var englishDocs = []testDoc{
	{"a.txt", "market growth sales", "Growing Sales\nIntro\nThe market is growing. Sales are up."},
	{"b.txt", "equity investor equity funding", "Equity Basics\nIntro\nEquity matters to founders. The weather is nice. An investor wants equity."},
	{"c.txt", "hiring team culture", "Hiring\nIntro\nHire for culture."},
	{"d.txt", "investor equity pitch", "Pitching\nIntro\nPitch the investor. Offer equity."},
	{"e.txt", "office lease", "Office Space\nIntro\nSign a lease."},
}

var spanishDocs = []testDoc{
	{"m.txt", "mercado empresa", "Mercado\nIntro\nEl mercado crece."},
	{"n.txt", "capital inversor empresa", "Capital\nIntro\nEl inversor aporta capital."},
}

func writeLanguage(t *testing.T, root, code string, docs []testDoc) {
	t.Helper()
	lemmas := filepath.Join(root, "data", "lemmas", code)
	articles := filepath.Join(root, "data", "documents", code, "article")
	require.NoError(t, os.MkdirAll(lemmas, 0755))
	require.NoError(t, os.MkdirAll(articles, 0755))
	for _, d := range docs {
		require.NoError(t, os.WriteFile(filepath.Join(lemmas, d.name), []byte(d.lemmas), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(articles, d.name), []byte(d.text), 0644))
	}
}

func testConfig(t *testing.T, model string) *config.Config {
	t.Helper()
	root := t.TempDir()
	writeLanguage(t, root, "en", englishDocs)
	writeLanguage(t, root, "es", spanishDocs)

	off := false
	cfg := config.DefaultConfig()
	cfg.Corpus.ProjectDir = root
	cfg.Model.Name = model
	cfg.Model.RemoveHapax = &off
	return cfg
}

func newEngine(t *testing.T, cfg *config.Config, store catalog.Store) *Engine {
	t.Helper()
	e, err := New(context.Background(), Options{
		Config: cfg,
		Lemmatizers: map[string]morph.Lemmatizer{
			"english": plainLemmatizer{},
			"spanish": plainLemmatizer{},
		},
		Catalog: store,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestExecuteWeighting(t *testing.T) {
	e := newEngine(t, testConfig(t, ranking.ModelWeighting), nil)
	ctx := context.Background()

	q, hits, err := e.Search(ctx, "Equity investor")
	require.NoError(t, err)
	assert.Equal(t, "english", q.Language)
	assert.Equal(t, []string{"equity", "investor"}, q.Terms)
	assert.Len(t, hits, 5)

	positive := 0
	for _, h := range hits {
		if h.Score > 0 {
			positive++
		}
	}
	assert.Equal(t, 2, positive)

	resp, err := e.Execute(ctx, "Equity investor")
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)

	first := resp.Results[0]
	assert.Equal(t, config.DefaultURLBase+"b", first.URL)
	assert.Equal(t, "Equity Basics", first.Title)
	assert.Contains(t, first.Snippet, "An investor wants equity")
	assert.True(t, strings.HasSuffix(first.Snippet, ".."))

	assert.Equal(t, config.DefaultURLBase+"d", resp.Results[1].URL)
	assert.Equal(t, "Pitching", resp.Results[1].Title)
}

func TestExecuteWeightingBM25(t *testing.T) {
	cfg := testConfig(t, ranking.ModelWeighting)
	cfg.Model.Scheme = "bm25"
	e := newEngine(t, cfg, nil)

	resp, err := e.Execute(context.Background(), "equity investor")
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, config.DefaultURLBase+"b", resp.Results[0].URL)
	assert.Equal(t, config.DefaultURLBase+"d", resp.Results[1].URL)
	assert.Greater(t, resp.Results[0].Score, resp.Results[1].Score)
}

func TestExecuteTopic(t *testing.T) {
	cfg := testConfig(t, ranking.ModelTopic)
	cfg.Corpus.MatrixDir = "data/matrix"
	e := newEngine(t, cfg, nil)

	resp, err := e.Execute(context.Background(), "equity investor")
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, config.DefaultURLBase+"b", resp.Results[0].URL)
	assert.Equal(t, config.DefaultURLBase+"d", resp.Results[1].URL)

	data, err := os.ReadFile(filepath.Join(cfg.Corpus.ProjectDir, "data", "matrix", "corpus_en.mm"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%%MatrixMarket"))

	info := e.Info()
	require.Len(t, info, 2)
	assert.Equal(t, "english", info[0].Name)
	assert.Equal(t, ranking.ModelTopic, info[0].Model)
	assert.Equal(t, 5, info[0].Documents)
	assert.Positive(t, info[0].Topics)
}

func TestSelectThreshold(t *testing.T) {
	hits := []ranking.Hit{{Doc: 0, Score: 0.9}, {Doc: 1, Score: 0.3}, {Doc: 2, Score: 0.1}, {Doc: 3, Score: 0}}
	q := &Query{Raw: "x", Language: "english"}

	topic := newEngine(t, testConfig(t, ranking.ModelTopic), nil)
	got, err := topic.Select(q, hits)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a.txt", got[0].Name)
	assert.Equal(t, 0.3, topic.Threshold())

	// The weighting model ignores the configured threshold.
	weighting := newEngine(t, testConfig(t, ranking.ModelWeighting), nil)
	got, err = weighting.Select(q, hits)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, 0.0, weighting.Threshold())
}

func TestResultsCapped(t *testing.T) {
	var docs []testDoc
	for i := 0; i < 14; i++ {
		docs = append(docs, testDoc{
			name:   fmt.Sprintf("doc%02d.txt", i),
			lemmas: fmt.Sprintf("equity filler%d", i),
			text:   fmt.Sprintf("Title %d\nIntro\nEquity story %d.", i, i),
		})
	}
	cfg := testConfig(t, ranking.ModelWeighting)
	require.NoError(t, os.RemoveAll(filepath.Join(cfg.Corpus.ProjectDir, "data")))
	writeLanguage(t, cfg.Corpus.ProjectDir, "en", docs)
	writeLanguage(t, cfg.Corpus.ProjectDir, "es", spanishDocs)

	e := newEngine(t, cfg, nil)
	resp, err := e.Execute(context.Background(), "equity")
	require.NoError(t, err)
	assert.Len(t, resp.Results, MaxResults)
}

func TestResultsWithoutQuery(t *testing.T) {
	e := newEngine(t, testConfig(t, ranking.ModelWeighting), nil)

	_, err := e.Results(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrNoQuery)

	_, err = e.Select(nil, nil)
	assert.ErrorIs(t, err, ErrNoQuery)

	_, err = e.Execute(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestNoMatches(t *testing.T) {
	e := newEngine(t, testConfig(t, ranking.ModelWeighting), nil)

	resp, err := e.Execute(context.Background(), "unrelated words")
	require.NoError(t, err)
	assert.Empty(t, resp.Results)

	payload, err := EncodeRecords(resp.Results)
	require.NoError(t, err)
	assert.Equal(t, "[]", payload)
}

func TestDetectSpanish(t *testing.T) {
	e := newEngine(t, testConfig(t, ranking.ModelWeighting), nil)

	lang, scores := e.Detect("el capital de la empresa")
	assert.Equal(t, "spanish", lang)
	assert.Greater(t, scores["spanish"], scores["english"])

	resp, err := e.Execute(context.Background(), "el capital de la empresa")
	require.NoError(t, err)
	assert.Equal(t, "spanish", resp.Language)
	assert.Equal(t, []string{"capital", "empresa"}, resp.Terms)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, config.DefaultURLBase+"n", resp.Results[0].URL)
}

func TestHapaxRemoval(t *testing.T) {
	cfg := testConfig(t, ranking.ModelWeighting)
	cfg.Model.RemoveHapax = nil
	e := newEngine(t, cfg, nil)

	data, err := os.ReadFile(filepath.Join(cfg.Corpus.ProjectDir, "data", "clean_texts", "en", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "equity investor equity", string(data))

	c, err := e.Context("english")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Dictionary().Len())
	assert.Equal(t, 1, c.Frequencies()["funding"])
	assert.Equal(t, 5, c.NumDocuments())
}

func TestHapaxRemovalIgnoresStaleCleanFiles(t *testing.T) {
	cfg := testConfig(t, ranking.ModelWeighting)
	cfg.Model.RemoveHapax = nil

	clean := filepath.Join(cfg.Corpus.ProjectDir, "data", "clean_texts", "en")
	require.NoError(t, os.MkdirAll(clean, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(clean, "zz-removed.txt"), []byte("equity equity"), 0644))

	e := newEngine(t, cfg, nil)

	c, err := e.Context("english")
	require.NoError(t, err)
	assert.Equal(t, 5, c.NumDocuments())

	resp, err := e.Execute(context.Background(), "Equity investor")
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, config.DefaultURLBase+"b", resp.Results[0].URL)
}

func TestSnippetMatchesRewrittenTerms(t *testing.T) {
	cfg := testConfig(t, ranking.ModelWeighting)
	writeLanguage(t, cfg.Corpus.ProjectDir, "en", []testDoc{{
		name:   "f.txt",
		lemmas: "crowd_funding founder",
		text: "Crowdfunding\nIntro\nThe weather is nice. Markets open early. Rain is coming. " +
			"Sun sets late. Crowdfunding helps founders.",
	}})
	e := newEngine(t, cfg, nil)

	resp, err := e.Execute(context.Background(), "crowdfunding")
	require.NoError(t, err)
	assert.Equal(t, []string{"crowd_funding"}, resp.Terms)
	require.Len(t, resp.Results, 1)
	assert.Equal(t,
		"The weather is nice. Markets open early. [...] Crowdfunding helps founders...",
		resp.Results[0].Snippet)
}

func TestUnknownModel(t *testing.T) {
	_, err := New(context.Background(), Options{Config: testConfig(t, "lsi")})
	assert.ErrorIs(t, err, ranking.ErrUnknownModel)
}

func TestMissingCorpus(t *testing.T) {
	cfg := testConfig(t, ranking.ModelWeighting)
	cfg.Corpus.LemmasDir = "missing"

	_, err := New(context.Background(), Options{
		Config:      cfg,
		Lemmatizers: map[string]morph.Lemmatizer{"english": plainLemmatizer{}, "spanish": plainLemmatizer{}},
	})
	assert.Error(t, err)
}

func TestUnknownLanguage(t *testing.T) {
	e := newEngine(t, testConfig(t, ranking.ModelWeighting), nil)
	_, err := e.Context("klingon")
	assert.ErrorIs(t, err, ErrUnknownLanguage)
}

func TestCatalogIntegration(t *testing.T) {
	ctx := context.Background()
	store, err := catalog.NewSQLite(ctx, ":memory:")
	require.NoError(t, err)
	require.NoError(t, store.PutURLOverride(ctx, "b.txt", "https://example.com/equity"))

	cfg := testConfig(t, ranking.ModelWeighting)
	cfg.Catalog.LogQueries = true
	e := newEngine(t, cfg, store)

	resp, err := e.Execute(ctx, "Equity investor")
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "https://example.com/equity", resp.Results[0].URL)

	logged, err := store.RecentQueries(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logged, 1)
	assert.Equal(t, "Equity investor", logged[0].Query)
	assert.Equal(t, "english", logged[0].Language)
	assert.Equal(t, 2, logged[0].Results)
	assert.Equal(t, []string{"equity", "investor"}, logged[0].Terms)
}

func TestRecordPayload(t *testing.T) {
	payload, err := EncodeRecords(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", payload)

	records, err := DecodeRecords(payload)
	require.NoError(t, err)
	assert.Empty(t, records)

	for _, n := range []int{1, 2} {
		var in []Record
		for i := 0; i < n; i++ {
			in = append(in, Record{
				URL:     fmt.Sprintf("https://example.com/%d", i),
				Title:   fmt.Sprintf("Title \"%d\"", i),
				Snippet: "Line one. [...] Line two...",
			})
		}
		payload, err := EncodeRecords(in)
		require.NoError(t, err)

		out, err := DecodeRecords(payload)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}

	_, err = DecodeRecords("not json")
	assert.Error(t, err)
}
