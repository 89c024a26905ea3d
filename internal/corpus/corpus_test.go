//-------------------------------------------------------------------------
//
// pgEdge Search Server
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package corpus

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-search-server/internal/language"
)

func writeStreams(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
}

func englishProfile(t *testing.T) *language.Profile {
	t.Helper()
	p, err := language.NewProfile("english", "en", language.DefaultOptions())
	require.NoError(t, err)
	return p
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeStreams(t, dir, map[string]string{
		"b.txt": "The equity , funding of startup\nsecond line ignored",
		"a.txt": "crowd_funding equity equity",
		"c.txt": "",
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0755))

	c, err := Load(dir, englishProfile(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, c.Names())
	assert.Equal(t, []string{"equity", "funding", "startup"}, c.Documents[1].Terms)
	assert.Empty(t, c.Documents[2].Terms)
	assert.Equal(t, 1, c.Documents[1].Ordinal)

	assert.Equal(t, 3, c.Frequencies["equity"])
	assert.Equal(t, 1, c.Frequencies["crowd_funding"])
	assert.NotContains(t, c.Frequencies, "the")
	assert.NotContains(t, c.Frequencies, ",")
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing"), englishProfile(t))
	assert.Error(t, err)
}

func TestLoad_EmptyDirectory(t *testing.T) {
	_, err := Load(t.TempDir(), englishProfile(t))
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestDictionary(t *testing.T) {
	d := NewDictionary()
	require.NoError(t, d.AddDocument([]string{"equity", "funding", "equity"}))
	require.NoError(t, d.AddDocument([]string{"funding", "startup"}))

	assert.Equal(t, 3, d.Len())
	assert.Equal(t, 2, d.NumDocs())
	assert.Equal(t, 5, d.NumPositions())

	id, ok := d.ID("funding")
	require.True(t, ok)
	assert.Equal(t, 1, id)
	assert.Equal(t, "funding", d.Token(id))
	assert.Equal(t, 2, d.DocFreq(id))
	assert.Equal(t, 2, d.CollectionFreq(id))

	eq, _ := d.ID("equity")
	assert.Equal(t, 1, d.DocFreq(eq))
	assert.Equal(t, 2, d.CollectionFreq(eq))

	assert.Equal(t, BagOfWords{{ID: 0, Count: 2}, {ID: 2, Count: 1}},
		d.Doc2Bow([]string{"startup", "equity", "unknown", "equity"}))

	d.Freeze()
	assert.ErrorIs(t, d.AddDocument([]string{"late"}), ErrDictionaryFrozen)
	_, ok = d.ID("late")
	assert.False(t, ok)
}

func TestBuildVocabulary_WithoutHapaxRemoval(t *testing.T) {
	dir := t.TempDir()
	writeStreams(t, dir, map[string]string{
		"a.txt": "equity funding",
		"b.txt": "equity investor",
	})
	c, err := Load(dir, englishProfile(t))
	require.NoError(t, err)

	v, err := BuildVocabulary(c, VocabularyOptions{})
	require.NoError(t, err)

	assert.Equal(t, dir, v.Dir)
	assert.Equal(t, 3, v.Dictionary.Len())
	assert.Equal(t, c.TermSequences(), v.Documents)
}

func TestBuildVocabulary_HapaxRemoval(t *testing.T) {
	dir := t.TempDir()
	clean := filepath.Join(t.TempDir(), "clean", "en")
	writeStreams(t, dir, map[string]string{
		"a.txt": "equity funding rare",
		"b.txt": "equity funding investor",
		"c.txt": "funding once",
	})
	c, err := Load(dir, englishProfile(t))
	require.NoError(t, err)

	v, err := BuildVocabulary(c, VocabularyOptions{RemoveHapax: true, CleanDir: clean})
	require.NoError(t, err)
	assert.Equal(t, clean, v.Dir)

	// No surviving term has a corpus-wide frequency of one.
	for id := 0; id < v.Dictionary.Len(); id++ {
		assert.Greater(t, c.Frequencies[v.Dictionary.Token(id)], 1)
	}
	assert.Equal(t, 2, v.Dictionary.Len())

	// The frequency table is not rewritten.
	assert.Equal(t, 1, c.Frequencies["rare"])

	assert.Equal(t, [][]string{{"equity", "funding"}, {"equity", "funding"}, {"funding"}}, v.Documents)

	data, err := os.ReadFile(filepath.Join(clean, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "equity funding", string(data))

	data, err = os.ReadFile(filepath.Join(clean, "c.txt"))
	require.NoError(t, err)
	assert.Equal(t, "funding", string(data))
}

func TestBuildVocabulary_IgnoresStaleCleanFiles(t *testing.T) {
	dir := t.TempDir()
	clean := filepath.Join(t.TempDir(), "clean")
	writeStreams(t, dir, map[string]string{
		"a.txt": "equity funding",
		"b.txt": "equity funding",
	})
	writeStreams(t, clean, map[string]string{
		"removed.txt": "stale stale stale",
	})
	c, err := Load(dir, englishProfile(t))
	require.NoError(t, err)

	v, err := BuildVocabulary(c, VocabularyOptions{RemoveHapax: true, CleanDir: clean})
	require.NoError(t, err)

	assert.Len(t, v.Documents, 2)
	_, ok := v.Dictionary.ID("stale")
	assert.False(t, ok)
}

func TestBuildVocabulary_HapaxRequiresCleanDir(t *testing.T) {
	dir := t.TempDir()
	writeStreams(t, dir, map[string]string{"a.txt": "equity"})
	c, err := Load(dir, englishProfile(t))
	require.NoError(t, err)

	_, err = BuildVocabulary(c, VocabularyOptions{RemoveHapax: true})
	assert.Error(t, err)
}

func TestWriteMatrixMarket(t *testing.T) {
	var buf bytes.Buffer
	docs := []BagOfWords{
		{{ID: 0, Count: 2}, {ID: 2, Count: 1}},
		{},
		{{ID: 1, Count: 3}},
	}
	require.NoError(t, WriteMatrixMarket(&buf, 3, docs))

	expected := "%%MatrixMarket matrix coordinate real general\n" +
		"3 3 3\n" +
		"1 1 2\n" +
		"1 3 1\n" +
		"3 2 3\n"
	assert.Equal(t, expected, buf.String())
}
