//-------------------------------------------------------------------------
//
// pgEdge Search Server
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package catalog

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-search-server/internal/config"
)

func TestResolverURL(t *testing.T) {
	r := NewResolver(config.DefaultURLBase, config.DefaultURLOverrides())

	tests := []struct {
		name string
		want string
	}{
		{"formnet.txt", "https://www.entrepreneur.com/formnet"},
		{"4.txt", "https://www.entrepreneur.com/topic/startup-funding/4"},
		{"how-to-raise-money-293847.txt", "https://www.entrepreneur.com/article/how-to-raise-money-293847"},
		{"no-extension", "https://www.entrepreneur.com/article/no-extension"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.URL(tt.name))
		})
	}
}

func TestResolverWith(t *testing.T) {
	base := NewResolver("https://example.com/a/", map[string]string{"x.txt": "https://example.com/x"})
	merged := base.With(map[string]string{
		"x.txt": "https://example.com/new-x",
		"y.txt": "https://example.com/y",
	})

	assert.Equal(t, "https://example.com/new-x", merged.URL("x.txt"))
	assert.Equal(t, "https://example.com/y", merged.URL("y.txt"))
	assert.Equal(t, 2, merged.Len())

	// The receiver is unchanged.
	assert.Equal(t, "https://example.com/x", base.URL("x.txt"))
	assert.Equal(t, "https://example.com/a/y", base.URL("y.txt"))
}

func TestBuildConnectionString(t *testing.T) {
	t.Setenv("PGUSER", "")
	t.Setenv("USER", "")

	got := buildConnectionString(config.DatabaseConfig{
		Host:      "db.local",
		Port:      5433,
		Database:  "search",
		Username:  "reader",
		Password:  "secret",
		SSLMode:   "verify-full",
		SSLRootCA: "/etc/ssl/ca.pem",
	})
	assert.Equal(t,
		"host=db.local port=5433 dbname=search user=reader password=secret sslmode=verify-full sslrootcert=/etc/ssl/ca.pem",
		got)

	t.Setenv("PGUSER", "fromenv")
	got = buildConnectionString(config.DatabaseConfig{Host: "h", Port: 5432, Database: "d"})
	assert.Equal(t, "host=h port=5432 dbname=d user=fromenv", got)
}

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteURLOverrides(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	got, err := s.URLOverrides(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.PutURLOverride(ctx, "a.txt", "https://example.com/a"))
	require.NoError(t, s.PutURLOverride(ctx, "b.txt", "https://example.com/b"))
	require.NoError(t, s.PutURLOverride(ctx, "a.txt", "https://example.com/a2"))

	got, err = s.URLOverrides(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"a.txt": "https://example.com/a2",
		"b.txt": "https://example.com/b",
	}, got)
}

func TestSQLiteQueryLog(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	base := time.UnixMilli(1_700_000_000_000)
	require.NoError(t, s.LogQuery(ctx, QueryLogEntry{
		Query:    "how to raise money",
		Language: "english",
		Terms:    []string{"raise", "money"},
		Results:  4,
		Duration: 12 * time.Millisecond,
		At:       base,
	}))
	require.NoError(t, s.LogQuery(ctx, QueryLogEntry{
		Query:    "cómo conseguir financiación",
		Language: "spanish",
		Terms:    []string{"conseguir", "financiación"},
		Results:  0,
		At:       base.Add(time.Second),
	}))

	entries, err := s.RecentQueries(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "spanish", entries[0].Language)
	assert.Equal(t, "how to raise money", entries[1].Query)
	assert.Equal(t, []string{"raise", "money"}, entries[1].Terms)
	assert.Equal(t, 4, entries[1].Results)
	assert.Equal(t, 12*time.Millisecond, entries[1].Duration)
	assert.True(t, entries[1].At.Equal(base))

	entries, err = s.RecentQueries(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.CatalogConfig{Provider: config.CatalogNone}, nil)
	require.NoError(t, err)
	assert.IsType(t, Nop{}, s)
	overrides, err := s.URLOverrides(ctx)
	require.NoError(t, err)
	assert.Empty(t, overrides)
	assert.NoError(t, s.LogQuery(ctx, QueryLogEntry{}))
	assert.Error(t, s.PutURLOverride(ctx, "a.txt", "u"))

	s, err = Open(ctx, config.CatalogConfig{Provider: config.CatalogSQLite, SQLitePath: ":memory:"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, config.CatalogConfig{Provider: "mongodb"}, nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "mongodb"))
}
