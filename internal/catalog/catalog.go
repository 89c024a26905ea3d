//-------------------------------------------------------------------------
//
// pgEdge Search Server
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package catalog resolves documents to public URLs and provides the
// optional database that stores URL overrides and the query log.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/pgEdge/pgedge-search-server/internal/config"
)

// Table names shared by the database backends.
const (
	URLOverridesTable = "search_url_overrides"
	QueryLogTable     = "search_query_log"
)

// QueryLogEntry is one executed query.
type QueryLogEntry struct {
	Query    string
	Language string
	Terms    []string
	Results  int
	Duration time.Duration
	At       time.Time
}

// Store is a catalog backend.
type Store interface {
	// URLOverrides returns the stored file name to URL mappings.
	URLOverrides(ctx context.Context) (map[string]string, error)

	// PutURLOverride stores or replaces the URL of a file name.
	PutURLOverride(ctx context.Context, name, url string) error

	// LogQuery records an executed query.
	LogQuery(ctx context.Context, entry QueryLogEntry) error

	// RecentQueries returns up to limit logged queries, newest first.
	RecentQueries(ctx context.Context, limit int) ([]QueryLogEntry, error)

	// Close releases the backend's resources.
	Close() error
}

// Open creates the store selected by cfg.Provider.
func Open(ctx context.Context, cfg config.CatalogConfig, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch strings.ToLower(cfg.Provider) {
	case config.CatalogNone, "":
		return Nop{}, nil
	case config.CatalogPostgres:
		p, err := NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		logger.Info("catalog connected",
			"provider", config.CatalogPostgres,
			"host", cfg.Database.Host,
			"database", cfg.Database.Database)
		return p, nil
	case config.CatalogSQLite:
		s, err := NewSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("catalog opened", "provider", config.CatalogSQLite, "path", cfg.SQLitePath)
		return s, nil
	default:
		return nil, fmt.Errorf("unknown catalog provider: %s", cfg.Provider)
	}
}

// Nop is the store used when no catalog is configured.
type Nop struct{}

// URLOverrides returns no overrides.
func (Nop) URLOverrides(context.Context) (map[string]string, error) { return nil, nil }

// PutURLOverride fails: there is nowhere to store the override.
func (Nop) PutURLOverride(context.Context, string, string) error {
	return fmt.Errorf("no catalog configured")
}

// LogQuery discards the entry.
func (Nop) LogQuery(context.Context, QueryLogEntry) error { return nil }

// RecentQueries returns nothing.
func (Nop) RecentQueries(context.Context, int) ([]QueryLogEntry, error) { return nil, nil }

// Close does nothing.
func (Nop) Close() error { return nil }

// Resolver maps document file names to public URLs.
type Resolver struct {
	base      string
	overrides map[string]string
}

// NewResolver creates a resolver. Documents without an override get
// base followed by their name without extension.
func NewResolver(base string, overrides map[string]string) *Resolver {
	r := &Resolver{
		base:      base,
		overrides: make(map[string]string, len(overrides)),
	}
	for k, v := range overrides {
		r.overrides[k] = v
	}
	return r
}

// With returns a copy of the resolver with extra overrides taking
// precedence over existing ones.
func (r *Resolver) With(extra map[string]string) *Resolver {
	merged := NewResolver(r.base, r.overrides)
	for k, v := range extra {
		merged.overrides[k] = v
	}
	return merged
}

// URL returns the public URL of the named document.
func (r *Resolver) URL(name string) string {
	if url, ok := r.overrides[name]; ok {
		return url
	}
	return r.base + strings.TrimSuffix(name, filepath.Ext(name))
}

// Len returns the number of overrides.
func (r *Resolver) Len() int { return len(r.overrides) }
