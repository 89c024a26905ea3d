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
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/glebarez/sqlite"
)

// sqliteSchema creates the catalog tables.
const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS ` + URLOverridesTable + ` (
		file_name TEXT PRIMARY KEY,
		url TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS ` + QueryLogTable + ` (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query TEXT NOT NULL,
		language TEXT NOT NULL,
		terms TEXT NOT NULL,
		results INTEGER NOT NULL,
		duration_ms REAL NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_query_log_created ON ` + QueryLogTable + `(created_at);
`

// SQLite is a catalog stored in an embedded SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the catalog database at path. Use
// ":memory:" for a private in-memory catalog.
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	if path == ":memory:" {
		// Every connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create catalog schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// URLOverrides returns the stored URL overrides.
func (s *SQLite) URLOverrides(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT file_name, url FROM `+URLOverridesTable)
	if err != nil {
		return nil, fmt.Errorf("URL override query failed: %w", err)
	}
	defer rows.Close()

	overrides := make(map[string]string)
	for rows.Next() {
		var name, url string
		if err := rows.Scan(&name, &url); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		overrides[name] = url
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return overrides, nil
}

// PutURLOverride stores or replaces a URL override.
func (s *SQLite) PutURLOverride(ctx context.Context, name, url string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO `+URLOverridesTable+` (file_name, url) VALUES (?, ?)
		ON CONFLICT(file_name) DO UPDATE SET url = excluded.url`,
		name, url)
	if err != nil {
		return fmt.Errorf("failed to store URL override: %w", err)
	}
	return nil
}

// LogQuery records an executed query. Terms are stored space-separated.
func (s *SQLite) LogQuery(ctx context.Context, e QueryLogEntry) error {
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO `+QueryLogTable+`
		(query, language, terms, results, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.Query, e.Language, strings.Join(e.Terms, " "), e.Results,
		float64(e.Duration)/float64(time.Millisecond), at.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to log query: %w", err)
	}
	return nil
}

// RecentQueries returns up to limit logged queries, newest first.
func (s *SQLite) RecentQueries(ctx context.Context, limit int) ([]QueryLogEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT query, language, terms, results, duration_ms, created_at
		FROM `+QueryLogTable+`
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query log query failed: %w", err)
	}
	defer rows.Close()

	var entries []QueryLogEntry
	for rows.Next() {
		var (
			e     QueryLogEntry
			terms string
			ms    float64
			at    int64
		)
		if err := rows.Scan(&e.Query, &e.Language, &terms, &e.Results, &ms, &at); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		e.Terms = strings.Fields(terms)
		e.Duration = time.Duration(ms * float64(time.Millisecond))
		e.At = time.UnixMilli(at)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
