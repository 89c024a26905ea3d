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
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-search-server/internal/config"
)

// postgresSchema creates the catalog tables.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS ` + URLOverridesTable + ` (
		file_name text PRIMARY KEY,
		url text NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ` + QueryLogTable + ` (
		id bigserial PRIMARY KEY,
		query text NOT NULL,
		language text NOT NULL,
		terms text[] NOT NULL,
		results integer NOT NULL,
		duration_ms double precision NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
}

// Postgres is a catalog stored in PostgreSQL.
type Postgres struct {
	pool   *pgxpool.Pool
	config config.DatabaseConfig
}

// NewPostgres connects to the catalog database and creates its tables.
func NewPostgres(ctx context.Context, cfg config.DatabaseConfig) (*Postgres, error) {
	password, err := cfg.ResolvePassword()
	if err != nil {
		return nil, err
	}
	cfg.Password = password

	connStr := buildConnectionString(cfg)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	p := &Postgres{
		pool:   pool,
		config: cfg,
	}
	if err := p.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return p, nil
}

// buildConnectionString constructs a PostgreSQL connection string.
func buildConnectionString(cfg config.DatabaseConfig) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("host=%s", cfg.Host))
	parts = append(parts, fmt.Sprintf("port=%d", cfg.Port))
	parts = append(parts, fmt.Sprintf("dbname=%s", cfg.Database))

	// Username: config > PGUSER > USER
	username := cfg.Username
	if username == "" {
		username = os.Getenv("PGUSER")
	}
	if username == "" {
		username = os.Getenv("USER")
	}
	if username != "" {
		parts = append(parts, fmt.Sprintf("user=%s", username))
	}

	if cfg.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", cfg.Password))
	}

	if cfg.SSLMode != "" {
		parts = append(parts, fmt.Sprintf("sslmode=%s", cfg.SSLMode))
	}

	// Certificate-based authentication
	if cfg.SSLCert != "" {
		parts = append(parts, fmt.Sprintf("sslcert=%s", cfg.SSLCert))
	}
	if cfg.SSLKey != "" {
		parts = append(parts, fmt.Sprintf("sslkey=%s", cfg.SSLKey))
	}
	if cfg.SSLRootCA != "" {
		parts = append(parts, fmt.Sprintf("sslrootcert=%s", cfg.SSLRootCA))
	}

	return strings.Join(parts, " ")
}

func (p *Postgres) ensureSchema(ctx context.Context) error {
	for _, stmt := range postgresSchema {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create catalog schema: %w", err)
		}
	}
	return nil
}

// URLOverrides returns the stored URL overrides.
func (p *Postgres) URLOverrides(ctx context.Context) (map[string]string, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT file_name, url FROM `+URLOverridesTable)
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
func (p *Postgres) PutURLOverride(ctx context.Context, name, url string) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO `+URLOverridesTable+` (file_name, url) VALUES ($1, $2)
		ON CONFLICT (file_name) DO UPDATE SET url = EXCLUDED.url`,
		name, url)
	if err != nil {
		return fmt.Errorf("failed to store URL override: %w", err)
	}
	return nil
}

// LogQuery records an executed query.
func (p *Postgres) LogQuery(ctx context.Context, e QueryLogEntry) error {
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	terms := e.Terms
	if terms == nil {
		terms = []string{}
	}

	_, err := p.pool.Exec(ctx,
		`INSERT INTO `+QueryLogTable+`
		(query, language, terms, results, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.Query, e.Language, terms, e.Results,
		float64(e.Duration)/float64(time.Millisecond), at)
	if err != nil {
		return fmt.Errorf("failed to log query: %w", err)
	}
	return nil
}

// RecentQueries returns up to limit logged queries, newest first.
func (p *Postgres) RecentQueries(ctx context.Context, limit int) ([]QueryLogEntry, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT query, language, terms, results, duration_ms, created_at
		FROM `+QueryLogTable+`
		ORDER BY created_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query log query failed: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (QueryLogEntry, error) {
		var (
			e  QueryLogEntry
			ms float64
		)
		err := row.Scan(&e.Query, &e.Language, &e.Terms, &e.Results, &ms, &e.At)
		e.Duration = time.Duration(ms * float64(time.Millisecond))
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}
	return entries, nil
}

// Ping verifies the database connection.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}
