//-------------------------------------------------------------------------
//
// pgEdge Search Server
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration loading and validation for the
// pgEdge Search Server.
package config

import "time"

// Config is the root configuration structure for the server.
type Config struct {
	Server          ServerConfig     `yaml:"server"`
	Corpus          CorpusConfig     `yaml:"corpus"`
	Model           ModelConfig      `yaml:"model"`
	Languages       []LanguageConfig `yaml:"languages"`
	DefaultLanguage string           `yaml:"default_language"` // Returned by detection on ties
	Query           QueryConfig      `yaml:"query"`
	URLs            URLConfig        `yaml:"urls"`
	Catalog         CatalogConfig    `yaml:"catalog"`
	Snippet         SnippetConfig    `yaml:"snippet"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	ListenAddress string          `yaml:"listen_address"`
	Port          int             `yaml:"port"`
	TLS           TLSConfig       `yaml:"tls"`
	CORS          CORSConfig      `yaml:"cors"`
	RateLimit     RateLimitConfig `yaml:"rate_limit"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) settings.
type CORSConfig struct {
	Enabled        bool     `yaml:"enabled"`
	AllowedOrigins []string `yaml:"allowed_origins"` // Origins to allow, or ["*"] for all
}

// TLSConfig contains TLS/HTTPS settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// RateLimitConfig contains per-client request rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// CorpusConfig describes the on-disk corpus layout. Relative directories
// are resolved against ProjectDir; each holds one subdirectory per
// language code.
type CorpusConfig struct {
	ProjectDir    string `yaml:"project_dir"`
	LemmasDir     string `yaml:"lemmas_dir"`     // Term-stream files
	DocumentsDir  string `yaml:"documents_dir"`  // Original documents
	CleanDir      string `yaml:"clean_dir"`      // Hapax-filtered term streams
	ArticleSubdir string `yaml:"article_subdir"` // Documents subdirectory per language
	MatrixDir     string `yaml:"matrix_dir"`     // Optional Matrix Market output
}

// ModelConfig selects and tunes the ranking strategy.
type ModelConfig struct {
	Name              string  `yaml:"name"` // "topic" or "weighting"
	NumTopics         int     `yaml:"num_topics"`
	Threshold         float64 `yaml:"threshold"`
	Similarity        string  `yaml:"similarity"`         // Weighting only: "dot" or "cosine"
	Scheme            string  `yaml:"scheme"`             // Weighting only: "tfidf" or "bm25"
	RemoveStopwords   *bool   `yaml:"remove_stopwords"`   // Default: true
	RemovePunctuation *bool   `yaml:"remove_punctuation"` // Default: true
	RemoveHapax       *bool   `yaml:"remove_hapax"`       // Default: true
}

// StopwordRemoval reports whether stopwords are filtered.
func (m ModelConfig) StopwordRemoval() bool { return boolOr(m.RemoveStopwords, true) }

// PunctuationRemoval reports whether punctuation is filtered.
func (m ModelConfig) PunctuationRemoval() bool { return boolOr(m.RemovePunctuation, true) }

// HapaxRemoval reports whether hapax legomena are removed.
func (m ModelConfig) HapaxRemoval() bool { return boolOr(m.RemoveHapax, true) }

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// LanguageConfig defines one supported language.
type LanguageConfig struct {
	Name     string         `yaml:"name"` // Stopword list name, e.g. "english"
	Code     string         `yaml:"code"` // Corpus subdirectory, e.g. "en"
	Analyzer AnalyzerConfig `yaml:"analyzer"`
}

// AnalyzerConfig contains settings for a language's morphological
// analyzer.
type AnalyzerConfig struct {
	Provider   string        `yaml:"provider"` // "freeling" or "snowball"
	Address    string        `yaml:"address"`  // host:port of the analysis service
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// QueryConfig contains query normalization settings.
type QueryConfig struct {
	Rewrites             []RewriteConfig `yaml:"rewrites"`
	FallbackUnlemmatized bool            `yaml:"fallback_unlemmatized"`
}

// RewriteConfig is a literal substring rewrite applied to lemmatized
// queries.
type RewriteConfig struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// URLConfig controls how documents map to public URLs.
type URLConfig struct {
	Base      string            `yaml:"base"`
	Overrides map[string]string `yaml:"overrides"` // File name -> URL
}

// CatalogConfig selects an optional database holding URL overrides and
// the query log.
type CatalogConfig struct {
	Provider   string         `yaml:"provider"` // "none", "postgres" or "sqlite"
	Database   DatabaseConfig `yaml:"database"`
	SQLitePath string         `yaml:"sqlite_path"`
	LogQueries bool           `yaml:"log_queries"`
}

// DatabaseConfig contains PostgreSQL connection settings.
type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Database     string `yaml:"database"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	PasswordFile string `yaml:"password_file"`
	SSLMode      string `yaml:"ssl_mode"`

	// Certificate-based authentication
	SSLCert   string `yaml:"ssl_cert"`
	SSLKey    string `yaml:"ssl_key"`
	SSLRootCA string `yaml:"ssl_root_ca"`
}

// SnippetConfig contains snippet settings.
type SnippetConfig struct {
	Sentences int `yaml:"sentences"`
}

// Model names.
const (
	ModelTopic     = "topic"
	ModelWeighting = "weighting"
)

// Catalog providers.
const (
	CatalogNone     = "none"
	CatalogPostgres = "postgres"
	CatalogSQLite   = "sqlite"
)

// Analyzer providers.
const (
	AnalyzerFreeLing = "freeling"
	AnalyzerSnowball = "snowball"
)

// DefaultURLBase is the prefix of derived document URLs.
const DefaultURLBase = "https://www.entrepreneur.com/article/"

// DefaultURLOverrides returns the canonical URLs of documents whose names
// do not follow the article pattern.
func DefaultURLOverrides() map[string]string {
	return map[string]string{
		"formnet.txt":             "https://www.entrepreneur.com/formnet",
		"kuldip-maity.txt":        "https://www.entrepreneur.com/author/kuldip-maity",
		"bootstrapping.txt":       "https://www.entrepreneur.com/encyclopedia/bootstrapping",
		"cash-flow-statement.txt": "https://www.entrepreneur.com/encyclopedia/cash-flow-statement",
		"equity-financing.txt":    "https://www.entrepreneur.com/encyclopedia/equity-financing",
		"financial-statement.txt": "https://www.entrepreneur.com/encyclopedia/financial-statement",
		"equity-crowdfunding.txt": "https://www.entrepreneur.com/topic/equity-crowdfunding",
		"4.txt":                   "https://www.entrepreneur.com/topic/startup-funding/4",
	}
}

// DefaultRewrites returns the compound-term rewrites applied to queries.
func DefaultRewrites() []RewriteConfig {
	return []RewriteConfig{
		{From: "crowd funding", To: "crowd_funding"},
		{From: "crowdfunding", To: "crowd_funding"},
		{From: "crowd fund", To: "crowd_fund"},
		{From: "crowdfund", To: "crowd_fund"},
		{From: "setup", To: "set up"},
		{From: "set-up", To: "set up"},
	}
}

// defaultAnalyzerPorts are the conventional analysis service ports.
var defaultAnalyzerPorts = map[string]int{
	"english": 50005,
	"spanish": 50006,
}

// defaultLanguageCodes maps language names to corpus subdirectories.
var defaultLanguageCodes = map[string]string{
	"english": "en",
	"spanish": "es",
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddress: "0.0.0.0",
			Port:          8080,
			TLS: TLSConfig{
				Enabled: false,
			},
			RateLimit: RateLimitConfig{
				RequestsPerSecond: 10,
				Burst:             20,
			},
		},
		Corpus: CorpusConfig{
			ProjectDir:    ".",
			LemmasDir:     "data/lemmas",
			DocumentsDir:  "data/documents",
			CleanDir:      "data/clean_texts",
			ArticleSubdir: "article",
		},
		Model: ModelConfig{
			Name:       ModelTopic,
			NumTopics:  100,
			Threshold:  0.3,
			Similarity: "dot",
			Scheme:     "tfidf",
		},
		Languages: []LanguageConfig{
			{Name: "english", Code: "en"},
			{Name: "spanish", Code: "es"},
		},
		DefaultLanguage: "english",
		Query: QueryConfig{
			Rewrites: DefaultRewrites(),
		},
		URLs: URLConfig{
			Base:      DefaultURLBase,
			Overrides: DefaultURLOverrides(),
		},
		Catalog: CatalogConfig{
			Provider: CatalogNone,
		},
		Snippet: SnippetConfig{
			Sentences: 3,
		},
	}
}
