//-------------------------------------------------------------------------
//
// pgEdge Search Server
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[2:])
	}
	return path
}

// ValidationError represents a single configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}

	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration for errors and returns all validation
// errors found.
func (c *Config) Validate() error {
	var errs ValidationErrors

	errs = append(errs, c.validateServer()...)
	errs = append(errs, c.validateCorpus()...)
	errs = append(errs, c.validateModel()...)
	errs = append(errs, c.validateLanguages()...)
	errs = append(errs, c.validateCatalog()...)

	if c.Snippet.Sentences < 0 {
		errs = append(errs, ValidationError{
			Field:   "snippet.sentences",
			Message: "must be non-negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validateServer validates server configuration.
func (c *Config) validateServer() ValidationErrors {
	var errs ValidationErrors

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, ValidationError{
			Field:   "server.port",
			Message: "must be between 1 and 65535",
		})
	}

	if c.Server.TLS.Enabled {
		if c.Server.TLS.CertFile == "" {
			errs = append(errs, ValidationError{
				Field:   "server.tls.cert_file",
				Message: "required when TLS is enabled",
			})
		} else if _, err := os.Stat(expandPath(c.Server.TLS.CertFile)); err != nil {
			errs = append(errs, ValidationError{
				Field:   "server.tls.cert_file",
				Message: fmt.Sprintf("file not found: %s", c.Server.TLS.CertFile),
			})
		}

		if c.Server.TLS.KeyFile == "" {
			errs = append(errs, ValidationError{
				Field:   "server.tls.key_file",
				Message: "required when TLS is enabled",
			})
		} else if _, err := os.Stat(expandPath(c.Server.TLS.KeyFile)); err != nil {
			errs = append(errs, ValidationError{
				Field:   "server.tls.key_file",
				Message: fmt.Sprintf("file not found: %s", c.Server.TLS.KeyFile),
			})
		}
	}

	if c.Server.RateLimit.Enabled {
		if c.Server.RateLimit.RequestsPerSecond <= 0 {
			errs = append(errs, ValidationError{
				Field:   "server.rate_limit.requests_per_second",
				Message: "must be positive when rate limiting is enabled",
			})
		}
		if c.Server.RateLimit.Burst < 1 {
			errs = append(errs, ValidationError{
				Field:   "server.rate_limit.burst",
				Message: "must be at least 1 when rate limiting is enabled",
			})
		}
	}

	return errs
}

// validateCorpus validates the corpus layout.
func (c *Config) validateCorpus() ValidationErrors {
	var errs ValidationErrors

	required := []struct {
		field string
		value string
	}{
		{"corpus.project_dir", c.Corpus.ProjectDir},
		{"corpus.lemmas_dir", c.Corpus.LemmasDir},
		{"corpus.documents_dir", c.Corpus.DocumentsDir},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, ValidationError{Field: r.field, Message: "required"})
		}
	}

	if c.Model.HapaxRemoval() && c.Corpus.CleanDir == "" {
		errs = append(errs, ValidationError{
			Field:   "corpus.clean_dir",
			Message: "required when hapax removal is enabled",
		})
	}

	return errs
}

// validateModel validates the ranking model settings.
func (c *Config) validateModel() ValidationErrors {
	var errs ValidationErrors

	switch c.Model.Name {
	case ModelTopic, ModelWeighting:
	default:
		errs = append(errs, ValidationError{
			Field:   "model.name",
			Message: fmt.Sprintf("must be either '%s' or '%s'", ModelTopic, ModelWeighting),
		})
	}

	if c.Model.NumTopics < 1 {
		errs = append(errs, ValidationError{
			Field:   "model.num_topics",
			Message: "must be positive",
		})
	}

	errs = append(errs, validateChoice("model.similarity", c.Model.Similarity,
		[]string{"dot", "cosine"})...)
	errs = append(errs, validateChoice("model.scheme", c.Model.Scheme,
		[]string{"tfidf", "bm25"})...)

	return errs
}

// validateLanguages validates the supported languages.
func (c *Config) validateLanguages() ValidationErrors {
	var errs ValidationErrors

	if len(c.Languages) == 0 {
		errs = append(errs, ValidationError{
			Field:   "languages",
			Message: "at least one language must be configured",
		})
		return errs
	}

	names := make(map[string]bool)
	codes := make(map[string]bool)
	for i, l := range c.Languages {
		prefix := fmt.Sprintf("languages[%d]", i)

		if l.Name == "" {
			errs = append(errs, ValidationError{Field: prefix + ".name", Message: "required"})
		} else if names[l.Name] {
			errs = append(errs, ValidationError{
				Field:   prefix + ".name",
				Message: fmt.Sprintf("duplicate language name: %s", l.Name),
			})
		}
		names[l.Name] = true

		if l.Code == "" {
			errs = append(errs, ValidationError{Field: prefix + ".code", Message: "required"})
		} else if codes[l.Code] {
			errs = append(errs, ValidationError{
				Field:   prefix + ".code",
				Message: fmt.Sprintf("duplicate language code: %s", l.Code),
			})
		}
		codes[l.Code] = true

		errs = append(errs, validateAnalyzer(prefix+".analyzer", l.Analyzer)...)
	}

	if c.DefaultLanguage != "" && !names[c.DefaultLanguage] {
		errs = append(errs, ValidationError{
			Field:   "default_language",
			Message: fmt.Sprintf("not a configured language: %s", c.DefaultLanguage),
		})
	}

	return errs
}

// validateAnalyzer validates a language's analyzer settings.
func validateAnalyzer(prefix string, a AnalyzerConfig) ValidationErrors {
	errs := validateChoice(prefix+".provider", a.Provider,
		[]string{AnalyzerFreeLing, AnalyzerSnowball})

	if a.Provider == AnalyzerFreeLing && a.Address == "" {
		errs = append(errs, ValidationError{
			Field:   prefix + ".address",
			Message: "required for the freeling provider",
		})
	}
	if a.Timeout < 0 {
		errs = append(errs, ValidationError{Field: prefix + ".timeout", Message: "must be non-negative"})
	}
	if a.MaxRetries < 0 {
		errs = append(errs, ValidationError{Field: prefix + ".max_retries", Message: "must be non-negative"})
	}

	return errs
}

// validateCatalog validates the optional catalog database.
func (c *Config) validateCatalog() ValidationErrors {
	var errs ValidationErrors

	switch c.Catalog.Provider {
	case CatalogNone:
	case CatalogPostgres:
		errs = append(errs, validateDatabase("catalog.database", c.Catalog.Database)...)
	case CatalogSQLite:
		if c.Catalog.SQLitePath == "" {
			errs = append(errs, ValidationError{
				Field:   "catalog.sqlite_path",
				Message: "required for the sqlite provider",
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "catalog.provider",
			Message: fmt.Sprintf("must be one of: %s, %s, %s", CatalogNone, CatalogPostgres, CatalogSQLite),
		})
	}

	return errs
}

// validateDatabase validates database configuration.
func validateDatabase(prefix string, db DatabaseConfig) ValidationErrors {
	var errs ValidationErrors

	if db.Host == "" {
		errs = append(errs, ValidationError{
			Field:   prefix + ".host",
			Message: "required",
		})
	}

	if db.Database == "" {
		errs = append(errs, ValidationError{
			Field:   prefix + ".database",
			Message: "required",
		})
	}

	if db.Port < 1 || db.Port > 65535 {
		errs = append(errs, ValidationError{
			Field:   prefix + ".port",
			Message: "must be between 1 and 65535",
		})
	}

	validSSLModes := map[string]bool{
		"disable":     true,
		"allow":       true,
		"prefer":      true,
		"require":     true,
		"verify-ca":   true,
		"verify-full": true,
	}
	if db.SSLMode != "" && !validSSLModes[db.SSLMode] {
		errs = append(errs, ValidationError{
			Field:   prefix + ".ssl_mode",
			Message: "must be one of: disable, allow, prefer, require, verify-ca, verify-full",
		})
	}

	return errs
}

// validateChoice checks that value is one of the valid options.
func validateChoice(field, value string, valid []string) ValidationErrors {
	v := strings.ToLower(value)
	for _, opt := range valid {
		if v == opt {
			return nil
		}
	}
	return ValidationErrors{{
		Field:   field,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(valid, ", ")),
	}}
}
