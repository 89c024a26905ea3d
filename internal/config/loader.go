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
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the default configuration file name.
	ConfigFileName = "pgedge-search-server.yaml"

	// SystemConfigPath is the system-wide configuration path.
	SystemConfigPath = "/etc/pgedge/" + ConfigFileName
)

// Analyzer client defaults.
const (
	DefaultAnalyzerHost       = "localhost"
	DefaultAnalyzerTimeout    = 10 * time.Second
	DefaultAnalyzerMaxRetries = 3
	DefaultAnalyzerRetryDelay = 200 * time.Millisecond
)

// Load loads the configuration from the specified path, or searches
// default locations if path is empty.
//
// Search order:
//  1. Explicit path (if provided)
//  2. /etc/pgedge/pgedge-search-server.yaml
//  3. pgedge-search-server.yaml in the binary's directory
func Load(path string) (*Config, error) {
	configPath, err := findConfigFile(path)
	if err != nil {
		return nil, err
	}

	return loadFromFile(configPath)
}

// findConfigFile finds the configuration file using the search order.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	searchPaths := []string{
		SystemConfigPath,
		getBinaryDirConfigPath(),
	}

	for _, p := range searchPaths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no configuration file found; searched: %v", searchPaths)
}

// getBinaryDirConfigPath returns the path to config file in the binary's
// directory.
func getBinaryDirConfigPath() string {
	executable, err := os.Executable()
	if err != nil {
		return ""
	}

	// Resolve symlinks to get the actual binary location
	executable, err = filepath.EvalSymlinks(executable)
	if err != nil {
		return ""
	}

	return filepath.Join(filepath.Dir(executable), ConfigFileName)
}

// loadFromFile loads and parses the configuration from a YAML file.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse parses YAML configuration data on top of the defaults, fills in
// per-language settings and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyDefaults fills settings left empty in the file.
func applyDefaults(cfg *Config) {
	for i := range cfg.Languages {
		l := &cfg.Languages[i]
		l.Name = strings.ToLower(l.Name)

		if l.Code == "" {
			l.Code = defaultLanguageCodes[l.Name]
		}

		a := &l.Analyzer
		if a.Provider == "" {
			a.Provider = AnalyzerFreeLing
		}
		a.Provider = strings.ToLower(a.Provider)
		if a.Address == "" && a.Provider == AnalyzerFreeLing {
			if port, ok := defaultAnalyzerPorts[l.Name]; ok {
				a.Address = fmt.Sprintf("%s:%d", DefaultAnalyzerHost, port)
			}
		}
		if a.Timeout == 0 {
			a.Timeout = DefaultAnalyzerTimeout
		}
		if a.MaxRetries == 0 {
			a.MaxRetries = DefaultAnalyzerMaxRetries
		}
		if a.RetryDelay == 0 {
			a.RetryDelay = DefaultAnalyzerRetryDelay
		}
	}

	cfg.DefaultLanguage = strings.ToLower(cfg.DefaultLanguage)
	if cfg.DefaultLanguage == "" && len(cfg.Languages) > 0 {
		cfg.DefaultLanguage = cfg.Languages[0].Name
	}

	if cfg.URLs.Base == "" {
		cfg.URLs.Base = DefaultURLBase
	}

	if cfg.Catalog.Provider == "" {
		cfg.Catalog.Provider = CatalogNone
	}
	cfg.Catalog.Provider = strings.ToLower(cfg.Catalog.Provider)

	if cfg.Catalog.Provider == CatalogPostgres {
		// Apply database port default
		if cfg.Catalog.Database.Port == 0 {
			cfg.Catalog.Database.Port = 5432
		}

		// Apply database ssl_mode default
		if cfg.Catalog.Database.SSLMode == "" {
			cfg.Catalog.Database.SSLMode = "prefer"
		}
	}
}

// ResolvePath resolves a corpus directory against the project directory.
func (c CorpusConfig) ResolvePath(dir string) string {
	dir = expandPath(dir)
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(expandPath(c.ProjectDir), dir)
}
