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
	"strings"
)

// EnvDatabasePassword is the environment variable holding the catalog
// database password.
const EnvDatabasePassword = "PGEDGE_SEARCH_DB_PASSWORD"

// ResolvePassword returns the catalog database password with the
// following priority:
//  1. Inline password
//  2. Configured password file
//  3. Environment variable
//
// An empty result leaves authentication to the driver (PGPASSWORD,
// ~/.pgpass or certificates).
func (db DatabaseConfig) ResolvePassword() (string, error) {
	if db.Password != "" {
		return db.Password, nil
	}

	if db.PasswordFile != "" {
		return readSecretFile(expandPath(db.PasswordFile))
	}

	return os.Getenv(EnvDatabasePassword), nil
}

// readSecretFile reads a single secret from a file.
func readSecretFile(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", fmt.Errorf("password file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read password file: %w", err)
	}

	secret := strings.TrimSpace(string(data))
	if secret == "" {
		return "", fmt.Errorf("password file is empty: %s", path)
	}

	return secret, nil
}
