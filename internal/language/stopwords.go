//-------------------------------------------------------------------------
//
// pgEdge Search Server
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package language

import (
	"bufio"
	"embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed stopwords/*.txt
var stopwordFiles embed.FS

// Supported returns the names of the languages with a bundled stopword list.
func Supported() []string {
	entries, err := stopwordFiles.ReadDir("stopwords")
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".txt"))
	}
	sort.Strings(names)
	return names
}

// Stopwords loads the bundled stopword list for a language.
func Stopwords(name string) (map[string]struct{}, error) {
	f, err := stopwordFiles.Open("stopwords/" + strings.ToLower(name) + ".txt")
	if err != nil {
		return nil, fmt.Errorf("no stopword list for language %q", name)
	}
	defer f.Close()

	words := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		w := strings.TrimSpace(scanner.Text())
		if w == "" {
			continue
		}
		words[w] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stopword list for %q: %w", name, err)
	}

	return words, nil
}
