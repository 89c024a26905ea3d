//-------------------------------------------------------------------------
//
// pgEdge Search Server
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package engine builds the per-language retrieval models at startup and
// executes queries against them.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery is returned for blank query text.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrNoQuery is returned when results are requested without a query.
	ErrNoQuery = errors.New("no query has been issued")

	// ErrUnknownLanguage is returned for a language with no model.
	ErrUnknownLanguage = errors.New("unknown language")
)

// MaxResults is the most results returned for one query.
const MaxResults = 10

// NoResultsMessage describes an empty result set.
const NoResultsMessage = "Your search did not match any documents."

// Query is a raw query with its detected language and normalized terms.
type Query struct {
	Raw      string   `json:"query"`
	Language string   `json:"language"`
	Terms    []string `json:"terms"`
}

// Record is one formatted search result.
type Record struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Candidate is a ranked document accepted by the result filter.
type Candidate struct {
	Doc   int     `json:"doc"`
	Name  string  `json:"name"`
	Path  string  `json:"path"`
	URL   string  `json:"url"`
	Score float64 `json:"score"`
}

// Response is the outcome of executing a query.
type Response struct {
	Language string   `json:"language"`
	Terms    []string `json:"terms"`
	Results  []Record `json:"results"`
}

// LanguageInfo summarizes the model built for one language.
type LanguageInfo struct {
	Name       string `json:"name"`
	Code       string `json:"code"`
	Model      string `json:"model"`
	Documents  int    `json:"documents"`
	Vocabulary int    `json:"vocabulary"`
	Terms      int    `json:"terms"`
	Topics     int    `json:"topics,omitempty"`
}

// EncodeRecords serializes records as a JSON array. No records encode as
// "[]".
func EncodeRecords(records []Record) (string, error) {
	if records == nil {
		records = []Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("failed to encode results: %w", err)
	}
	return string(data), nil
}

// DecodeRecords parses a payload produced by EncodeRecords.
func DecodeRecords(payload string) ([]Record, error) {
	records := []Record{}
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		return nil, fmt.Errorf("failed to decode results: %w", err)
	}
	return records, nil
}
