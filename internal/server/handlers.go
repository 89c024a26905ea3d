//-------------------------------------------------------------------------
//
// pgEdge Search Server
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pgEdge/pgedge-search-server/internal/engine"
	"github.com/pgEdge/pgedge-search-server/internal/morph"
)

// maxRequestBody bounds the size of a search request body.
const maxRequestBody = 64 << 10

// HealthResponse is the response for the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// LanguagesResponse is the response for the list languages endpoint.
type LanguagesResponse struct {
	Languages []engine.LanguageInfo `json:"languages"`
}

// SearchRequest is the body of a search request.
type SearchRequest struct {
	Query string `json:"query"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleHealth handles the GET /health endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondMethodNotAllowed(w, http.MethodGet)
		return
	}

	s.respondJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

// handleLanguages handles the GET /languages endpoint.
func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondMethodNotAllowed(w, http.MethodGet)
		return
	}

	s.respondJSON(w, http.StatusOK, LanguagesResponse{Languages: s.engine.Info()})
}

// handleSearch handles the POST /search endpoint.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondMethodNotAllowed(w, http.MethodPost)
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "INVALID_REQUEST",
			"invalid request body: "+err.Error())
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		s.respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "query is required")
		return
	}

	resp, err := s.engine.Execute(r.Context(), req.Query)
	if err != nil {
		s.respondExecutionError(w, err)
		return
	}

	if resp.Results == nil {
		resp.Results = []engine.Record{}
	}
	annotate(w, "language", resp.Language, "terms", len(resp.Terms), "results", len(resp.Results))
	s.respondJSON(w, http.StatusOK, resp)
}

// respondExecutionError maps an engine error to a status code.
func (s *Server) respondExecutionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrEmptyQuery):
		s.respondError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case morph.IsRecoverable(err):
		s.logger.Warn("analyzer unavailable", "error", err)
		s.respondError(w, http.StatusServiceUnavailable, "ANALYZER_UNAVAILABLE", err.Error())
	default:
		s.logger.Error("search execution failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "EXECUTION_ERROR", err.Error())
	}
}

// respondJSON sends a JSON response with RFC 8631 Link header for API discovery.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	// RFC 8631: Link header for API documentation discovery
	w.Header().Set("Link", `</v1/openapi.json>; rel="service-desc"`)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// respondError sends an error response.
func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// respondMethodNotAllowed sends a 405 Method Not Allowed response.
func (s *Server) respondMethodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	s.respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
		"method not allowed")
}
