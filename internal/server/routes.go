//-------------------------------------------------------------------------
//
// pgEdge Search Server
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package server

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// API v1 routes
	s.mux.HandleFunc("GET /v1/openapi.json", s.handleOpenAPI)
	s.mux.HandleFunc("GET /v1/health", s.handleHealth)
	s.mux.HandleFunc("GET /v1/languages", s.handleLanguages)
	s.mux.Handle("POST /v1/search", s.limit(s.handleSearch))
}
