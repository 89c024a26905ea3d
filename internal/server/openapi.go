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
	"net/http"
)

// OpenAPISpec represents the OpenAPI v3 specification.
type OpenAPISpec struct {
	OpenAPI    string                 `json:"openapi"`
	Info       OpenAPIInfo            `json:"info"`
	Servers    []OpenAPIServer        `json:"servers"`
	Paths      map[string]OpenAPIPath `json:"paths"`
	Components OpenAPIComponents      `json:"components"`
}

// OpenAPIInfo contains API metadata.
type OpenAPIInfo struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

// OpenAPIServer describes a server.
type OpenAPIServer struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// OpenAPIPath contains operations for a path.
type OpenAPIPath struct {
	Get  *OpenAPIOperation `json:"get,omitempty"`
	Post *OpenAPIOperation `json:"post,omitempty"`
}

// OpenAPIOperation describes an API operation.
type OpenAPIOperation struct {
	Summary     string                     `json:"summary"`
	Description string                     `json:"description,omitempty"`
	OperationID string                     `json:"operationId"`
	Tags        []string                   `json:"tags,omitempty"`
	RequestBody *OpenAPIRequestBody        `json:"requestBody,omitempty"`
	Responses   map[string]OpenAPIResponse `json:"responses"`
}

// OpenAPIRequestBody describes a request body.
type OpenAPIRequestBody struct {
	Description string                      `json:"description,omitempty"`
	Required    bool                        `json:"required"`
	Content     map[string]OpenAPIMediaType `json:"content"`
}

// OpenAPIResponse describes a response.
type OpenAPIResponse struct {
	Description string                      `json:"description"`
	Content     map[string]OpenAPIMediaType `json:"content,omitempty"`
}

// OpenAPIMediaType describes a media type.
type OpenAPIMediaType struct {
	Schema OpenAPISchema `json:"schema"`
}

// OpenAPISchema describes a schema.
type OpenAPISchema struct {
	Type        string                   `json:"type,omitempty"`
	Format      string                   `json:"format,omitempty"`
	Description string                   `json:"description,omitempty"`
	Properties  map[string]OpenAPISchema `json:"properties,omitempty"`
	Items       *OpenAPISchema           `json:"items,omitempty"`
	Required    []string                 `json:"required,omitempty"`
	Ref         string                   `json:"$ref,omitempty"`
}

// OpenAPIComponents contains reusable components.
type OpenAPIComponents struct {
	Schemas map[string]OpenAPISchema `json:"schemas"`
}

// handleOpenAPI handles the GET /v1/openapi.json endpoint.
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, BuildOpenAPISpec())
}

// jsonContent references a component schema as an application/json body.
func jsonContent(schema string) map[string]OpenAPIMediaType {
	return map[string]OpenAPIMediaType{
		"application/json": {
			Schema: OpenAPISchema{Ref: "#/components/schemas/" + schema},
		},
	}
}

// errorResponse describes an error status.
func errorResponse(description string) OpenAPIResponse {
	return OpenAPIResponse{
		Description: description,
		Content:     jsonContent("ErrorResponse"),
	}
}

// BuildOpenAPISpec constructs the OpenAPI v3 specification.
// This is exported so it can be used to generate static documentation.
func BuildOpenAPISpec() OpenAPISpec {
	return OpenAPISpec{
		OpenAPI: "3.0.3",
		Info: OpenAPIInfo{
			Title:       "pgEdge Search Server API",
			Description: "REST API for multilingual document search over topic and term-weighting models",
			Version:     "1.0.0",
		},
		Servers: []OpenAPIServer{
			{
				URL:         "/v1",
				Description: "API v1",
			},
		},
		Paths: map[string]OpenAPIPath{
			"/health": {
				Get: &OpenAPIOperation{
					Summary:     "Health check",
					Description: "Check if the server is running and healthy",
					OperationID: "getHealth",
					Tags:        []string{"System"},
					Responses: map[string]OpenAPIResponse{
						"200": {
							Description: "Server is healthy",
							Content:     jsonContent("HealthResponse"),
						},
					},
				},
			},
			"/languages": {
				Get: &OpenAPIOperation{
					Summary:     "List languages",
					Description: "Get the languages with a loaded model and their corpus statistics",
					OperationID: "listLanguages",
					Tags:        []string{"Search"},
					Responses: map[string]OpenAPIResponse{
						"200": {
							Description: "List of languages",
							Content:     jsonContent("LanguagesResponse"),
						},
					},
				},
			},
			"/search": {
				Post: &OpenAPIOperation{
					Summary: "Search documents",
					Description: "Detect the query language, normalize the query and return " +
						"up to 10 matching documents with a snippet",
					OperationID: "search",
					Tags:        []string{"Search"},
					RequestBody: &OpenAPIRequestBody{
						Description: "Search request",
						Required:    true,
						Content:     jsonContent("SearchRequest"),
					},
					Responses: map[string]OpenAPIResponse{
						"200": {
							Description: "Search results",
							Content:     jsonContent("SearchResponse"),
						},
						"400": errorResponse("Invalid request"),
						"429": errorResponse("Rate limit exceeded"),
						"500": errorResponse("Server error"),
						"503": errorResponse("Morphological analyzer unavailable"),
					},
				},
			},
		},
		Components: OpenAPIComponents{
			Schemas: map[string]OpenAPISchema{
				"HealthResponse": {
					Type: "object",
					Properties: map[string]OpenAPISchema{
						"status": {
							Type:        "string",
							Description: "Health status",
						},
					},
					Required: []string{"status"},
				},
				"LanguagesResponse": {
					Type: "object",
					Properties: map[string]OpenAPISchema{
						"languages": {
							Type:        "array",
							Description: "Loaded languages",
							Items: &OpenAPISchema{
								Ref: "#/components/schemas/LanguageInfo",
							},
						},
					},
					Required: []string{"languages"},
				},
				"LanguageInfo": {
					Type: "object",
					Properties: map[string]OpenAPISchema{
						"name":       {Type: "string", Description: "Language name"},
						"code":       {Type: "string", Description: "Language code"},
						"model":      {Type: "string", Description: "Ranking model (topic or weighting)"},
						"documents":  {Type: "integer", Description: "Number of indexed documents"},
						"vocabulary": {Type: "integer", Description: "Number of dictionary terms"},
						"terms":      {Type: "integer", Description: "Number of distinct corpus terms"},
						"topics":     {Type: "integer", Description: "Number of topics (topic model only)"},
					},
					Required: []string{"name", "code", "model", "documents", "vocabulary"},
				},
				"SearchRequest": {
					Type: "object",
					Properties: map[string]OpenAPISchema{
						"query": {
							Type:        "string",
							Description: "Free-text query in any supported language",
						},
					},
					Required: []string{"query"},
				},
				"SearchResponse": {
					Type: "object",
					Properties: map[string]OpenAPISchema{
						"language": {
							Type:        "string",
							Description: "Detected query language",
						},
						"terms": {
							Type:        "array",
							Description: "Normalized query terms",
							Items:       &OpenAPISchema{Type: "string"},
						},
						"results": {
							Type:        "array",
							Description: "Matching documents in rank order",
							Items: &OpenAPISchema{
								Ref: "#/components/schemas/Result",
							},
						},
					},
					Required: []string{"language", "terms", "results"},
				},
				"Result": {
					Type: "object",
					Properties: map[string]OpenAPISchema{
						"url":     {Type: "string", Description: "Public document URL"},
						"title":   {Type: "string", Description: "Document title"},
						"snippet": {Type: "string", Description: "Best matching sentences"},
					},
					Required: []string{"url", "title", "snippet"},
				},
				"ErrorResponse": {
					Type: "object",
					Properties: map[string]OpenAPISchema{
						"error": {
							Ref: "#/components/schemas/ErrorDetail",
						},
					},
					Required: []string{"error"},
				},
				"ErrorDetail": {
					Type: "object",
					Properties: map[string]OpenAPISchema{
						"code": {
							Type:        "string",
							Description: "Error code",
						},
						"message": {
							Type:        "string",
							Description: "Error message",
						},
					},
					Required: []string{"code", "message"},
				},
			},
		},
	}
}
