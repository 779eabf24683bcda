// Package mcp exposes inkling's search over the Model Context Protocol so
// AI assistants can query the local index.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// ErrEmptyQuery is returned by the search tool for blank queries.
var ErrEmptyQuery = errors.New("mcp: query must not be empty")
