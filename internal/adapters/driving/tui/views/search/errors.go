package search

import "errors"

var (
	// ErrNoSearchService indicates that no search service was provided.
	ErrNoSearchService = errors.New("search service is required")

	// ErrNoOriginURL is reported when the selected result has no link.
	ErrNoOriginURL = errors.New("result has no origin url")
)
