package search

import (
	"context"
	"fmt"
)

// Result is a single search hit.
type Result struct {
	Title   string
	URL     string
	Snippet string
}

// Options controls one search call.
type Options struct {
	// Region is a TLD-style region hint ("com", "co.uk", "com.pk").
	Region string
	// Limit caps the number of results returned.
	Limit int
	// Offset skips past results already consumed by earlier batches.
	Offset int
}

// Provider abstracts an external search engine.
type Provider interface {
	Search(ctx context.Context, query string, opts Options) ([]Result, error)
}

// SearchError wraps a failed search call. The accumulation loop counts it
// against the attempt budget and continues.
type SearchError struct {
	Query string
	Err   error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search %q failed: %v", e.Query, e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}
