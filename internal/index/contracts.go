package index

import "context"

// Chunk is a bounded span of document text treated as an atomic retrieval
// unit. ID is stable within one index build.
type Chunk struct {
	ID      string
	Ordinal int
	Text    string
}

// Result is one ranked hit for a query.
type Result struct {
	Chunk Chunk
	Score float64
}

// Searcher is the retrieval capability the consolidator depends on.
// Implementations must be safe for concurrent reads; the index is
// read-only once built.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]Result, error)
}

// Builder turns raw document text into a queryable index.
type Builder interface {
	Build(ctx context.Context, text string) (Searcher, error)
}
