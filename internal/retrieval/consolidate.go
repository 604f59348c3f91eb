package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/autoesg/analyzer/internal/common"
	"github.com/autoesg/analyzer/internal/index"
)

// Consolidator runs a query set against an index and merges the hits into
// one bounded context string: the single retrieval pass feeding the
// extractor ("one reduced context, one extraction pass").
type Consolidator struct {
	TopK         int           // chunks per query
	ContextChars int           // total budget for the consolidated string
	WorkerLimit  int           // concurrent queries against the read-only index
	RetryBackoff time.Duration // wait before the single retrieval retry
	Logger       *slog.Logger
}

func NewConsolidator(topK, contextChars, workerLimit int, logger *slog.Logger) *Consolidator {
	if logger == nil {
		logger = slog.Default()
	}
	if workerLimit <= 0 {
		workerLimit = 1
	}
	return &Consolidator{
		TopK:         topK,
		ContextChars: contextChars,
		WorkerLimit:  workerLimit,
		RetryBackoff: 500 * time.Millisecond,
		Logger:       logger,
	}
}

// Consolidate retrieves top-k chunks per query (queries run concurrently,
// results joined in query order), deduplicates passages that surfaced
// under multiple queries, and enforces the character budget by evicting
// whole chunks from the tail of the sequence. Zero usable chunks across
// every query is a no-evidence condition.
func (c *Consolidator) Consolidate(ctx context.Context, idx index.Searcher, queries []string) (string, error) {
	if len(queries) == 0 {
		return "", fmt.Errorf("empty query set: %w", common.ErrInvalidInput)
	}

	perQuery := make([][]index.Result, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.WorkerLimit)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			results, err := c.searchWithRetry(gctx, idx, q)
			if err != nil {
				return fmt.Errorf("query %d: %w", i+1, err)
			}
			perQuery[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	// Join in query order, dedup by chunk ID (fallback: exact text).
	seenID := make(map[string]struct{})
	seenText := make(map[string]struct{})
	var kept []index.Chunk
	dropped := 0
	for _, results := range perQuery {
		for _, r := range results {
			if r.Chunk.ID != "" {
				if _, dup := seenID[r.Chunk.ID]; dup {
					dropped++
					continue
				}
				seenID[r.Chunk.ID] = struct{}{}
			}
			if _, dup := seenText[r.Chunk.Text]; dup {
				dropped++
				continue
			}
			seenText[r.Chunk.Text] = struct{}{}
			kept = append(kept, r.Chunk)
		}
	}

	if len(kept) == 0 {
		c.Logger.Warn("retrieval.consolidate.no_evidence", "queries", len(queries))
		return "", fmt.Errorf("all %d queries returned nothing: %w", len(queries), common.ErrNoEvidence)
	}

	// Budget: evict whole chunks, least-relevant (tail) first.
	evicted := 0
	for len(kept) > 1 && renderedLen(kept) > c.ContextChars {
		kept = kept[:len(kept)-1]
		evicted++
	}

	c.Logger.Info("retrieval.consolidate.ok",
		"queries", len(queries),
		"chunks", len(kept),
		"deduplicated", dropped,
		"evicted", evicted,
		"context_chars", renderedLen(kept),
	)
	return render(kept), nil
}

// searchWithRetry retries a failed search exactly once: index reads are
// idempotent, generation calls are not.
func (c *Consolidator) searchWithRetry(ctx context.Context, idx index.Searcher, query string) ([]index.Result, error) {
	results, err := idx.Search(ctx, query, c.TopK)
	if err == nil {
		return results, nil
	}
	c.Logger.Warn("retrieval.search.retry", "error", err)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(c.RetryBackoff):
	}
	return idx.Search(ctx, query, c.TopK)
}

func render(chunks []index.Chunk) string {
	var b strings.Builder
	for i, ch := range chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "### CHUNK %d\n%s", i+1, ch.Text)
	}
	return b.String()
}

func renderedLen(chunks []index.Chunk) int {
	return len(render(chunks))
}
