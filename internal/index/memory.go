package index

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/autoesg/analyzer/internal/llm"
)

// EmbeddingBuilder chunks document text and embeds every chunk through the
// Embedder, producing an in-memory cosine-similarity index.
type EmbeddingBuilder struct {
	embedder     llm.Embedder
	chunkSize    int
	chunkOverlap int
	logger       *slog.Logger
}

func NewEmbeddingBuilder(embedder llm.Embedder, chunkSize, chunkOverlap int, logger *slog.Logger) *EmbeddingBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmbeddingBuilder{
		embedder:     embedder,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		logger:       logger,
	}
}

// Build implements Builder. An empty or garbled document produces an index
// with no chunks; searches against it return no results, which downstream
// consolidation reports as a no-evidence condition.
func (b *EmbeddingBuilder) Build(ctx context.Context, text string) (Searcher, error) {
	parts := SplitText(text, b.chunkSize, b.chunkOverlap)
	b.logger.Info("index.build.start", "chunks", len(parts))
	if len(parts) == 0 {
		return &memoryIndex{embedder: b.embedder}, nil
	}

	vecs, err := b.embedder.Embed(ctx, parts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}

	chunks := make([]Chunk, len(parts))
	for i, p := range parts {
		chunks[i] = Chunk{ID: fmt.Sprintf("chunk-%04d", i), Ordinal: i, Text: p}
	}
	b.logger.Info("index.build.ok", "chunks", len(chunks))
	return &memoryIndex{embedder: b.embedder, chunks: chunks, vectors: vecs}, nil
}

// memoryIndex is read-only after Build and safe for concurrent Search.
type memoryIndex struct {
	embedder llm.Embedder
	chunks   []Chunk
	vectors  [][]float32
}

func (m *memoryIndex) Search(ctx context.Context, query string, k int) ([]Result, error) {
	if len(m.chunks) == 0 || k <= 0 {
		return nil, nil
	}
	qvecs, err := m.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	qv := qvecs[0]

	results := make([]Result, 0, len(m.chunks))
	for i, cv := range m.vectors {
		results = append(results, Result{Chunk: m.chunks[i], Score: cosine(qv, cv)})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
