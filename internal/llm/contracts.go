package llm

import "context"

// GenerateRequest is one text-generation call. Instruction carries the
// full task description; Input is the payload (consolidated context or a
// serialized report). ForceJSON asks the provider for a JSON-object
// response where supported.
type GenerateRequest struct {
	Instruction string
	Input       string
	ForceJSON   bool
}

// Generator is the text-generation capability the pipeline depends on.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// Embedder turns texts into vectors for the retrieval index.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
