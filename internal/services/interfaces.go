package services

import (
	"context"
	"encoding/json"

	"insightcast/internal/core"
	"insightcast/internal/llm"
)

// Embedder turns text into a vector for similarity search
type Embedder interface {
	Embed(ctx context.Context, text string, purpose llm.Purpose) ([]float64, error)
}

// Generator sends one prompt, with an optional attachment, to the language model
type Generator interface {
	Generate(ctx context.Context, prompt, attachment string) (llm.Reply, error)
}

// Searcher returns raw section payloads nearest to an embedding
type Searcher interface {
	Search(ctx context.Context, embedding []float64, k int) ([]json.RawMessage, error)
}

// ContextRetriever supplies the shared deep-retrieval context for the generation fan-outs
type ContextRetriever interface {
	Deep(ctx context.Context, selection string) []core.Section
}
