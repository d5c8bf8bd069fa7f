package embedding

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
)

// Gollem embeds text with a gollem LLM client
type Gollem struct {
	llmClient gollem.LLMClient
	dimension int
}

// GollemOption configures a Gollem embedder
type GollemOption func(*Gollem)

// WithGollemDimension overrides model.EmbeddingDimension
func WithGollemDimension(dim int) GollemOption {
	return func(g *Gollem) {
		g.dimension = dim
	}
}

// NewGollem creates an embedder backed by llmClient
func NewGollem(llmClient gollem.LLMClient, opts ...GollemOption) (*Gollem, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	g := &Gollem{
		llmClient: llmClient,
		dimension: model.EmbeddingDimension,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Embed returns the embedding of text
func (g *Gollem) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := g.llmClient.GenerateEmbedding(ctx, g.dimension, []string{text})
	if err != nil {
		return nil, goerr.Wrap(model.ErrEmbeddingUnavailable, "failed to generate embedding",
			goerr.V("cause", err.Error()))
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, goerr.Wrap(model.ErrEmbeddingUnavailable, "no embedding generated")
	}

	return toFloat32(embeddings[0]), nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}
