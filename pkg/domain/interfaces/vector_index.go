package interfaces

import (
	"context"

	"github.com/plugsmith/plugsmith/pkg/domain/model"
)

// VectorIndex stores embedding vectors and answers nearest-neighbor queries
type VectorIndex interface {
	// Upsert stores vectors keyed by DocumentID, replacing existing entries
	Upsert(ctx context.Context, vectors []*model.EmbeddingVector) error

	// Query performs vector similarity search using cosine distance.
	// Returns up to k entries ordered by similarity as reported by the index.
	Query(ctx context.Context, vector []float32, k int) ([]*model.EmbeddingVector, error)
}
