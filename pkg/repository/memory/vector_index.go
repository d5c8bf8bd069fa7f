package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
)

type vectorIndex struct {
	mu      sync.RWMutex
	entries map[string]*model.EmbeddingVector
}

func newVectorIndex() *vectorIndex {
	return &vectorIndex{
		entries: make(map[string]*model.EmbeddingVector),
	}
}

func copyVector(v *model.EmbeddingVector) *model.EmbeddingVector {
	copied := &model.EmbeddingVector{
		DocumentID: v.DocumentID,
		Text:       v.Text,
	}
	if v.Values != nil {
		copied.Values = make([]float32, len(v.Values))
		copy(copied.Values, v.Values)
	}
	return copied
}

// Upsert replaces entries by DocumentID
func (r *vectorIndex) Upsert(ctx context.Context, vectors []*model.EmbeddingVector) error {
	for _, v := range vectors {
		if v == nil || v.DocumentID == "" {
			return goerr.Wrap(model.ErrIndexUnavailable, "vector document ID is required")
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, v := range vectors {
		r.entries[v.DocumentID] = copyVector(v)
	}
	return nil
}

// Query returns up to k entries ordered by descending cosine similarity
func (r *vectorIndex) Query(ctx context.Context, vector []float32, k int) ([]*model.EmbeddingVector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type scored struct {
		vector *model.EmbeddingVector
		score  float64
	}

	candidates := make([]scored, 0, len(r.entries))
	for _, v := range r.entries {
		if len(v.Values) == 0 {
			continue
		}
		candidates = append(candidates, scored{vector: v, score: cosineSimilarity(vector, v.Values)})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score == candidates[j].score {
			return candidates[i].vector.DocumentID < candidates[j].vector.DocumentID
		}
		return candidates[i].score > candidates[j].score
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	if k < 0 {
		k = 0
	}

	result := make([]*model.EmbeddingVector, k)
	for i := 0; i < k; i++ {
		result[i] = copyVector(candidates[i].vector)
	}
	return result, nil
}

// Len returns the number of stored vectors
func (r *vectorIndex) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}

	return dot / denom
}
