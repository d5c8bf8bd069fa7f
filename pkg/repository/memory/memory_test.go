package memory_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
	"github.com/plugsmith/plugsmith/pkg/domain/types"
	"github.com/plugsmith/plugsmith/pkg/repository/memory"
)

func TestVectorIndex(t *testing.T) {
	ctx := context.Background()
	index := memory.NewVectorIndex()

	gt.NoError(t, index.Upsert(ctx, []*model.EmbeddingVector{
		{DocumentID: "x", Values: []float32{1, 0, 0}, Text: "x axis"},
		{DocumentID: "y", Values: []float32{0, 1, 0}, Text: "y axis"},
		{DocumentID: "xy", Values: []float32{1, 1, 0}, Text: "diagonal"},
		{DocumentID: "z", Values: []float32{0, 0, 1}, Text: "z axis"},
	})).Required()

	t.Run("orders by cosine similarity", func(t *testing.T) {
		results, err := index.Query(ctx, []float32{1, 0.1, 0}, 3)
		gt.NoError(t, err).Required()
		gt.Array(t, results).Length(3).Required()
		gt.Value(t, results[0].DocumentID).Equal("x")
		gt.Value(t, results[1].DocumentID).Equal("xy")
		gt.Value(t, results[0].Text).Equal("x axis")
	})

	t.Run("k larger than corpus returns everything", func(t *testing.T) {
		results, err := index.Query(ctx, []float32{1, 0, 0}, 10)
		gt.NoError(t, err).Required()
		gt.Array(t, results).Length(4)
	})

	t.Run("upsert replaces by document ID", func(t *testing.T) {
		gt.NoError(t, index.Upsert(ctx, []*model.EmbeddingVector{
			{DocumentID: "z", Values: []float32{1, 0, 0}, Text: "moved"},
		})).Required()

		results, err := index.Query(ctx, []float32{1, 0, 0}, 10)
		gt.NoError(t, err).Required()
		gt.Array(t, results).Length(4)
	})

	t.Run("results are copies", func(t *testing.T) {
		results, err := index.Query(ctx, []float32{0, 1, 0}, 1)
		gt.NoError(t, err).Required()
		results[0].Values[0] = 99

		again, err := index.Query(ctx, []float32{0, 1, 0}, 1)
		gt.NoError(t, err).Required()
		gt.Value(t, again[0].Values[0]).Equal(float32(0))
	})

	t.Run("empty index returns no results", func(t *testing.T) {
		results, err := memory.NewVectorIndex().Query(ctx, []float32{1}, 3)
		gt.NoError(t, err).Required()
		gt.Array(t, results).Length(0)
	})

	t.Run("missing document ID is rejected", func(t *testing.T) {
		err := index.Upsert(ctx, []*model.EmbeddingVector{{Values: []float32{1}}})
		gt.Error(t, err).Is(model.ErrIndexUnavailable)
	})
}

func TestBlobStore(t *testing.T) {
	ctx := context.Background()
	store := memory.NewBlobStore()

	t.Run("put then get", func(t *testing.T) {
		obj := model.NewStoredObject(types.ArchiveKey("hello"), []byte("zip bytes"))
		gt.NoError(t, store.Put(ctx, obj)).Required()

		got, err := store.Get(ctx, "hello.zip")
		gt.NoError(t, err).Required()
		gt.Value(t, got.Data).Equal([]byte("zip bytes"))
		gt.Value(t, got.ContentType).Equal("application/zip")
	})

	t.Run("put overwrites", func(t *testing.T) {
		gt.NoError(t, store.Put(ctx, model.NewStoredObject("a.json", []byte("1")))).Required()
		gt.NoError(t, store.Put(ctx, model.NewStoredObject("a.json", []byte("2")))).Required()

		got, err := store.Get(ctx, "a.json")
		gt.NoError(t, err).Required()
		gt.Value(t, string(got.Data)).Equal("2")
	})

	t.Run("missing key is not found", func(t *testing.T) {
		_, err := store.Get(ctx, "missing.zip")
		gt.Error(t, err).Is(model.ErrNotFound)
	})

	t.Run("invalid key is a storage error", func(t *testing.T) {
		err := store.Put(ctx, model.NewStoredObject("../escape", []byte("x")))
		gt.Error(t, err).Is(model.ErrStorage)
	})
}
