package pgvector_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
	"github.com/plugsmith/plugsmith/pkg/repository/pgvector"
)

func TestStore(t *testing.T) {
	dsn := os.Getenv("TEST_PGVECTOR_DSN")
	if dsn == "" {
		t.Skip("TEST_PGVECTOR_DSN not set")
	}

	ctx := context.Background()
	table := fmt.Sprintf("test_refs_%d", time.Now().UnixNano())
	store, err := pgvector.New(ctx, dsn, pgvector.WithTable(table), pgvector.WithDimension(3))
	gt.NoError(t, err).Required()
	t.Cleanup(store.Close)

	gt.NoError(t, store.Migrate(ctx)).Required()

	gt.NoError(t, store.Upsert(ctx, []*model.EmbeddingVector{
		{DocumentID: "x", Values: []float32{1, 0, 0}, Text: "x axis"},
		{DocumentID: "y", Values: []float32{0, 1, 0}, Text: "y axis"},
		{DocumentID: "z", Values: []float32{0, 0, 1}, Text: "z axis"},
	})).Required()

	t.Run("nearest first", func(t *testing.T) {
		results, err := store.Query(ctx, []float32{0.1, 1, 0}, 2)
		gt.NoError(t, err).Required()
		gt.Array(t, results).Length(2).Required()
		gt.Value(t, results[0].DocumentID).Equal("y")
		gt.Value(t, results[0].Text).Equal("y axis")
		gt.Array(t, results[0].Values).Length(3)
	})

	t.Run("upsert replaces text", func(t *testing.T) {
		gt.NoError(t, store.Upsert(ctx, []*model.EmbeddingVector{
			{DocumentID: "y", Values: []float32{0, 1, 0}, Text: "updated"},
		})).Required()

		results, err := store.Query(ctx, []float32{0, 1, 0}, 1)
		gt.NoError(t, err).Required()
		gt.Value(t, results[0].Text).Equal("updated")
	})
}

func TestNew_RejectsBadTableName(t *testing.T) {
	_, err := pgvector.New(context.Background(), "postgres://localhost/none", pgvector.WithTable("drop table;"))
	gt.Error(t, err)
}
