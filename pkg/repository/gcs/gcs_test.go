package gcs_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
	"github.com/plugsmith/plugsmith/pkg/domain/types"
	"github.com/plugsmith/plugsmith/pkg/repository/gcs"
)

func TestStore(t *testing.T) {
	bucket := os.Getenv("TEST_GCS_BUCKET")
	if bucket == "" {
		t.Skip("TEST_GCS_BUCKET not set")
	}

	ctx := context.Background()
	store, err := gcs.New(ctx, bucket, gcs.WithPrefix(fmt.Sprintf("test/%d", time.Now().UnixNano())))
	gt.NoError(t, err).Required()
	t.Cleanup(func() { _ = store.Close() })

	t.Run("put then get keeps content type", func(t *testing.T) {
		obj := model.NewStoredObject(types.BlueprintKey("hello"), []byte(`{"steps":[]}`))
		gt.NoError(t, store.Put(ctx, obj)).Required()

		got, err := store.Get(ctx, obj.Key)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Data).Equal(obj.Data)
		gt.Value(t, got.ContentType).Equal("application/json")
	})

	t.Run("missing object is not found", func(t *testing.T) {
		_, err := store.Get(ctx, "missing.zip")
		gt.Error(t, err).Is(model.ErrNotFound)
	})
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := gcs.New(context.Background(), "")
	gt.Error(t, err)
}
