package interfaces

import (
	"context"

	"github.com/plugsmith/plugsmith/pkg/domain/model"
	"github.com/plugsmith/plugsmith/pkg/domain/types"
)

// BlobStore persists archives and descriptors by key
type BlobStore interface {
	// Put writes obj, replacing any object with the same key
	Put(ctx context.Context, obj *model.StoredObject) error

	// Get returns the object or an error wrapping model.ErrNotFound
	Get(ctx context.Context, key types.ObjectKey) (*model.StoredObject, error)
}
