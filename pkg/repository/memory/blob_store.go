package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
	"github.com/plugsmith/plugsmith/pkg/domain/types"
)

type blobStore struct {
	mu      sync.RWMutex
	objects map[types.ObjectKey]*model.StoredObject
}

func newBlobStore() *blobStore {
	return &blobStore{
		objects: make(map[types.ObjectKey]*model.StoredObject),
	}
}

func copyObject(o *model.StoredObject) *model.StoredObject {
	data := make([]byte, len(o.Data))
	copy(data, o.Data)
	return &model.StoredObject{
		Key:         o.Key,
		Data:        data,
		ContentType: o.ContentType,
	}
}

// Put overwrites any object stored under the same key
func (s *blobStore) Put(ctx context.Context, obj *model.StoredObject) error {
	if err := obj.Key.Validate(); err != nil {
		return goerr.Wrap(model.ErrStorage, "invalid object key", goerr.V(model.ObjectKeyKey, obj.Key))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[obj.Key] = copyObject(obj)
	return nil
}

func (s *blobStore) Get(ctx context.Context, key types.ObjectKey) (*model.StoredObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, exists := s.objects[key]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "object not found", goerr.V(model.ObjectKeyKey, key))
	}
	return copyObject(obj), nil
}
