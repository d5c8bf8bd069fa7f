package badger

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/m-mizutani/goerr/v2"
	"github.com/plugsmith/plugsmith/pkg/domain/interfaces"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
	"github.com/plugsmith/plugsmith/pkg/domain/types"
)

const keyPrefix = "object/"

// Store is a BlobStore backed by an embedded Badger database
type Store struct {
	db *badger.DB
}

var _ interfaces.BlobStore = &Store{}

// record is the stored value envelope
type record struct {
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// New opens a database at path. An empty path opens an in-memory database.
func New(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open badger database", goerr.V("path", path))
	}
	return &Store{db: db}, nil
}

func dbKey(key types.ObjectKey) []byte {
	return []byte(keyPrefix + key.String())
}

func (s *Store) Put(ctx context.Context, obj *model.StoredObject) error {
	if err := obj.Key.Validate(); err != nil {
		return goerr.Wrap(model.ErrStorage, "invalid object key", goerr.V(model.ObjectKeyKey, obj.Key))
	}

	raw, err := json.Marshal(record{ContentType: obj.ContentType, Data: obj.Data})
	if err != nil {
		return goerr.Wrap(model.ErrStorage, "failed to encode object", goerr.V(model.ObjectKeyKey, obj.Key))
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(dbKey(obj.Key), raw)
	})
	if err != nil {
		return goerr.Wrap(model.ErrStorage, "failed to write object",
			goerr.V(model.ObjectKeyKey, obj.Key), goerr.V("cause", err.Error()))
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key types.ObjectKey) (*model.StoredObject, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(dbKey(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, goerr.Wrap(model.ErrNotFound, "object not found", goerr.V(model.ObjectKeyKey, key))
		}
		return nil, goerr.Wrap(model.ErrStorage, "failed to read object",
			goerr.V(model.ObjectKeyKey, key), goerr.V("cause", err.Error()))
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, goerr.Wrap(model.ErrStorage, "failed to decode object", goerr.V(model.ObjectKeyKey, key))
	}

	return &model.StoredObject{Key: key, Data: rec.Data, ContentType: rec.ContentType}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
