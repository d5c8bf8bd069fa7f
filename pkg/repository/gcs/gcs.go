package gcs

import (
	"context"
	"errors"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/plugsmith/plugsmith/pkg/domain/interfaces"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
	"github.com/plugsmith/plugsmith/pkg/domain/types"
	"github.com/plugsmith/plugsmith/pkg/utils/safe"
)

// Store is a BlobStore backed by a Cloud Storage bucket
type Store struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ interfaces.BlobStore = &Store{}

type Option func(*Store)

// WithPrefix stores objects under prefix/ inside the bucket
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = strings.Trim(prefix, "/")
	}
}

// New creates a store using application default credentials
func New(ctx context.Context, bucket string, opts ...Option) (*Store, error) {
	if bucket == "" {
		return nil, goerr.New("GCS bucket is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	s := &Store{client: client, bucket: bucket}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) objectName(key types.ObjectKey) string {
	if s.prefix == "" {
		return key.String()
	}
	return s.prefix + "/" + key.String()
}

func (s *Store) Put(ctx context.Context, obj *model.StoredObject) error {
	if err := obj.Key.Validate(); err != nil {
		return goerr.Wrap(model.ErrStorage, "invalid object key", goerr.V(model.ObjectKeyKey, obj.Key))
	}

	w := s.client.Bucket(s.bucket).Object(s.objectName(obj.Key)).NewWriter(ctx)
	w.ContentType = obj.ContentType

	if _, err := w.Write(obj.Data); err != nil {
		safe.Close(ctx, w)
		return goerr.Wrap(model.ErrStorage, "failed to write object",
			goerr.V(model.ObjectKeyKey, obj.Key), goerr.V("cause", err.Error()))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(model.ErrStorage, "failed to finalize object",
			goerr.V(model.ObjectKeyKey, obj.Key), goerr.V("cause", err.Error()))
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key types.ObjectKey) (*model.StoredObject, error) {
	r, err := s.client.Bucket(s.bucket).Object(s.objectName(key)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, goerr.Wrap(model.ErrNotFound, "object not found", goerr.V(model.ObjectKeyKey, key))
		}
		return nil, goerr.Wrap(model.ErrStorage, "failed to open object",
			goerr.V(model.ObjectKeyKey, key), goerr.V("cause", err.Error()))
	}
	defer safe.Close(ctx, r)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(model.ErrStorage, "failed to read object",
			goerr.V(model.ObjectKeyKey, key), goerr.V("cause", err.Error()))
	}

	contentType := r.Attrs.ContentType
	if contentType == "" {
		contentType = key.ContentType()
	}

	return &model.StoredObject{Key: key, Data: data, ContentType: contentType}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
