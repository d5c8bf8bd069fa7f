package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/plugsmith/plugsmith/pkg/domain/interfaces"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
	"google.golang.org/api/iterator"
)

// DefaultCollection holds one document per reference passage
const DefaultCollection = "references"

// EmbeddingField is the vector field searched with FindNearest
const EmbeddingField = "Embedding"

type Firestore struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.VectorIndex = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var (
		client *firestore.Client
		err    error
	)
	if databaseID == "" {
		client, err = firestore.NewClient(ctx, projectID)
	} else {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{client: client}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// CollectionName returns the collection name after applying the prefix
func (f *Firestore) CollectionName() string {
	if f.collectionPrefix != "" {
		return f.collectionPrefix + "_" + DefaultCollection
	}
	return DefaultCollection
}

func (f *Firestore) collection() *firestore.CollectionRef {
	return f.client.Collection(f.CollectionName())
}

// referenceDoc is the Firestore document representation of model.EmbeddingVector.
// Embedding is stored as firestore.Vector32 so that FindNearest vector search works.
type referenceDoc struct {
	DocumentID string             `firestore:"DocumentID"`
	Text       string             `firestore:"Text"`
	Embedding  firestore.Vector32 `firestore:"Embedding,omitempty"`
}

func toReferenceDoc(v *model.EmbeddingVector) *referenceDoc {
	doc := &referenceDoc{
		DocumentID: v.DocumentID,
		Text:       v.Text,
	}
	if len(v.Values) > 0 {
		doc.Embedding = firestore.Vector32(v.Values)
	}
	return doc
}

func fromReferenceDoc(d *referenceDoc) *model.EmbeddingVector {
	v := &model.EmbeddingVector{
		DocumentID: d.DocumentID,
		Text:       d.Text,
	}
	if len(d.Embedding) > 0 {
		v.Values = []float32(d.Embedding)
	}
	return v
}

// Upsert writes vectors keyed by DocumentID through a BulkWriter
func (f *Firestore) Upsert(ctx context.Context, vectors []*model.EmbeddingVector) error {
	for _, v := range vectors {
		if v == nil || v.DocumentID == "" {
			return goerr.Wrap(model.ErrIndexUnavailable, "vector document ID is required")
		}
	}

	bw := f.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(vectors))
	for _, v := range vectors {
		job, err := bw.Set(f.collection().Doc(v.DocumentID), toReferenceDoc(v))
		if err != nil {
			bw.End()
			return goerr.Wrap(model.ErrIndexUnavailable, "failed to enqueue vector write",
				goerr.V("cause", err.Error()), goerr.V("id", v.DocumentID))
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			return goerr.Wrap(model.ErrIndexUnavailable, "failed to write vector",
				goerr.V("cause", err.Error()), goerr.V("id", vectors[i].DocumentID))
		}
	}
	return nil
}

// Query runs a cosine FindNearest search
func (f *Firestore) Query(ctx context.Context, vector []float32, k int) ([]*model.EmbeddingVector, error) {
	vq := f.collection().
		FindNearest(EmbeddingField, firestore.Vector32(vector), k, firestore.DistanceMeasureCosine, nil)

	iter := vq.Documents(ctx)
	defer iter.Stop()

	results := make([]*model.EmbeddingVector, 0, k)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(model.ErrIndexUnavailable, "failed to iterate vector search results",
				goerr.V("cause", err.Error()))
		}

		var d referenceDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(model.ErrIndexUnavailable, "failed to unmarshal reference document",
				goerr.V("cause", err.Error()), goerr.V("id", doc.Ref.ID))
		}
		results = append(results, fromReferenceDoc(&d))
	}

	return results, nil
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
