// Package memory holds process-local implementations of the vector index and
// blob store. Contents are lost when the process exits.
package memory

import (
	"github.com/plugsmith/plugsmith/pkg/domain/interfaces"
)

var (
	_ interfaces.VectorIndex = &vectorIndex{}
	_ interfaces.BlobStore   = &blobStore{}
)

// NewVectorIndex returns an empty brute-force cosine index
func NewVectorIndex() interfaces.VectorIndex {
	return newVectorIndex()
}

// NewBlobStore returns an empty blob store
func NewBlobStore() interfaces.BlobStore {
	return newBlobStore()
}
