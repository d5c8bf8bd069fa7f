package model

import "github.com/plugsmith/plugsmith/pkg/domain/types"

// StoredObject is a persisted archive or descriptor
type StoredObject struct {
	Key         types.ObjectKey
	Data        []byte
	ContentType string
}

// NewStoredObject creates an object whose content type is inferred from the key
func NewStoredObject(key types.ObjectKey, data []byte) *StoredObject {
	return &StoredObject{
		Key:         key,
		Data:        data,
		ContentType: key.ContentType(),
	}
}
