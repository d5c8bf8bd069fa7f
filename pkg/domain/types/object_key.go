package types

import (
	"path"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// ObjectKey is the name of a persisted object in the blob store
type ObjectKey string

var objectKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// ArchiveKey returns the key of the plugin archive for slug
func ArchiveKey(slug Slug) ObjectKey {
	return ObjectKey(string(slug) + ".zip")
}

// BlueprintKey returns the key of the test-environment descriptor for slug
func BlueprintKey(slug Slug) ObjectKey {
	return ObjectKey(string(slug) + "-blueprint.json")
}

// Validate checks if the key is a single URL-path-safe segment
func (k ObjectKey) Validate() error {
	if k == "" {
		return goerr.New("object key cannot be empty")
	}
	if !objectKeyPattern.MatchString(string(k)) || strings.Contains(string(k), "..") {
		return goerr.New("object key must be a single URL-path-safe segment", goerr.V("key", k))
	}
	return nil
}

// ContentType infers the content type from the key's extension
func (k ObjectKey) ContentType() string {
	switch path.Ext(string(k)) {
	case ".zip":
		return "application/zip"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// String returns the string representation of ObjectKey
func (k ObjectKey) String() string {
	return string(k)
}
