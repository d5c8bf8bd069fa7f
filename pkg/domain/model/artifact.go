package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/plugsmith/plugsmith/pkg/domain/types"
)

// ArtifactFile is one file in a plugin bundle
type ArtifactFile struct {
	Path    string         `json:"path"`
	Content string         `json:"content"`
	Type    types.FileType `json:"type"`
}

// PluginMetadata is extracted from the plugin header of generated code
type PluginMetadata struct {
	Name        string
	Version     string
	Description string
	Author      string
}

// Bundle is the complete output package for one request
type Bundle struct {
	Slug     types.Slug
	Name     string
	Metadata PluginMetadata
	Files    []*ArtifactFile
}

// File returns the file at path, or nil
func (b *Bundle) File(path string) *ArtifactFile {
	for _, f := range b.Files {
		if f.Path == path {
			return f
		}
	}
	return nil
}

// Validate checks the slug, file types and path uniqueness
func (b *Bundle) Validate() error {
	if err := b.Slug.Validate(); err != nil {
		return goerr.Wrap(err, "invalid bundle slug")
	}

	seen := make(map[string]struct{}, len(b.Files))
	for _, f := range b.Files {
		if f.Path == "" {
			return goerr.New("artifact path is required", goerr.V(SlugKey, b.Slug))
		}
		if !f.Type.IsValid() {
			return goerr.New("invalid artifact type", goerr.V(PathKey, f.Path), goerr.V("type", f.Type))
		}
		if _, ok := seen[f.Path]; ok {
			return goerr.Wrap(ErrDuplicatePath, "artifact path is not unique", goerr.V(PathKey, f.Path))
		}
		seen[f.Path] = struct{}{}
	}
	return nil
}
