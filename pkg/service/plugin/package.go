package plugin

import (
	"bytes"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/m-mizutani/goerr/v2"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
	"github.com/plugsmith/plugsmith/pkg/domain/types"
)

// Package zips every bundle file under <slug>/<path> with Deflate
func Package(bundle *model.Bundle) ([]byte, error) {
	if err := bundle.Validate(); err != nil {
		return nil, goerr.Wrap(err, "cannot package invalid bundle")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, f := range bundle.Files {
		name := path.Join(bundle.Slug.String(), f.Path)
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:   name,
			Method: zip.Deflate,
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create zip entry", goerr.V(model.PathKey, name))
		}
		if _, err := io.WriteString(w, f.Content); err != nil {
			return nil, goerr.Wrap(err, "failed to write zip entry", goerr.V(model.PathKey, name))
		}
	}

	if err := zw.Close(); err != nil {
		return nil, goerr.Wrap(err, "failed to finalize zip archive")
	}
	return buf.Bytes(), nil
}

// Unpack reads an archive produced by Package. File types are inferred from extensions.
func Unpack(data []byte) (*model.Bundle, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open zip archive")
	}

	bundle := &model.Bundle{}
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() {
			continue
		}

		root, rel, ok := strings.Cut(entry.Name, "/")
		if !ok || rel == "" {
			return nil, goerr.New("zip entry is not under a plugin directory", goerr.V(model.PathKey, entry.Name))
		}
		if bundle.Slug == "" {
			bundle.Slug = types.Slug(root)
		} else if bundle.Slug.String() != root {
			return nil, goerr.New("zip has more than one root directory", goerr.V(model.PathKey, entry.Name))
		}

		content, err := readEntry(entry)
		if err != nil {
			return nil, err
		}
		bundle.Files = append(bundle.Files, &model.ArtifactFile{
			Path:    rel,
			Content: content,
			Type:    fileTypeOf(rel),
		})
	}

	if main := bundle.File(bundle.Slug.String() + ".php"); main != nil {
		bundle.Metadata = ExtractMetadata(main.Content)
		bundle.Name = bundle.Metadata.Name
	}

	if err := bundle.Validate(); err != nil {
		return nil, goerr.Wrap(err, "unpacked bundle is invalid")
	}
	return bundle, nil
}

func readEntry(entry *zip.File) (string, error) {
	rc, err := entry.Open()
	if err != nil {
		return "", goerr.Wrap(err, "failed to open zip entry", goerr.V(model.PathKey, entry.Name))
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read zip entry", goerr.V(model.PathKey, entry.Name))
	}
	return string(raw), nil
}

func fileTypeOf(p string) types.FileType {
	switch path.Ext(p) {
	case ".php":
		return types.FileTypePHP
	case ".css":
		return types.FileTypeCSS
	case ".js":
		return types.FileTypeJS
	case ".md":
		return types.FileTypeMD
	case ".json":
		return types.FileTypeJSON
	default:
		return types.FileTypeTxt
	}
}
