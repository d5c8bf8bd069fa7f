package corpus

import (
	_ "embed"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
)

//go:embed docs.toml
var defaultDocs []byte

// Corpus is the fixed set of reference documents. It is read-only after construction.
type Corpus struct {
	docs []*model.ReferenceDocument
}

type corpusFile struct {
	Documents []*model.ReferenceDocument `toml:"document"`
}

// Default returns the embedded corpus
func Default() *Corpus {
	c, err := Parse(defaultDocs)
	if err != nil {
		panic("embedded corpus is invalid: " + err.Error())
	}
	return c
}

// Load reads a corpus from a TOML file
func Load(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read corpus file", goerr.V("path", path))
	}

	c, err := Parse(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse corpus file", goerr.V("path", path))
	}
	return c, nil
}

// Parse decodes TOML corpus data and validates every document
func Parse(data []byte) (*Corpus, error) {
	var f corpusFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, goerr.Wrap(err, "failed to decode corpus")
	}

	seen := make(map[string]struct{}, len(f.Documents))
	for i, doc := range f.Documents {
		if err := doc.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid reference document", goerr.V("index", i))
		}
		if _, ok := seen[doc.ID]; ok {
			return nil, goerr.New("duplicate reference document ID", goerr.V("id", doc.ID))
		}
		seen[doc.ID] = struct{}{}
	}

	return &Corpus{docs: f.Documents}, nil
}

// New creates a corpus from documents, mainly for tests
func New(docs ...*model.ReferenceDocument) *Corpus {
	return &Corpus{docs: docs}
}

// Documents returns a copy of the documents in declaration order
func (c *Corpus) Documents() []*model.ReferenceDocument {
	result := make([]*model.ReferenceDocument, len(c.docs))
	for i, d := range c.docs {
		copied := *d
		result[i] = &copied
	}
	return result
}

// Len returns the number of documents
func (c *Corpus) Len() int {
	return len(c.docs)
}
