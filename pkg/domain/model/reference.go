package model

import "github.com/m-mizutani/goerr/v2"

// EmbeddingDimension is the dimension of the embedding vector.
// Gemini text-embedding-004 uses 768 dimensions; the OpenAI embedder is asked for the same size.
const EmbeddingDimension = 768

// ReferenceDocument is one retrievable best-practice snippet
type ReferenceDocument struct {
	ID   string `toml:"id"`
	Text string `toml:"text"`
}

// Validate checks that the document has both an ID and text
func (d *ReferenceDocument) Validate() error {
	if d.ID == "" {
		return goerr.New("reference document ID is required")
	}
	if d.Text == "" {
		return goerr.New("reference document text is required", goerr.V("id", d.ID))
	}
	return nil
}

// EmbeddingVector is the stored vector of a ReferenceDocument.
// Text is denormalized so that a query result can be used without another lookup.
type EmbeddingVector struct {
	DocumentID string
	Values     []float32
	Text       string
}
