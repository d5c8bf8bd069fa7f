package usecase

import (
	"strings"
	"time"

	"github.com/plugsmith/plugsmith/pkg/corpus"
	"github.com/plugsmith/plugsmith/pkg/domain/interfaces"
	"github.com/plugsmith/plugsmith/pkg/service/plugin"
	"github.com/plugsmith/plugsmith/pkg/service/prompt"
)

// DefaultTopK is the number of reference passages retrieved per request
const DefaultTopK = 3

// DefaultIngestConcurrency bounds parallel embedding calls during ingestion
const DefaultIngestConcurrency = 4

type UseCases struct {
	generator    interfaces.Generator
	blobs        interfaces.BlobStore
	embedder     interfaces.Embedder
	index        interfaces.VectorIndex
	corpus       *corpus.Corpus
	assembler    *plugin.Assembler
	tokenCounter interfaces.TokenCounter
	topK         int
	concurrency  int
}

type Option func(*UseCases)

// WithRetrieval enables retrieval of reference passages. Without it the
// prompt is built with an empty context block.
func WithRetrieval(embedder interfaces.Embedder, index interfaces.VectorIndex) Option {
	return func(uc *UseCases) {
		uc.embedder = embedder
		uc.index = index
	}
}

// WithCorpus replaces the embedded reference corpus used by Ingest
func WithCorpus(c *corpus.Corpus) Option {
	return func(uc *UseCases) {
		uc.corpus = c
	}
}

// WithTopK overrides DefaultTopK
func WithTopK(k int) Option {
	return func(uc *UseCases) {
		uc.topK = k
	}
}

// WithIngestConcurrency overrides DefaultIngestConcurrency. Values below 1
// keep the default.
func WithIngestConcurrency(n int) Option {
	return func(uc *UseCases) {
		if n < 1 {
			return
		}
		uc.concurrency = n
	}
}

// WithClock sets the clock used when assembling bundles
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.assembler = plugin.NewAssembler(plugin.WithClock(now))
	}
}

// WithTokenCounter replaces the prompt token counter
func WithTokenCounter(counter interfaces.TokenCounter) Option {
	return func(uc *UseCases) {
		uc.tokenCounter = counter
	}
}

func New(generator interfaces.Generator, blobs interfaces.BlobStore, opts ...Option) *UseCases {
	uc := &UseCases{
		generator:    generator,
		blobs:        blobs,
		corpus:       corpus.Default(),
		assembler:    plugin.NewAssembler(),
		tokenCounter: prompt.NewTokenCounter(),
		topK:         DefaultTopK,
		concurrency:  DefaultIngestConcurrency,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// RetrievalEnabled reports whether an embedder and a vector index are configured
func (uc *UseCases) RetrievalEnabled() bool {
	return uc.embedder != nil && uc.index != nil
}

func trimBase(baseURL string) string {
	return strings.TrimRight(baseURL, "/")
}
