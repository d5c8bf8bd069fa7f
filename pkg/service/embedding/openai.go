package embedding

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
)

const defaultOpenAIModel = "text-embedding-3-small"

// OpenAI embeds text with the OpenAI embeddings endpoint
type OpenAI struct {
	client    openai.Client
	model     string
	dimension int
}

// OpenAIOption configures an OpenAI embedder
type OpenAIOption func(*openAIConfig)

type openAIConfig struct {
	model     string
	dimension int
	baseURL   string
}

// WithOpenAIModel overrides the embedding model
func WithOpenAIModel(name string) OpenAIOption {
	return func(c *openAIConfig) {
		c.model = name
	}
}

// WithOpenAIDimension overrides model.EmbeddingDimension
func WithOpenAIDimension(dim int) OpenAIOption {
	return func(c *openAIConfig) {
		c.dimension = dim
	}
}

// WithOpenAIBaseURL overrides the API endpoint
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(c *openAIConfig) {
		c.baseURL = url
	}
}

// NewOpenAI creates an embedder authenticated with apiKey
func NewOpenAI(apiKey string, opts ...OpenAIOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, goerr.Wrap(model.ErrMissingCredential, "OpenAI API key is required")
	}

	cfg := &openAIConfig{
		model:     defaultOpenAIModel,
		dimension: model.EmbeddingDimension,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if cfg.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.baseURL))
	}

	return &OpenAI{
		client:    openai.NewClient(clientOpts...),
		model:     cfg.model,
		dimension: cfg.dimension,
	}, nil
}

// Embed returns the embedding of text
func (e *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
		Dimensions: openai.Int(int64(e.dimension)),
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, goerr.Wrap(model.ErrEmbeddingUnavailable, "failed to create embedding",
			goerr.V("cause", err.Error()), goerr.V("model", e.model))
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, goerr.Wrap(model.ErrEmbeddingUnavailable, "no embedding returned", goerr.V("model", e.model))
	}

	return toFloat32(resp.Data[0].Embedding), nil
}
