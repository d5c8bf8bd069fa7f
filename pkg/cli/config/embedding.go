package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/plugsmith/plugsmith/pkg/domain/interfaces"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
	"github.com/plugsmith/plugsmith/pkg/service/embedding"
	"github.com/plugsmith/plugsmith/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Embedding backends
const (
	EmbeddingAuto   = "auto"
	EmbeddingNone   = "none"
	EmbeddingGemini = "gemini"
	EmbeddingOpenAI = "openai"
)

// Embedding holds CLI flags for the retrieval embedder
type Embedding struct {
	backend   string
	openAIKey string
	model     string
	dimension int
}

// Flags returns CLI flags for embedding configuration
func (e *Embedding) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "embedding-backend",
			Usage:       "Embedding backend (auto, none, gemini, openai)",
			Category:    "Embedding",
			Value:       EmbeddingAuto,
			Sources:     cli.EnvVars("PLUGSMITH_EMBEDDING_BACKEND"),
			Destination: &e.backend,
		},
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "OpenAI API key for the openai embedding backend",
			Category:    "Embedding",
			Sources:     cli.EnvVars("PLUGSMITH_OPENAI_API_KEY", "OPENAI_API_KEY"),
			Destination: &e.openAIKey,
		},
		&cli.StringFlag{
			Name:        "embedding-model",
			Usage:       "OpenAI embedding model name",
			Category:    "Embedding",
			Sources:     cli.EnvVars("PLUGSMITH_EMBEDDING_MODEL"),
			Destination: &e.model,
		},
		&cli.IntFlag{
			Name:        "embedding-dimension",
			Usage:       "Embedding vector dimension",
			Category:    "Embedding",
			Value:       model.EmbeddingDimension,
			Sources:     cli.EnvVars("PLUGSMITH_EMBEDDING_DIMENSION"),
			Destination: &e.dimension,
		},
	}
}

// LogValue implements slog.LogValuer
func (e Embedding) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", e.backend),
		slog.Bool("openai_key", e.openAIKey != ""),
		slog.String("model", e.model),
		slog.Int("dimension", e.dimension),
	)
}

// Dimension returns the configured vector dimension
func (e *Embedding) Dimension() int {
	return e.dimension
}

// Configure returns the embedder, or nil when retrieval is disabled. In auto
// mode Gemini is used when vertexClient is set, then OpenAI when a key is set.
func (e *Embedding) Configure(ctx context.Context, vertexClient gollem.LLMClient) (interfaces.Embedder, error) {
	backend := e.backend
	if backend == EmbeddingAuto || backend == "" {
		switch {
		case vertexClient != nil:
			backend = EmbeddingGemini
		case e.openAIKey != "":
			backend = EmbeddingOpenAI
		default:
			backend = EmbeddingNone
		}
	}

	switch backend {
	case EmbeddingNone:
		logging.From(ctx).Info("Retrieval disabled: no embedding backend configured")
		return nil, nil

	case EmbeddingGemini:
		if vertexClient == nil {
			return nil, goerr.Wrap(ErrMissingFlag, "vertex-project is required for gemini embeddings", goerr.V(FlagKey, "vertex-project"))
		}
		embedder, err := embedding.NewGollem(vertexClient, embedding.WithGollemDimension(e.Dimension()))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create gemini embedder")
		}
		logging.From(ctx).Info("Using Gemini embeddings", "dimension", e.dimension)
		return embedder, nil

	case EmbeddingOpenAI:
		opts := []embedding.OpenAIOption{embedding.WithOpenAIDimension(e.Dimension())}
		if e.model != "" {
			opts = append(opts, embedding.WithOpenAIModel(e.model))
		}
		embedder, err := embedding.NewOpenAI(e.openAIKey, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create OpenAI embedder")
		}
		logging.From(ctx).Info("Using OpenAI embeddings", "model", e.model, "dimension", e.dimension)
		return embedder, nil

	default:
		return nil, goerr.Wrap(ErrUnknownBackend, "invalid embedding backend", goerr.V(BackendKey, e.backend))
	}
}
