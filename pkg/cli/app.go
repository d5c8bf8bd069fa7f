package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/plugsmith/plugsmith/pkg/cli/config"
	"github.com/plugsmith/plugsmith/pkg/usecase"
	"github.com/plugsmith/plugsmith/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// appConfig groups the flags needed to build the request pipeline
type appConfig struct {
	gemini    config.Gemini
	llm       config.LLM
	embedding config.Embedding
	index     config.Index
	storage   config.Storage
}

func (a *appConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, a.gemini.Flags()...)
	flags = append(flags, a.llm.Flags()...)
	flags = append(flags, a.embedding.Flags()...)
	flags = append(flags, a.index.Flags()...)
	flags = append(flags, a.storage.Flags()...)
	return flags
}

// build wires every configured backend into UseCases. The returned function
// releases all backends in reverse order.
func (a *appConfig) build(ctx context.Context, opts ...usecase.Option) (*usecase.UseCases, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	logging.From(ctx).Info("Application configuration",
		slog.GroupAttrs("vertex", a.gemini.LogAttrs()...),
		"llm", a.llm,
		"embedding", a.embedding,
		"index", a.index,
		"storage", a.storage,
	)

	vertexClient, err := a.gemini.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to configure Vertex AI")
	}

	generator, err := a.llm.Configure(ctx, vertexClient)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to configure LLM providers")
	}

	blobs, closeBlobs, err := a.storage.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to configure blob storage")
	}
	closers = append(closers, closeBlobs)

	embedder, err := a.embedding.Configure(ctx, vertexClient)
	if err != nil {
		closeAll()
		return nil, nil, goerr.Wrap(err, "failed to configure embedder")
	}

	if embedder != nil {
		index, closeIndex, err := a.index.Configure(ctx, a.embedding.Dimension())
		if err != nil {
			closeAll()
			return nil, nil, goerr.Wrap(err, "failed to configure vector index")
		}
		closers = append(closers, closeIndex)
		opts = append([]usecase.Option{usecase.WithRetrieval(embedder, index)}, opts...)
	}

	return usecase.New(generator, blobs, opts...), closeAll, nil
}
