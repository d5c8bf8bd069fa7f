package usecase

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
	"github.com/plugsmith/plugsmith/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// Ingest embeds every corpus document and upserts all vectors in one call.
// It returns the number of vectors written.
func (uc *UseCases) Ingest(ctx context.Context) (int, error) {
	if uc.embedder == nil {
		return 0, goerr.Wrap(model.ErrEmbeddingUnavailable, "embedder is not configured")
	}
	if uc.index == nil {
		return 0, goerr.Wrap(model.ErrIndexUnavailable, "vector index is not configured")
	}

	docs := uc.corpus.Documents()
	vectors := make([]*model.EmbeddingVector, len(docs))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(uc.concurrency)

	for i, doc := range docs {
		eg.Go(func() error {
			values, err := uc.embedder.Embed(egCtx, doc.Text)
			if err != nil {
				return goerr.Wrap(err, "failed to embed reference document", goerr.V("id", doc.ID))
			}
			vectors[i] = &model.EmbeddingVector{
				DocumentID: doc.ID,
				Values:     values,
				Text:       doc.Text,
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return 0, err
	}

	if err := uc.index.Upsert(ctx, vectors); err != nil {
		return 0, goerr.Wrap(err, "failed to upsert reference vectors", goerr.V(CountKey, len(vectors)))
	}

	logging.From(ctx).Info("ingested reference corpus", slog.Int(CountKey, len(vectors)))
	return len(vectors), nil
}
