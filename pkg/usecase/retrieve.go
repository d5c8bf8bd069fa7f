package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/plugsmith/plugsmith/pkg/utils/logging"
)

// Retrieve embeds prompt and returns the text of the nearest reference
// passages, joined with blank lines. Zero matches is not an error.
func (uc *UseCases) Retrieve(ctx context.Context, prompt string) (string, []string, error) {
	if !uc.RetrievalEnabled() {
		logging.From(ctx).Debug("retrieval disabled, using empty context")
		return "", nil, nil
	}

	vector, err := uc.embedder.Embed(ctx, prompt)
	if err != nil {
		return "", nil, goerr.Wrap(err, "failed to embed prompt")
	}

	matches, err := uc.index.Query(ctx, vector, uc.topK)
	if err != nil {
		return "", nil, goerr.Wrap(err, "failed to query vector index")
	}

	passages := make([]string, 0, len(matches))
	for _, m := range matches {
		if m == nil || strings.TrimSpace(m.Text) == "" {
			continue
		}
		passages = append(passages, m.Text)
	}

	logging.From(ctx).Info("retrieved reference passages", slog.Int(CountKey, len(passages)))
	return strings.Join(passages, "\n\n"), passages, nil
}
