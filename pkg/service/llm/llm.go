package llm

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
)

// DefaultTemperature is the sampling temperature used by every provider
const DefaultTemperature = 0.7

// base carries the metadata and configured credential shared by all providers
type base struct {
	info   model.ProviderInfo
	apiKey string
}

func (b *base) Info() model.ProviderInfo {
	return b.info
}

// credential returns override when set, otherwise the configured key.
// A required but absent key fails before any network call.
func (b *base) credential(override string) (string, error) {
	key := override
	if key == "" {
		key = b.apiKey
	}
	if key == "" && b.info.RequiresAPIKey {
		return "", goerr.Wrap(model.ErrMissingCredential, "API key not configured",
			goerr.V(model.ProviderIDKey, b.info.ID))
	}
	return key, nil
}

func (b *base) result(text, modelName string, usage *model.Usage) *model.GenerationResult {
	return &model.GenerationResult{
		Text:       strings.TrimSpace(text),
		ProviderID: b.info.ID,
		Model:      modelName,
		Usage:      usage,
	}
}

func (b *base) upstreamError(err error, status int, body string) error {
	return goerr.Wrap(model.ErrUpstream, "provider request failed",
		goerr.V(model.ProviderIDKey, b.info.ID),
		goerr.V(model.StatusKey, status),
		goerr.V(model.BodyKey, truncate(body, 2048)),
		goerr.V("cause", errString(err)),
	)
}

func (b *base) malformedError(reason string) error {
	return goerr.Wrap(model.ErrMalformedResponse, reason, goerr.V(model.ProviderIDKey, b.info.ID))
}

func intPtr(v int) *int {
	return &v
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
