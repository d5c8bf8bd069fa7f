package interfaces

import (
	"context"

	"github.com/plugsmith/plugsmith/pkg/domain/model"
)

// Provider is a hosted text-generation backend.
//
// Generate must fail with model.ErrMissingCredential before any network call
// when a required key is absent, with model.ErrUpstream when the remote call
// does not succeed, and with model.ErrMalformedResponse when the generated
// text is missing from a successful response. apiKey overrides the configured
// credential when it is not empty.
type Provider interface {
	Info() model.ProviderInfo
	Generate(ctx context.Context, prompt string, apiKey string) (*model.GenerationResult, error)
}
