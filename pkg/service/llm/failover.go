package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/plugsmith/plugsmith/pkg/domain/interfaces"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
	"github.com/plugsmith/plugsmith/pkg/domain/types"
	"github.com/plugsmith/plugsmith/pkg/utils/logging"
)

// MinViableLength is the shortest generated text, in characters, accepted as a usable result
const MinViableLength = 50

// Failover tries providers in a fixed order until one returns usable text
type Failover struct {
	registry  *Registry
	order     []interfaces.Provider
	minLength int
}

// FailoverOption configures a Failover
type FailoverOption func(*Failover)

// WithMinLength overrides MinViableLength
func WithMinLength(n int) FailoverOption {
	return func(f *Failover) {
		f.minLength = n
	}
}

// NewFailover resolves order against registry. An empty order falls back to
// types.DefaultProviderOrder filtered to registered providers.
func NewFailover(registry *Registry, order []types.ProviderID, opts ...FailoverOption) (*Failover, error) {
	if registry == nil {
		return nil, goerr.New("provider registry is required")
	}

	if len(order) == 0 {
		for _, id := range types.DefaultProviderOrder() {
			if _, err := registry.Get(id); err == nil {
				order = append(order, id)
			}
		}
	}

	providers, err := registry.Resolve(order)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve provider order")
	}
	if len(providers) == 0 {
		return nil, goerr.New("provider order is empty")
	}

	f := &Failover{
		registry:  registry,
		order:     providers,
		minLength: MinViableLength,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Order returns the resolved failover order
func (f *Failover) Order() []types.ProviderID {
	ids := make([]types.ProviderID, 0, len(f.order))
	for _, p := range f.order {
		ids = append(ids, p.Info().ID)
	}
	return ids
}

// Providers returns metadata of every registered provider
func (f *Failover) Providers() []model.ProviderInfo {
	return f.registry.List()
}

// GenerateWithFailover returns the first usable result in order. Every failure
// and every too-short result is recorded; when all providers fail the returned
// error wraps model.ErrAllProvidersExhausted and names each reason.
func (f *Failover) GenerateWithFailover(ctx context.Context, prompt string) (*model.GenerationResult, error) {
	logger := logging.From(ctx)
	reasons := make([]string, 0, len(f.order))

	for _, p := range f.order {
		if err := ctx.Err(); err != nil {
			return nil, goerr.Wrap(err, "generation cancelled", goerr.V("attempted", reasons))
		}

		info := p.Info()
		logger.Info("attempting generation", slog.String("provider", string(info.ID)))

		result, err := f.attempt(ctx, p, prompt, "")
		if err != nil {
			if ctx.Err() != nil {
				return nil, goerr.Wrap(ctx.Err(), "generation cancelled", goerr.V("attempted", reasons))
			}
			logger.Warn("provider failed",
				slog.String("provider", string(info.ID)),
				slog.String("error", err.Error()),
			)
			reasons = append(reasons, fmt.Sprintf("%s: %s", info.Name, err.Error()))
			continue
		}

		logger.Info("generation succeeded",
			slog.String("provider", string(info.ID)),
			slog.Int("length", len(result.Text)),
		)
		return result, nil
	}

	return nil, goerr.Wrap(model.ErrAllProvidersExhausted, "all providers failed: "+strings.Join(reasons, "; "),
		goerr.V("reasons", reasons))
}

// GenerateWith targets a single provider. The minimum length check still applies.
func (f *Failover) GenerateWith(ctx context.Context, id types.ProviderID, prompt, apiKey string) (*model.GenerationResult, error) {
	p, err := f.registry.Get(id)
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("generating with selected provider", slog.String("provider", string(id)))
	return f.attempt(ctx, p, prompt, apiKey)
}

func (f *Failover) attempt(ctx context.Context, p interfaces.Provider, prompt, apiKey string) (*model.GenerationResult, error) {
	result, err := p.Generate(ctx, prompt, apiKey)
	if err != nil {
		return nil, err
	}

	if n := utf8.RuneCountInString(strings.TrimSpace(result.Text)); n < f.minLength {
		return nil, goerr.Wrap(model.ErrMalformedResponse,
			fmt.Sprintf("output too short (%d chars)", n),
			goerr.V(model.ProviderIDKey, p.Info().ID))
	}
	return result, nil
}
