package interfaces

import (
	"context"

	"github.com/plugsmith/plugsmith/pkg/domain/model"
	"github.com/plugsmith/plugsmith/pkg/domain/types"
)

// Generator produces plugin code from a prompt, either through the configured
// failover order or through one selected provider
type Generator interface {
	GenerateWithFailover(ctx context.Context, prompt string) (*model.GenerationResult, error)
	GenerateWith(ctx context.Context, id types.ProviderID, prompt, apiKey string) (*model.GenerationResult, error)
	Order() []types.ProviderID
	Providers() []model.ProviderInfo
}
