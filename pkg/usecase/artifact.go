package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
	"github.com/plugsmith/plugsmith/pkg/domain/types"
	"github.com/plugsmith/plugsmith/pkg/service/blueprint"
)

// GetObject returns a stored archive or descriptor. A key that can never be
// stored is reported as model.ErrNotFound, like any other absent key.
func (uc *UseCases) GetObject(ctx context.Context, key types.ObjectKey) (*model.StoredObject, error) {
	if err := key.Validate(); err != nil {
		return nil, goerr.Wrap(model.ErrNotFound, err.Error(), goerr.V(model.ObjectKeyKey, key))
	}

	obj, err := uc.blobs.Get(ctx, key)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get object", goerr.V(model.ObjectKeyKey, key))
	}
	return obj, nil
}

// PlaygroundURL returns the test-environment URL of a generated plugin. The
// descriptor must already be stored, otherwise an error wrapping
// model.ErrNotFound is returned.
func (uc *UseCases) PlaygroundURL(ctx context.Context, slug types.Slug, baseURL string) (string, error) {
	if err := slug.Validate(); err != nil {
		return "", goerr.Wrap(model.ErrNotFound, err.Error(), goerr.V(model.SlugKey, slug))
	}

	key := types.BlueprintKey(slug)
	if _, err := uc.blobs.Get(ctx, key); err != nil {
		return "", goerr.Wrap(err, "blueprint is not available", goerr.V(model.SlugKey, slug))
	}

	return blueprint.PlaygroundURL(trimBase(baseURL) + DownloadPath(key)), nil
}

// ProviderCatalog lists registered providers and the configured failover order
type ProviderCatalog struct {
	Providers []model.ProviderInfo `json:"providers"`
	Order     []types.ProviderID   `json:"order"`
}

// Providers returns the provider catalog
func (uc *UseCases) Providers() *ProviderCatalog {
	return &ProviderCatalog{
		Providers: uc.generator.Providers(),
		Order:     uc.generator.Order(),
	}
}
