package llm

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/plugsmith/plugsmith/pkg/domain/interfaces"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
	"github.com/plugsmith/plugsmith/pkg/domain/types"
)

// Registry maps provider IDs to providers. It is built once at startup and read-only afterwards.
type Registry struct {
	providers map[types.ProviderID]interfaces.Provider
	ids       []types.ProviderID
}

// NewRegistry registers providers in the given order. Duplicate IDs are rejected.
func NewRegistry(providers ...interfaces.Provider) (*Registry, error) {
	r := &Registry{
		providers: make(map[types.ProviderID]interfaces.Provider, len(providers)),
	}

	for _, p := range providers {
		if p == nil {
			continue
		}
		id := p.Info().ID
		if err := id.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid provider ID")
		}
		if _, exists := r.providers[id]; exists {
			return nil, goerr.New("provider registered twice", goerr.V(model.ProviderIDKey, id))
		}
		r.providers[id] = p
		r.ids = append(r.ids, id)
	}

	return r, nil
}

// Get returns the provider registered under id
func (r *Registry) Get(id types.ProviderID) (interfaces.Provider, error) {
	p, ok := r.providers[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrUnknownProvider, "provider is not registered",
			goerr.V(model.ProviderIDKey, id))
	}
	return p, nil
}

// Resolve maps an ordered ID list to providers. Any unknown ID fails the whole call.
func (r *Registry) Resolve(ids []types.ProviderID) ([]interfaces.Provider, error) {
	resolved := make([]interfaces.Provider, 0, len(ids))
	for _, id := range ids {
		p, err := r.Get(id)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, p)
	}
	return resolved, nil
}

// List returns provider metadata in registration order
func (r *Registry) List() []model.ProviderInfo {
	infos := make([]model.ProviderInfo, 0, len(r.ids))
	for _, id := range r.ids {
		infos = append(infos, r.providers[id].Info())
	}
	return infos
}

// IDs returns registered provider IDs in registration order
func (r *Registry) IDs() []types.ProviderID {
	ids := make([]types.ProviderID, len(r.ids))
	copy(ids, r.ids)
	return ids
}
