package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/plugsmith/plugsmith/pkg/domain/types"
)

// LLMFile is the optional TOML file passed with --llm-config. It overrides
// the failover order and per-provider model names.
type LLMFile struct {
	Order     []string           `toml:"order"`
	MinLength int                `toml:"min_length"`
	Providers []ProviderOverride `toml:"provider"`
}

// ProviderOverride changes the model used by one provider
type ProviderOverride struct {
	ID    string `toml:"id"`
	Model string `toml:"model"`
}

// Validate checks if the ProviderOverride is valid
func (p *ProviderOverride) Validate() error {
	if err := types.ProviderID(p.ID).Validate(); err != nil {
		return goerr.Wrap(ErrInvalidConfig, "invalid provider ID", goerr.V(ProviderKey, p.ID))
	}
	if p.Model == "" {
		return goerr.Wrap(ErrInvalidConfig, "provider model is required", goerr.V(ProviderKey, p.ID))
	}
	return nil
}

// Validate checks if the LLMFile is valid
func (f *LLMFile) Validate() error {
	seen := make(map[string]bool)
	for _, id := range f.Order {
		if err := types.ProviderID(id).Validate(); err != nil {
			return goerr.Wrap(ErrInvalidConfig, "invalid provider ID in order", goerr.V(ProviderKey, id))
		}
		if seen[id] {
			return goerr.Wrap(ErrDuplicateProvider, "provider listed twice in order", goerr.V(ProviderKey, id))
		}
		seen[id] = true
	}

	if f.MinLength < 0 {
		return goerr.Wrap(ErrInvalidConfig, "min_length must not be negative", goerr.V("min_length", f.MinLength))
	}

	overrides := make(map[string]bool)
	for _, p := range f.Providers {
		if err := p.Validate(); err != nil {
			return err
		}
		if overrides[p.ID] {
			return goerr.Wrap(ErrDuplicateProvider, "provider configured twice", goerr.V(ProviderKey, p.ID))
		}
		overrides[p.ID] = true
	}

	return nil
}

// ProviderOrder returns Order as provider IDs
func (f *LLMFile) ProviderOrder() []types.ProviderID {
	order := make([]types.ProviderID, len(f.Order))
	for i, id := range f.Order {
		order[i] = types.ProviderID(id)
	}
	return order
}

// Models returns the model override of each configured provider
func (f *LLMFile) Models() map[types.ProviderID]string {
	models := make(map[types.ProviderID]string, len(f.Providers))
	for _, p := range f.Providers {
		models[types.ProviderID(p.ID)] = p.Model
	}
	return models
}

// LoadLLMFile loads the provider configuration from a TOML file
func LoadLLMFile(path string) (*LLMFile, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "LLM config file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var file LLMFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config: "+err.Error(), goerr.V(ConfigPathKey, path))
	}

	if err := file.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &file, nil
}
