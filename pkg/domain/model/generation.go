package model

import (
	"github.com/google/uuid"
	"github.com/plugsmith/plugsmith/pkg/domain/types"
)

// GenerationRequest is one user-initiated build. It lives only for the request's duration.
type GenerationRequest struct {
	ID     string
	Prompt string

	// ProviderID selects a single provider instead of the failover order when set
	ProviderID types.ProviderID

	// APIKey overrides the configured credential of the selected provider
	APIKey string `masq:"secret"`
}

// NewGenerationRequest creates a request with a fresh UUIDv7 ID
func NewGenerationRequest(prompt string) *GenerationRequest {
	return &GenerationRequest{
		ID:     uuid.Must(uuid.NewV7()).String(),
		Prompt: prompt,
	}
}

// Usage holds token accounting reported by a provider. Every field is optional.
type Usage struct {
	TokensUsed      *int
	TokensRemaining *int
}

// GenerationResult is the raw output of a text-generation call
type GenerationResult struct {
	Text       string
	ProviderID types.ProviderID
	Model      string
	Usage      *Usage
}

// ProviderInfo describes a registered provider
type ProviderInfo struct {
	ID             types.ProviderID `json:"id"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	IsFree         bool             `json:"isFree"`
	RequiresAPIKey bool             `json:"requiresApiKey"`
	MaxTokens      int              `json:"maxTokens"`
}
