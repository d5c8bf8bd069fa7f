package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// ProviderID identifies a registered text-generation provider
type ProviderID string

const (
	ProviderGeminiFlash      ProviderID = "gemini-2.0-flash"
	ProviderGroqLlama        ProviderID = "groq-llama-3.3"
	ProviderGroqMixtral      ProviderID = "groq-mixtral"
	ProviderOpenRouterQwen   ProviderID = "openrouter-qwen3-coder"
	ProviderClaudeSonnet     ProviderID = "claude-sonnet"
	ProviderWorkersAILlama   ProviderID = "workers-ai-llama"
	ProviderWorkersAIMistral ProviderID = "workers-ai-mistral"
	ProviderVertexGemini     ProviderID = "vertex-gemini"
)

var providerIDPattern = regexp.MustCompile(`^[a-z0-9]+([.-][a-z0-9]+)*$`)

// DefaultProviderOrder is the failover order used when none is configured
func DefaultProviderOrder() []ProviderID {
	return []ProviderID{
		ProviderGeminiFlash,
		ProviderGroqLlama,
		ProviderGroqMixtral,
		ProviderWorkersAILlama,
		ProviderWorkersAIMistral,
	}
}

// Validate checks if the ProviderID is well-formed
func (p ProviderID) Validate() error {
	if p == "" {
		return goerr.New("provider ID cannot be empty")
	}
	if !providerIDPattern.MatchString(string(p)) {
		return goerr.New("provider ID must be lowercase alphanumeric with hyphens or dots", goerr.V("id", p))
	}
	return nil
}

// String returns the string representation of ProviderID
func (p ProviderID) String() string {
	return string(p)
}
