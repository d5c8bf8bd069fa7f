package llm

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
	"github.com/plugsmith/plugsmith/pkg/domain/types"
	"github.com/plugsmith/plugsmith/pkg/service/prompt"
)

// Vertex generates through a gollem client, typically Gemini on Vertex AI
// authenticated with application default credentials
type Vertex struct {
	base
	llmClient gollem.LLMClient
	model     string
}

// NewVertex creates the Vertex AI provider. modelName is reported in results only;
// the model itself is chosen when llmClient is built.
func NewVertex(llmClient gollem.LLMClient, modelName string) (*Vertex, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	return &Vertex{
		base: base{info: model.ProviderInfo{
			ID:             types.ProviderVertexGemini,
			Name:           "Gemini (Vertex AI)",
			Description:    "Google Gemini on Vertex AI using application default credentials",
			IsFree:         false,
			RequiresAPIKey: false,
			MaxTokens:      8192,
		}},
		llmClient: llmClient,
		model:     modelName,
	}, nil
}

// Generate opens a one-shot session. apiKey is ignored.
func (v *Vertex) Generate(ctx context.Context, input string, _ string) (*model.GenerationResult, error) {
	session, err := v.llmClient.NewSession(ctx,
		gollem.WithSessionSystemPrompt(prompt.SystemPrompt),
	)
	if err != nil {
		return nil, v.upstreamError(err, 0, "")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(input))
	if err != nil {
		return nil, v.upstreamError(err, 0, "")
	}
	if resp == nil || len(resp.Texts) == 0 {
		return nil, v.malformedError("response has no text")
	}

	return v.result(strings.Join(resp.Texts, ""), v.model, nil), nil
}
