package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/plugsmith/plugsmith/pkg/domain/model"
	"github.com/plugsmith/plugsmith/pkg/domain/types"
	"github.com/plugsmith/plugsmith/pkg/service/prompt"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// Gemini calls the Gemini API generateContent endpoint with an API key
type Gemini struct {
	base
	model   string
	baseURL string
}

// GeminiOption configures a Gemini provider
type GeminiOption func(*Gemini)

// WithGeminiKey sets the configured API key
func WithGeminiKey(key string) GeminiOption {
	return func(g *Gemini) {
		g.apiKey = key
	}
}

// WithGeminiModel overrides the model name
func WithGeminiModel(name string) GeminiOption {
	return func(g *Gemini) {
		g.model = name
	}
}

// WithGeminiBaseURL overrides the API endpoint
func WithGeminiBaseURL(url string) GeminiOption {
	return func(g *Gemini) {
		g.baseURL = url
	}
}

// NewGemini creates the Gemini 2.0 Flash provider
func NewGemini(opts ...GeminiOption) *Gemini {
	g := &Gemini{
		base: base{info: model.ProviderInfo{
			ID:             types.ProviderGeminiFlash,
			Name:           "Gemini 2.0 Flash",
			Description:    "Google Gemini 2.0 Flash via the Gemini API",
			IsFree:         true,
			RequiresAPIKey: true,
			MaxTokens:      8192,
		}},
		model: defaultGeminiModel,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate calls generateContent. The client is created per call because the
// key may be supplied with the request.
func (g *Gemini) Generate(ctx context.Context, input string, apiKey string) (*model.GenerationResult, error) {
	key, err := g.credential(apiKey)
	if err != nil {
		return nil, err
	}

	cfg := &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	}
	if g.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, g.upstreamError(err, 0, "")
	}

	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(float32(DefaultTemperature)),
		MaxOutputTokens:   int32(g.info.MaxTokens),
		SystemInstruction: genai.NewContentFromText(prompt.SystemPrompt, genai.RoleUser),
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		genai.NewContentFromText(input, genai.RoleUser),
	}, config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, g.upstreamError(err, apiErr.Code, apiErr.Message)
		}
		return nil, g.upstreamError(err, 0, "")
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, g.malformedError("response has no candidate content")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}

	var usage *model.Usage
	if resp.UsageMetadata != nil {
		usage = &model.Usage{TokensUsed: intPtr(int(resp.UsageMetadata.TotalTokenCount))}
	}

	return g.result(text.String(), g.model, usage), nil
}
