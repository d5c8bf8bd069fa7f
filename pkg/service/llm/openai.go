package llm

import (
	"context"
	"errors"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
	"github.com/plugsmith/plugsmith/pkg/domain/types"
	"github.com/plugsmith/plugsmith/pkg/service/prompt"
)

const (
	GroqBaseURL       = "https://api.groq.com/openai/v1"
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"

	// openRouterDailyTokens is the free-tier daily allowance used to report remaining tokens
	openRouterDailyTokens = 1_000_000
)

// OpenAICompatible calls a chat completions endpoint that speaks the OpenAI wire format
type OpenAICompatible struct {
	base
	client      openai.Client
	model       string
	dailyTokens int
}

// OpenAIOption configures an OpenAICompatible provider
type OpenAIOption func(*openAIConfig)

type openAIConfig struct {
	apiKey      string
	model       string
	baseURL     string
	headers     map[string]string
	dailyTokens int
}

// WithOpenAIKey sets the configured API key
func WithOpenAIKey(key string) OpenAIOption {
	return func(c *openAIConfig) {
		c.apiKey = key
	}
}

// WithOpenAIModel overrides the model name
func WithOpenAIModel(name string) OpenAIOption {
	return func(c *openAIConfig) {
		c.model = name
	}
}

// WithOpenAIBaseURL overrides the endpoint base URL
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(c *openAIConfig) {
		c.baseURL = url
	}
}

// WithOpenAIHeader adds a header to every request
func WithOpenAIHeader(key, value string) OpenAIOption {
	return func(c *openAIConfig) {
		if c.headers == nil {
			c.headers = make(map[string]string)
		}
		c.headers[key] = value
	}
}

// WithDailyTokenLimit enables TokensRemaining reporting against a daily allowance
func WithDailyTokenLimit(n int) OpenAIOption {
	return func(c *openAIConfig) {
		c.dailyTokens = n
	}
}

// NewOpenAICompatible creates a provider for an OpenAI-compatible endpoint
func NewOpenAICompatible(info model.ProviderInfo, defaultModel, baseURL string, opts ...OpenAIOption) *OpenAICompatible {
	cfg := &openAIConfig{
		model:   defaultModel,
		baseURL: baseURL,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	clientOpts := []option.RequestOption{
		option.WithBaseURL(cfg.baseURL),
		option.WithMaxRetries(0),
	}
	for k, v := range cfg.headers {
		clientOpts = append(clientOpts, option.WithHeader(k, v))
	}

	return &OpenAICompatible{
		base:        base{info: info, apiKey: cfg.apiKey},
		client:      openai.NewClient(clientOpts...),
		model:       cfg.model,
		dailyTokens: cfg.dailyTokens,
	}
}

// NewGroqLlama creates the Groq Llama 3.3 provider
func NewGroqLlama(opts ...OpenAIOption) *OpenAICompatible {
	return NewOpenAICompatible(model.ProviderInfo{
		ID:             types.ProviderGroqLlama,
		Name:           "Llama 3.3 70B (Groq)",
		Description:    "Meta Llama 3.3 70B served by Groq",
		IsFree:         true,
		RequiresAPIKey: true,
		MaxTokens:      8000,
	}, "llama-3.3-70b-versatile", GroqBaseURL, opts...)
}

// NewGroqMixtral creates the Groq Mixtral provider
func NewGroqMixtral(opts ...OpenAIOption) *OpenAICompatible {
	return NewOpenAICompatible(model.ProviderInfo{
		ID:             types.ProviderGroqMixtral,
		Name:           "Mixtral 8x7B (Groq)",
		Description:    "Mistral Mixtral 8x7B served by Groq",
		IsFree:         true,
		RequiresAPIKey: true,
		MaxTokens:      8000,
	}, "mixtral-8x7b-32768", GroqBaseURL, opts...)
}

// NewOpenRouterQwen creates the OpenRouter Qwen3 Coder provider
func NewOpenRouterQwen(opts ...OpenAIOption) *OpenAICompatible {
	defaults := []OpenAIOption{
		WithOpenAIHeader("HTTP-Referer", "https://plugsmith.dev"),
		WithOpenAIHeader("X-Title", "plugsmith"),
		WithDailyTokenLimit(openRouterDailyTokens),
	}
	return NewOpenAICompatible(model.ProviderInfo{
		ID:             types.ProviderOpenRouterQwen,
		Name:           "Qwen3 Coder (OpenRouter)",
		Description:    "Qwen3 Coder served by OpenRouter, tuned for code generation",
		IsFree:         true,
		RequiresAPIKey: true,
		MaxTokens:      8000,
	}, "qwen/qwen3-coder:free", OpenRouterBaseURL, append(defaults, opts...)...)
}

// Generate sends prompt as a single user message with the plugin system prompt
func (p *OpenAICompatible) Generate(ctx context.Context, input string, apiKey string) (*model.GenerationResult, error) {
	key, err := p.credential(apiKey)
	if err != nil {
		return nil, err
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.SystemPrompt),
			openai.UserMessage(input),
		},
		Temperature: openai.Float(DefaultTemperature),
		MaxTokens:   openai.Int(int64(p.info.MaxTokens)),
	}

	completion, err := p.client.Chat.Completions.New(ctx, params, option.WithAPIKey(key))
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, p.upstreamError(err, apiErr.StatusCode, apiErr.RawJSON())
		}
		return nil, p.upstreamError(err, 0, "")
	}

	if len(completion.Choices) == 0 {
		return nil, p.malformedError("response has no choices")
	}
	if !completion.Choices[0].Message.JSON.Content.Valid() {
		return nil, p.malformedError("response message has no content")
	}

	used := int(completion.Usage.TotalTokens)
	usage := &model.Usage{TokensUsed: intPtr(used)}
	if p.dailyTokens > 0 {
		usage.TokensRemaining = intPtr(max(p.dailyTokens-used, 0))
	}

	return p.result(completion.Choices[0].Message.Content, p.model, usage), nil
}
