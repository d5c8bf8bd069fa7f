package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
	"github.com/plugsmith/plugsmith/pkg/domain/types"
	"github.com/plugsmith/plugsmith/pkg/service/prompt"
)

const defaultClaudeModel = "claude-sonnet-4-5"

// Claude calls the Anthropic Messages API
type Claude struct {
	base
	client anthropic.Client
	model  string
}

// ClaudeOption configures a Claude provider
type ClaudeOption func(*claudeConfig)

type claudeConfig struct {
	apiKey  string
	model   string
	baseURL string
}

// WithClaudeKey sets the configured API key
func WithClaudeKey(key string) ClaudeOption {
	return func(c *claudeConfig) {
		c.apiKey = key
	}
}

// WithClaudeModel overrides the model name
func WithClaudeModel(name string) ClaudeOption {
	return func(c *claudeConfig) {
		c.model = name
	}
}

// WithClaudeBaseURL overrides the API endpoint
func WithClaudeBaseURL(url string) ClaudeOption {
	return func(c *claudeConfig) {
		c.baseURL = url
	}
}

// NewClaude creates the Claude Sonnet provider
func NewClaude(opts ...ClaudeOption) *Claude {
	cfg := &claudeConfig{model: defaultClaudeModel}
	for _, opt := range opts {
		opt(cfg)
	}

	clientOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if cfg.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.baseURL))
	}

	return &Claude{
		base: base{
			info: model.ProviderInfo{
				ID:             types.ProviderClaudeSonnet,
				Name:           "Claude Sonnet",
				Description:    "Anthropic Claude Sonnet via the Messages API",
				IsFree:         false,
				RequiresAPIKey: true,
				MaxTokens:      8192,
			},
			apiKey: cfg.apiKey,
		},
		client: anthropic.NewClient(clientOpts...),
		model:  cfg.model,
	}
}

// Generate sends prompt as a single user message
func (c *Claude) Generate(ctx context.Context, input string, apiKey string) (*model.GenerationResult, error) {
	key, err := c.credential(apiKey)
	if err != nil {
		return nil, err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.info.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(input)),
		},
		System: []anthropic.TextBlockParam{
			{Text: prompt.SystemPrompt},
		},
		Temperature: anthropic.Float(DefaultTemperature),
	}

	resp, err := c.client.Messages.New(ctx, params, option.WithAPIKey(key))
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, c.upstreamError(err, apiErr.StatusCode, apiErr.RawJSON())
		}
		return nil, c.upstreamError(err, 0, "")
	}

	var text strings.Builder
	found := false
	for _, block := range resp.Content {
		if block.Type == "text" {
			found = true
			text.WriteString(block.Text)
		}
	}
	if !found {
		return nil, c.malformedError("response has no text block")
	}

	used := int(resp.Usage.InputTokens + resp.Usage.OutputTokens)
	return c.result(text.String(), c.model, &model.Usage{TokensUsed: intPtr(used)}), nil
}
