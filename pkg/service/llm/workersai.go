package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
	"github.com/plugsmith/plugsmith/pkg/domain/types"
	"github.com/plugsmith/plugsmith/pkg/service/prompt"
	"github.com/plugsmith/plugsmith/pkg/utils/safe"
)

// WorkersAIBaseURL is the Cloudflare REST API root
const WorkersAIBaseURL = "https://api.cloudflare.com/client/v4"

// WorkersAI calls a Cloudflare Workers AI text-generation model over REST
type WorkersAI struct {
	base
	accountID  string
	model      string
	baseURL    string
	httpClient *http.Client
}

// WorkersAIOption configures a WorkersAI provider
type WorkersAIOption func(*WorkersAI)

// WithWorkersAIToken sets the configured API token
func WithWorkersAIToken(token string) WorkersAIOption {
	return func(w *WorkersAI) {
		w.apiKey = token
	}
}

// WithWorkersAIAccount sets the Cloudflare account ID
func WithWorkersAIAccount(accountID string) WorkersAIOption {
	return func(w *WorkersAI) {
		w.accountID = accountID
	}
}

// WithWorkersAIModel overrides the model name
func WithWorkersAIModel(name string) WorkersAIOption {
	return func(w *WorkersAI) {
		w.model = name
	}
}

// WithWorkersAIBaseURL overrides the API root
func WithWorkersAIBaseURL(url string) WorkersAIOption {
	return func(w *WorkersAI) {
		w.baseURL = url
	}
}

// WithWorkersAIHTTPClient replaces the HTTP client
func WithWorkersAIHTTPClient(client *http.Client) WorkersAIOption {
	return func(w *WorkersAI) {
		w.httpClient = client
	}
}

func newWorkersAI(info model.ProviderInfo, defaultModel string, opts ...WorkersAIOption) *WorkersAI {
	w := &WorkersAI{
		base:       base{info: info},
		model:      defaultModel,
		baseURL:    WorkersAIBaseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// NewWorkersAILlama creates the Workers AI Llama provider
func NewWorkersAILlama(opts ...WorkersAIOption) *WorkersAI {
	return newWorkersAI(model.ProviderInfo{
		ID:             types.ProviderWorkersAILlama,
		Name:           "Llama 3.1 8B (Workers AI)",
		Description:    "Meta Llama 3.1 8B Instruct on Cloudflare Workers AI",
		IsFree:         true,
		RequiresAPIKey: true,
		MaxTokens:      4096,
	}, "@cf/meta/llama-3.1-8b-instruct", opts...)
}

// NewWorkersAIMistral creates the Workers AI Mistral provider
func NewWorkersAIMistral(opts ...WorkersAIOption) *WorkersAI {
	return newWorkersAI(model.ProviderInfo{
		ID:             types.ProviderWorkersAIMistral,
		Name:           "Mistral 7B (Workers AI)",
		Description:    "Mistral 7B Instruct on Cloudflare Workers AI",
		IsFree:         true,
		RequiresAPIKey: true,
		MaxTokens:      4096,
	}, "@cf/mistral/mistral-7b-instruct-v0.1", opts...)
}

type workersAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type workersAIRequest struct {
	Messages    []workersAIMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
}

type workersAIResponse struct {
	Success bool `json:"success"`
	Result  *struct {
		Response *string `json:"response"`
		Usage    *struct {
			TotalTokens int `json:"total_tokens"`
		} `json:"usage"`
	} `json:"result"`
}

// Generate runs the model with a system and a user message
func (w *WorkersAI) Generate(ctx context.Context, input string, apiKey string) (*model.GenerationResult, error) {
	token, err := w.credential(apiKey)
	if err != nil {
		return nil, err
	}
	if w.accountID == "" {
		return nil, goerr.Wrap(model.ErrMissingCredential, "Cloudflare account ID not configured",
			goerr.V(model.ProviderIDKey, w.info.ID))
	}

	body, err := json.Marshal(workersAIRequest{
		Messages: []workersAIMessage{
			{Role: "system", Content: prompt.SystemPrompt},
			{Role: "user", Content: input},
		},
		MaxTokens:   w.info.MaxTokens,
		Temperature: DefaultTemperature,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal Workers AI request")
	}

	url := fmt.Sprintf("%s/accounts/%s/ai/run/%s", w.baseURL, w.accountID, w.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Workers AI request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, w.upstreamError(err, 0, "")
	}
	defer safe.Close(ctx, resp.Body)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, w.upstreamError(err, resp.StatusCode, "")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, w.upstreamError(nil, resp.StatusCode, string(respBody))
	}

	var parsed workersAIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, w.malformedError("response is not valid JSON")
	}
	if parsed.Result == nil || parsed.Result.Response == nil {
		return nil, w.malformedError("response has no result.response field")
	}

	var usage *model.Usage
	if parsed.Result.Usage != nil {
		usage = &model.Usage{TokensUsed: intPtr(parsed.Result.Usage.TotalTokens)}
	}

	return w.result(*parsed.Result.Response, w.model, usage), nil
}
