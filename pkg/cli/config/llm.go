package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/plugsmith/plugsmith/pkg/domain/interfaces"
	"github.com/plugsmith/plugsmith/pkg/domain/types"
	"github.com/plugsmith/plugsmith/pkg/service/llm"
	"github.com/plugsmith/plugsmith/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// vertexModelLabel is reported as the model of vertex-gemini results
const vertexModelLabel = "gemini (vertex ai)"

// LLM holds CLI flags for text-generation providers and the failover order
type LLM struct {
	geminiKey     string
	groqKey       string
	openRouterKey string
	anthropicKey  string
	workersToken  string
	workersAcct   string
	order         []string
	configPath    string
}

// Flags returns CLI flags for provider configuration
func (l *LLM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-api-key",
			Usage:       "Google AI Studio API key for the gemini-2.0-flash provider",
			Category:    "LLM",
			Sources:     cli.EnvVars("PLUGSMITH_GEMINI_API_KEY", "GEMINI_API_KEY"),
			Destination: &l.geminiKey,
		},
		&cli.StringFlag{
			Name:        "groq-api-key",
			Usage:       "Groq API key for the groq-* providers",
			Category:    "LLM",
			Sources:     cli.EnvVars("PLUGSMITH_GROQ_API_KEY", "GROQ_API_KEY"),
			Destination: &l.groqKey,
		},
		&cli.StringFlag{
			Name:        "openrouter-api-key",
			Usage:       "OpenRouter API key for the openrouter-qwen3-coder provider",
			Category:    "LLM",
			Sources:     cli.EnvVars("PLUGSMITH_OPENROUTER_API_KEY", "OPENROUTER_API_KEY"),
			Destination: &l.openRouterKey,
		},
		&cli.StringFlag{
			Name:        "anthropic-api-key",
			Usage:       "Anthropic API key for the claude-sonnet provider",
			Category:    "LLM",
			Sources:     cli.EnvVars("PLUGSMITH_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"),
			Destination: &l.anthropicKey,
		},
		&cli.StringFlag{
			Name:        "cloudflare-api-token",
			Usage:       "Cloudflare API token for the workers-ai-* providers",
			Category:    "LLM",
			Sources:     cli.EnvVars("PLUGSMITH_CLOUDFLARE_API_TOKEN", "CLOUDFLARE_API_TOKEN"),
			Destination: &l.workersToken,
		},
		&cli.StringFlag{
			Name:        "cloudflare-account-id",
			Usage:       "Cloudflare account ID for the workers-ai-* providers",
			Category:    "LLM",
			Sources:     cli.EnvVars("PLUGSMITH_CLOUDFLARE_ACCOUNT_ID", "CLOUDFLARE_ACCOUNT_ID"),
			Destination: &l.workersAcct,
		},
		&cli.StringSliceFlag{
			Name:        "llm-order",
			Usage:       "Failover order of provider IDs. Overrides --llm-config",
			Category:    "LLM",
			Sources:     cli.EnvVars("PLUGSMITH_LLM_ORDER"),
			Destination: &l.order,
		},
		&cli.StringFlag{
			Name:        "llm-config",
			Usage:       "Path to a TOML file with provider order and model overrides",
			Category:    "LLM",
			Sources:     cli.EnvVars("PLUGSMITH_LLM_CONFIG"),
			Destination: &l.configPath,
		},
	}
}

// LogValue implements slog.LogValuer. Keys are reported as set or not set only.
func (l LLM) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("gemini_key", l.geminiKey != ""),
		slog.Bool("groq_key", l.groqKey != ""),
		slog.Bool("openrouter_key", l.openRouterKey != ""),
		slog.Bool("anthropic_key", l.anthropicKey != ""),
		slog.Bool("cloudflare_token", l.workersToken != ""),
		slog.Any("order", l.order),
		slog.String("config", l.configPath),
	)
}

// Configure registers every provider and builds the failover orchestrator.
// vertexClient may be nil, in which case vertex-gemini is not registered.
func (l *LLM) Configure(ctx context.Context, vertexClient gollem.LLMClient) (*llm.Failover, error) {
	file := &LLMFile{}
	if l.configPath != "" {
		loaded, err := LoadLLMFile(l.configPath)
		if err != nil {
			return nil, err
		}
		file = loaded
	}
	models := file.Models()

	providers := []interfaces.Provider{
		llm.NewGemini(l.geminiOptions(models)...),
		llm.NewGroqLlama(l.openAIOptions(l.groqKey, models[types.ProviderGroqLlama])...),
		llm.NewGroqMixtral(l.openAIOptions(l.groqKey, models[types.ProviderGroqMixtral])...),
		llm.NewOpenRouterQwen(l.openAIOptions(l.openRouterKey, models[types.ProviderOpenRouterQwen])...),
		llm.NewClaude(l.claudeOptions(models)...),
		llm.NewWorkersAILlama(l.workersOptions(models[types.ProviderWorkersAILlama])...),
		llm.NewWorkersAIMistral(l.workersOptions(models[types.ProviderWorkersAIMistral])...),
	}

	if vertexClient != nil {
		label := vertexModelLabel
		if m, ok := models[types.ProviderVertexGemini]; ok {
			label = m
		}
		vertex, err := llm.NewVertex(vertexClient, label)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create vertex provider")
		}
		providers = append(providers, vertex)
	}

	registry, err := llm.NewRegistry(providers...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build provider registry")
	}

	order := file.ProviderOrder()
	if len(l.order) > 0 {
		order = make([]types.ProviderID, len(l.order))
		for i, id := range l.order {
			order[i] = types.ProviderID(id)
		}
	}

	var opts []llm.FailoverOption
	if file.MinLength > 0 {
		opts = append(opts, llm.WithMinLength(file.MinLength))
	}

	failover, err := llm.NewFailover(registry, order, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure failover order")
	}

	logging.From(ctx).Info("LLM providers configured",
		"providers", registry.IDs(),
		"order", failover.Order(),
	)
	return failover, nil
}

func (l *LLM) geminiOptions(models map[types.ProviderID]string) []llm.GeminiOption {
	opts := []llm.GeminiOption{llm.WithGeminiKey(l.geminiKey)}
	if m, ok := models[types.ProviderGeminiFlash]; ok {
		opts = append(opts, llm.WithGeminiModel(m))
	}
	return opts
}

func (l *LLM) openAIOptions(key, modelName string) []llm.OpenAIOption {
	opts := []llm.OpenAIOption{llm.WithOpenAIKey(key)}
	if modelName != "" {
		opts = append(opts, llm.WithOpenAIModel(modelName))
	}
	return opts
}

func (l *LLM) claudeOptions(models map[types.ProviderID]string) []llm.ClaudeOption {
	opts := []llm.ClaudeOption{llm.WithClaudeKey(l.anthropicKey)}
	if m, ok := models[types.ProviderClaudeSonnet]; ok {
		opts = append(opts, llm.WithClaudeModel(m))
	}
	return opts
}

func (l *LLM) workersOptions(modelName string) []llm.WorkersAIOption {
	opts := []llm.WorkersAIOption{
		llm.WithWorkersAIToken(l.workersToken),
		llm.WithWorkersAIAccount(l.workersAcct),
	}
	if modelName != "" {
		opts = append(opts, llm.WithWorkersAIModel(modelName))
	}
	return opts
}
