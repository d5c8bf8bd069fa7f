package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
	"github.com/plugsmith/plugsmith/pkg/domain/types"
	"github.com/plugsmith/plugsmith/pkg/service/blueprint"
	"github.com/plugsmith/plugsmith/pkg/service/llm"
	"github.com/plugsmith/plugsmith/pkg/service/plugin"
	"github.com/plugsmith/plugsmith/pkg/service/prompt"
	"github.com/plugsmith/plugsmith/pkg/utils/logging"
)

// GenerateOutput is the result of one successful generation request
type GenerateOutput struct {
	PluginName      string                `json:"pluginName"`
	PluginSlug      types.Slug            `json:"pluginSlug"`
	Files           []*model.ArtifactFile `json:"files"`
	DownloadURL     string                `json:"downloadUrl"`
	PlaygroundURL   string                `json:"playgroundUrl"`
	BlueprintURL    string                `json:"blueprintUrl"`
	ModelUsed       string                `json:"modelUsed"`
	TokensUsed      *int                  `json:"tokensUsed,omitempty"`
	TokensRemaining *int                  `json:"tokensRemaining,omitempty"`
	Context         []string              `json:"context"`

	// Bundle and Archive are kept for callers that write the result locally
	Bundle  *model.Bundle `json:"-"`
	Archive []byte        `json:"-"`
}

// Generate runs the whole request pipeline: retrieve reference passages,
// build the prompt, generate code, assemble and package the bundle, and
// persist the archive and its descriptor. baseURL is the public origin used
// to build the returned links.
func (uc *UseCases) Generate(ctx context.Context, req *model.GenerationRequest, baseURL string) (*GenerateOutput, error) {
	if req == nil || strings.TrimSpace(req.Prompt) == "" {
		return nil, goerr.Wrap(model.ErrValidation, "prompt is required")
	}

	logger := logging.From(ctx).With(slog.String(GenerationIDKey, req.ID))
	ctx = logging.With(ctx, logger)

	contextBlock, passages, err := uc.Retrieve(ctx, req.Prompt)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to retrieve reference passages")
	}

	input := prompt.Build(req.Prompt, contextBlock)
	logger.Info("prompt built",
		slog.Int("prompt_tokens", uc.tokenCounter.CountTokens(input)),
		slog.Int("context_passages", len(passages)),
	)

	result, err := uc.generate(ctx, req, input)
	if err != nil {
		return nil, err
	}

	code := llm.CleanGeneratedCode(result.Text)

	bundle, err := uc.assembler.Assemble(code, req.Prompt)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to assemble plugin bundle")
	}

	archive, err := plugin.Package(bundle)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to package plugin bundle", goerr.V(model.SlugKey, bundle.Slug))
	}

	archiveKey := types.ArchiveKey(bundle.Slug)
	if err := uc.blobs.Put(ctx, model.NewStoredObject(archiveKey, archive)); err != nil {
		return nil, goerr.Wrap(err, "failed to store plugin archive", goerr.V(model.ObjectKeyKey, archiveKey))
	}

	base := trimBase(baseURL)
	downloadURL := base + DownloadPath(archiveKey)
	blueprintKey := types.BlueprintKey(bundle.Slug)
	blueprintURL := base + DownloadPath(blueprintKey)

	bp := blueprint.New(downloadURL, bundle.Slug, bundle.Name, plugin.DetectShortcode(code))
	descriptor, err := bp.Marshal()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal blueprint", goerr.V(model.SlugKey, bundle.Slug))
	}
	if err := uc.blobs.Put(ctx, model.NewStoredObject(blueprintKey, descriptor)); err != nil {
		return nil, goerr.Wrap(err, "failed to store blueprint", goerr.V(model.ObjectKeyKey, blueprintKey))
	}

	logger.Info("plugin generated",
		slog.String("slug", bundle.Slug.String()),
		slog.String("provider", string(result.ProviderID)),
		slog.String("model", result.Model),
		slog.Int("files", len(bundle.Files)),
	)

	out := &GenerateOutput{
		PluginName:    bundle.Name,
		PluginSlug:    bundle.Slug,
		Files:         bundle.Files,
		DownloadURL:   downloadURL,
		PlaygroundURL: base + PlaygroundPath(bundle.Slug),
		BlueprintURL:  blueprintURL,
		ModelUsed:     result.Model,
		Context:       passages,
		Bundle:        bundle,
		Archive:       archive,
	}
	if out.Context == nil {
		out.Context = []string{}
	}
	if result.Usage != nil {
		out.TokensUsed = result.Usage.TokensUsed
		out.TokensRemaining = result.Usage.TokensRemaining
	}

	return out, nil
}

func (uc *UseCases) generate(ctx context.Context, req *model.GenerationRequest, input string) (*model.GenerationResult, error) {
	if req.ProviderID != "" {
		result, err := uc.generator.GenerateWith(ctx, req.ProviderID, input, req.APIKey)
		if err != nil {
			return nil, goerr.Wrap(err, "selected provider failed", goerr.V(model.ProviderIDKey, req.ProviderID))
		}
		return result, nil
	}

	result, err := uc.generator.GenerateWithFailover(ctx, input)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate plugin code")
	}
	return result, nil
}

// DownloadPath is the route path that serves the object stored under key
func DownloadPath(key types.ObjectKey) string {
	return "/download/" + key.String()
}

// PlaygroundPath is the route path that redirects to the test environment of slug
func PlaygroundPath(slug types.Slug) string {
	return "/playground/" + slug.String()
}
