package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/plugsmith/plugsmith/pkg/corpus"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
	"github.com/plugsmith/plugsmith/pkg/domain/types"
	"github.com/plugsmith/plugsmith/pkg/repository/memory"
	"github.com/plugsmith/plugsmith/pkg/service/blueprint"
	"github.com/plugsmith/plugsmith/pkg/service/plugin"
	"github.com/plugsmith/plugsmith/pkg/usecase"
)

const shortcodePluginCode = "```php\n" + `<?php
/**
 * Plugin Name: Hello Greeter
 * Description: Greets visitors with a shortcode
 * Version: 1.2.0
 * Author: Jane Doe
 */

if (!defined('ABSPATH')) {
    exit;
}

function hello_greeter_render($atts) {
    return '<p class="hello-greeter">Hello, visitor!</p>';
}
add_shortcode('hello_greeter', 'hello_greeter_render');
` + "```"

// mockGenerator records calls and returns a fixed result
type mockGenerator struct {
	mu           sync.Mutex
	result       *model.GenerationResult
	err          error
	prompts      []string
	selectedIDs  []types.ProviderID
	selectedKeys []string
}

func (m *mockGenerator) GenerateWithFailover(ctx context.Context, prompt string) (*model.GenerationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	return m.result, m.err
}

func (m *mockGenerator) GenerateWith(ctx context.Context, id types.ProviderID, prompt, apiKey string) (*model.GenerationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	m.selectedIDs = append(m.selectedIDs, id)
	m.selectedKeys = append(m.selectedKeys, apiKey)
	return m.result, m.err
}

func (m *mockGenerator) Order() []types.ProviderID {
	return []types.ProviderID{types.ProviderGeminiFlash, types.ProviderGroqLlama}
}

func (m *mockGenerator) Providers() []model.ProviderInfo {
	return []model.ProviderInfo{
		{ID: types.ProviderGeminiFlash, Name: "Gemini", IsFree: true, RequiresAPIKey: true},
		{ID: types.ProviderGroqLlama, Name: "Groq Llama", IsFree: true, RequiresAPIKey: true},
	}
}

func (m *mockGenerator) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// keywordEmbedder maps text onto one axis per keyword it contains
type keywordEmbedder struct {
	mu       sync.Mutex
	keywords []string
	count    int
	err      error
}

func newKeywordEmbedder() *keywordEmbedder {
	return &keywordEmbedder{keywords: []string{"shortcode", "admin", "security", "ajax"}}
}

func (e *keywordEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.count++
	e.mu.Unlock()

	if e.err != nil {
		return nil, e.err
	}

	lower := strings.ToLower(text)
	vec := make([]float32, len(e.keywords)+1)
	for i, kw := range e.keywords {
		if strings.Contains(lower, kw) {
			vec[i] = 1
		}
	}
	vec[len(e.keywords)] = 0.01
	return vec, nil
}

func (e *keywordEmbedder) calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.count
}

// countingBlobStore wraps an in-memory store and counts writes
type countingBlobStore struct {
	mu    sync.Mutex
	inner interface {
		Put(ctx context.Context, obj *model.StoredObject) error
		Get(ctx context.Context, key types.ObjectKey) (*model.StoredObject, error)
	}
	puts int
}

func (s *countingBlobStore) Put(ctx context.Context, obj *model.StoredObject) error {
	s.mu.Lock()
	s.puts++
	s.mu.Unlock()
	return s.inner.Put(ctx, obj)
}

func (s *countingBlobStore) Get(ctx context.Context, key types.ObjectKey) (*model.StoredObject, error) {
	return s.inner.Get(ctx, key)
}

func testCorpus() *corpus.Corpus {
	return corpus.New(
		&model.ReferenceDocument{ID: "shortcodes", Text: "Register a shortcode with add_shortcode and return markup instead of echoing it."},
		&model.ReferenceDocument{ID: "admin-menus", Text: "Use add_menu_page for admin screens and check current_user_can."},
		&model.ReferenceDocument{ID: "security", Text: "Security: escape output with esc_html and verify nonces."},
		&model.ReferenceDocument{ID: "ajax", Text: "Handle ajax requests with wp_ajax_ hooks and check_ajax_referer."},
	)
}

func fixedClock() time.Time {
	return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("shortcode request produces downloadable bundle and playground", func(t *testing.T) {
		gen := &mockGenerator{result: &model.GenerationResult{
			Text:       shortcodePluginCode,
			ProviderID: types.ProviderGeminiFlash,
			Model:      "gemini-2.0-flash",
		}}
		blobs := memory.NewBlobStore()
		uc := usecase.New(gen, blobs, usecase.WithClock(fixedClock))

		out, err := uc.Generate(ctx, model.NewGenerationRequest("a plugin with a greeting shortcode"), "https://example.com/")
		gt.NoError(t, err).Required()

		gt.Value(t, out.PluginName).Equal("Hello Greeter")
		gt.Value(t, out.PluginSlug).Equal(types.Slug("hello-greeter"))
		gt.Value(t, out.ModelUsed).Equal("gemini-2.0-flash")
		gt.Value(t, out.DownloadURL).Equal("https://example.com/download/hello-greeter.zip")
		gt.Value(t, out.BlueprintURL).Equal("https://example.com/download/hello-greeter-blueprint.json")
		gt.Value(t, out.PlaygroundURL).Equal("https://example.com/playground/hello-greeter")
		gt.Value(t, out.TokensUsed).Nil()
		gt.Array(t, out.Context).Length(0)

		main := out.Bundle.File("hello-greeter.php")
		gt.Value(t, main).NotNil().Required()
		gt.Bool(t, strings.HasPrefix(main.Content, "<?php")).True()
		gt.Value(t, out.Bundle.File(plugin.PublicStylePath)).NotNil()
		gt.Value(t, out.Bundle.File(plugin.PublicScriptPath)).NotNil()
		gt.Value(t, out.Bundle.File(plugin.AdminStylePath)).Nil()

		archive, err := uc.GetObject(ctx, "hello-greeter.zip")
		gt.NoError(t, err).Required()
		gt.Value(t, archive.ContentType).Equal("application/zip")

		unpacked, err := plugin.Unpack(archive.Data)
		gt.NoError(t, err).Required()
		gt.Number(t, len(unpacked.Files)).Equal(len(out.Bundle.Files))

		descriptor, err := uc.GetObject(ctx, "hello-greeter-blueprint.json")
		gt.NoError(t, err).Required()
		gt.Value(t, descriptor.ContentType).Equal("application/json")

		var bp blueprint.Blueprint
		gt.NoError(t, json.Unmarshal(descriptor.Data, &bp)).Required()
		gt.Value(t, bp.LandingPage).Equal("/hello-greeter-demo/")
		gt.Value(t, bp.Steps[1].PluginData.URL).Equal(out.DownloadURL)
		gt.Value(t, bp.Steps[2].Step).Equal("runPHP")
		gt.String(t, bp.Steps[2].Code).Contains("[hello_greeter]")

		playground, err := uc.PlaygroundURL(ctx, out.PluginSlug, "https://example.com")
		gt.NoError(t, err).Required()
		gt.String(t, playground).Contains(blueprint.PlaygroundBaseURL)
		gt.String(t, playground).Contains("hello-greeter-blueprint.json")
	})

	t.Run("empty prompt is rejected before any collaborator is called", func(t *testing.T) {
		gen := &mockGenerator{result: &model.GenerationResult{Text: shortcodePluginCode}}
		embedder := newKeywordEmbedder()
		blobs := &countingBlobStore{inner: memory.NewBlobStore()}
		uc := usecase.New(gen, blobs, usecase.WithRetrieval(embedder, memory.NewVectorIndex()))

		for _, prompt := range []string{"", "   \n\t"} {
			_, err := uc.Generate(ctx, model.NewGenerationRequest(prompt), "http://localhost:8080")
			gt.Error(t, err).Is(model.ErrValidation)
		}

		_, err := uc.Generate(ctx, nil, "http://localhost:8080")
		gt.Error(t, err).Is(model.ErrValidation)

		gt.Number(t, gen.calls()).Equal(0)
		gt.Number(t, embedder.calls()).Equal(0)
		gt.Number(t, blobs.puts).Equal(0)
	})

	t.Run("generation failure stores nothing", func(t *testing.T) {
		gen := &mockGenerator{err: model.ErrAllProvidersExhausted}
		blobs := &countingBlobStore{inner: memory.NewBlobStore()}
		uc := usecase.New(gen, blobs)

		_, err := uc.Generate(ctx, model.NewGenerationRequest("anything"), "http://localhost:8080")
		gt.Error(t, err).Is(model.ErrAllProvidersExhausted)
		gt.Number(t, blobs.puts).Equal(0)
	})

	t.Run("selected provider receives the request api key", func(t *testing.T) {
		tokens := 42
		gen := &mockGenerator{result: &model.GenerationResult{
			Text:       shortcodePluginCode,
			ProviderID: types.ProviderGroqLlama,
			Model:      "llama-3.3-70b-versatile",
			Usage:      &model.Usage{TokensUsed: &tokens},
		}}
		uc := usecase.New(gen, memory.NewBlobStore())

		req := model.NewGenerationRequest("greeting shortcode")
		req.ProviderID = types.ProviderGroqLlama
		req.APIKey = "user-key"

		out, err := uc.Generate(ctx, req, "http://localhost:8080")
		gt.NoError(t, err).Required()
		gt.Array(t, gen.selectedIDs).Length(1).Required()
		gt.Value(t, gen.selectedIDs[0]).Equal(types.ProviderGroqLlama)
		gt.Value(t, gen.selectedKeys[0]).Equal("user-key")
		gt.Value(t, out.TokensUsed).NotNil().Required()
		gt.Number(t, *out.TokensUsed).Equal(42)
	})

	t.Run("retrieved passages are passed to the prompt and returned", func(t *testing.T) {
		gen := &mockGenerator{result: &model.GenerationResult{Text: shortcodePluginCode, Model: "m"}}
		embedder := newKeywordEmbedder()
		index := memory.NewVectorIndex()
		uc := usecase.New(gen, memory.NewBlobStore(),
			usecase.WithRetrieval(embedder, index),
			usecase.WithCorpus(testCorpus()),
		)

		_, err := uc.Ingest(ctx)
		gt.NoError(t, err).Required()

		out, err := uc.Generate(ctx, model.NewGenerationRequest("a shortcode with ajax"), "http://localhost:8080")
		gt.NoError(t, err).Required()
		gt.Array(t, out.Context).Length(3).Required()
		gt.Array(t, gen.prompts).Length(1).Required()
		gt.String(t, gen.prompts[0]).Contains("add_shortcode and return markup")
		gt.String(t, gen.prompts[0]).Contains("check_ajax_referer")
	})
}

func TestRetrieve(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled retrieval yields empty context", func(t *testing.T) {
		uc := usecase.New(&mockGenerator{}, memory.NewBlobStore())
		gt.Bool(t, uc.RetrievalEnabled()).False()

		block, passages, err := uc.Retrieve(ctx, "anything")
		gt.NoError(t, err)
		gt.Value(t, block).Equal("")
		gt.Array(t, passages).Length(0)
	})

	t.Run("empty index yields empty context", func(t *testing.T) {
		uc := usecase.New(&mockGenerator{}, memory.NewBlobStore(),
			usecase.WithRetrieval(newKeywordEmbedder(), memory.NewVectorIndex()),
		)

		block, passages, err := uc.Retrieve(ctx, "shortcode")
		gt.NoError(t, err)
		gt.Value(t, block).Equal("")
		gt.Array(t, passages).Length(0)
	})

	t.Run("passages are joined with blank lines and empty texts dropped", func(t *testing.T) {
		index := memory.NewVectorIndex()
		gt.NoError(t, index.Upsert(ctx, []*model.EmbeddingVector{
			{DocumentID: "a", Values: []float32{1, 0, 0, 0, 0.01}, Text: "first"},
			{DocumentID: "b", Values: []float32{1, 0, 0, 0, 0.02}, Text: ""},
			{DocumentID: "c", Values: []float32{1, 1, 0, 0, 0.01}, Text: "second"},
		})).Required()

		uc := usecase.New(&mockGenerator{}, memory.NewBlobStore(),
			usecase.WithRetrieval(newKeywordEmbedder(), index),
		)

		block, passages, err := uc.Retrieve(ctx, "shortcode")
		gt.NoError(t, err).Required()
		gt.Array(t, passages).Length(2)
		gt.Value(t, block).Equal("first\n\nsecond")
	})

	t.Run("embedding failure is reported", func(t *testing.T) {
		embedder := newKeywordEmbedder()
		embedder.err = model.ErrEmbeddingUnavailable
		uc := usecase.New(&mockGenerator{}, memory.NewBlobStore(),
			usecase.WithRetrieval(embedder, memory.NewVectorIndex()),
		)

		_, _, err := uc.Retrieve(ctx, "shortcode")
		gt.Error(t, err).Is(model.ErrEmbeddingUnavailable)
	})
}

func TestIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("embeds every document", func(t *testing.T) {
		embedder := newKeywordEmbedder()
		index := memory.NewVectorIndex()
		uc := usecase.New(&mockGenerator{}, memory.NewBlobStore(),
			usecase.WithRetrieval(embedder, index),
			usecase.WithCorpus(testCorpus()),
			usecase.WithIngestConcurrency(2),
		)

		count, err := uc.Ingest(ctx)
		gt.NoError(t, err).Required()
		gt.Number(t, count).Equal(4)
		gt.Number(t, embedder.calls()).Equal(4)

		// Re-ingesting replaces entries instead of duplicating them
		_, err = uc.Ingest(ctx)
		gt.NoError(t, err).Required()
		matches, err := index.Query(ctx, []float32{1, 1, 1, 1, 1}, 10)
		gt.NoError(t, err).Required()
		gt.Array(t, matches).Length(4)
	})

	t.Run("non-positive concurrency falls back to the default", func(t *testing.T) {
		for _, n := range []int{0, -3} {
			embedder := newKeywordEmbedder()
			uc := usecase.New(&mockGenerator{}, memory.NewBlobStore(),
				usecase.WithRetrieval(embedder, memory.NewVectorIndex()),
				usecase.WithCorpus(testCorpus()),
				usecase.WithIngestConcurrency(n),
			)

			done := make(chan struct{})
			var count int
			var err error
			go func() {
				defer close(done)
				count, err = uc.Ingest(ctx)
			}()

			select {
			case <-done:
			case <-time.After(5 * time.Second):
				t.Fatalf("Ingest with concurrency %d did not return", n)
			}
			gt.NoError(t, err).Required()
			gt.Number(t, count).Equal(4)
			gt.Number(t, embedder.calls()).Equal(4)
		}
	})

	t.Run("embedded corpus is used by default", func(t *testing.T) {
		uc := usecase.New(&mockGenerator{}, memory.NewBlobStore(),
			usecase.WithRetrieval(newKeywordEmbedder(), memory.NewVectorIndex()),
		)

		count, err := uc.Ingest(ctx)
		gt.NoError(t, err).Required()
		gt.Number(t, count).Equal(corpus.Default().Len())
	})

	t.Run("embedding failure aborts ingestion", func(t *testing.T) {
		embedder := newKeywordEmbedder()
		embedder.err = model.ErrEmbeddingUnavailable
		uc := usecase.New(&mockGenerator{}, memory.NewBlobStore(),
			usecase.WithRetrieval(embedder, memory.NewVectorIndex()),
			usecase.WithCorpus(testCorpus()),
		)

		_, err := uc.Ingest(ctx)
		gt.Error(t, err).Is(model.ErrEmbeddingUnavailable)
	})

	t.Run("missing embedder is reported", func(t *testing.T) {
		uc := usecase.New(&mockGenerator{}, memory.NewBlobStore())
		_, err := uc.Ingest(ctx)
		gt.Error(t, err).Is(model.ErrEmbeddingUnavailable)
	})
}

func TestGetObject(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(&mockGenerator{}, memory.NewBlobStore())

	t.Run("unknown key is not found", func(t *testing.T) {
		_, err := uc.GetObject(ctx, "missing.zip")
		gt.Error(t, err).Is(model.ErrNotFound)
	})

	t.Run("invalid key is not found", func(t *testing.T) {
		_, err := uc.GetObject(ctx, "../etc/passwd")
		gt.Error(t, err).Is(model.ErrNotFound)
		_, err = uc.GetObject(ctx, "Missing.zip")
		gt.Error(t, err).Is(model.ErrNotFound)
		gt.Bool(t, errors.Is(err, model.ErrNotFound)).False()
	})

	t.Run("playground without descriptor is not found", func(t *testing.T) {
		_, err := uc.PlaygroundURL(ctx, "nothing-here", "http://localhost:8080")
		gt.Error(t, err).Is(model.ErrNotFound)
	})
}

func TestProviders(t *testing.T) {
	uc := usecase.New(&mockGenerator{}, memory.NewBlobStore())
	catalog := uc.Providers()
	gt.Array(t, catalog.Providers).Length(2)
	gt.Array(t, catalog.Order).Length(2)
	gt.Value(t, catalog.Order[0]).Equal(types.ProviderGeminiFlash)
}
