package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/m-mizutani/gt"
	httpctrl "github.com/plugsmith/plugsmith/pkg/controller/http"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
	"github.com/plugsmith/plugsmith/pkg/domain/types"
	"github.com/plugsmith/plugsmith/pkg/repository/memory"
	"github.com/plugsmith/plugsmith/pkg/usecase"
)

const greeterCode = `<?php
/**
 * Plugin Name: Hello Greeter
 * Description: Greets visitors with a shortcode
 * Version: 1.0.0
 * Author: Jane Doe
 */
add_shortcode('hello_greeter', function () { return '<p>Hello</p>'; });
`

type stubGenerator struct {
	text  string
	err   error
	calls int
}

func (g *stubGenerator) GenerateWithFailover(ctx context.Context, prompt string) (*model.GenerationResult, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &model.GenerationResult{Text: g.text, ProviderID: types.ProviderGeminiFlash, Model: "gemini-2.0-flash"}, nil
}

func (g *stubGenerator) GenerateWith(ctx context.Context, id types.ProviderID, prompt, apiKey string) (*model.GenerationResult, error) {
	return g.GenerateWithFailover(ctx, prompt)
}

func (g *stubGenerator) Order() []types.ProviderID {
	return []types.ProviderID{types.ProviderGeminiFlash}
}

func (g *stubGenerator) Providers() []model.ProviderInfo {
	return []model.ProviderInfo{{ID: types.ProviderGeminiFlash, Name: "Gemini 2.0 Flash", IsFree: true}}
}

type staticEmbedder struct{}

func (staticEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text)%7) + 1, 1}, nil
}

var testStatic = fstest.MapFS{
	"index.html": {Data: []byte("<html>plugsmith</html>")},
	"app.js":     {Data: []byte("console.log('app')")},
}

func newServer(t *testing.T, gen *stubGenerator, opts ...usecase.Option) *httpctrl.Server {
	t.Helper()
	uc := usecase.New(gen, memory.NewBlobStore(), opts...)
	srv, err := httpctrl.New(uc, httpctrl.WithPublicURL("https://plugsmith.example/"), httpctrl.WithStaticFS(testStatic))
	gt.NoError(t, err).Required()
	return srv
}

func do(srv http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestGenerateEndpoint(t *testing.T) {
	t.Run("generates plugin and serves archive", func(t *testing.T) {
		gen := &stubGenerator{text: greeterCode}
		srv := newServer(t, gen)

		w := do(srv, http.MethodPost, "/api/generate", `{"prompt":"a greeting shortcode"}`)
		gt.Number(t, w.Code).Equal(http.StatusOK)
		gt.Value(t, w.Header().Get("Access-Control-Allow-Origin")).Equal("*")

		var resp map[string]any
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp)).Required()
		gt.Value(t, resp["success"]).Equal(true)
		gt.Value(t, resp["pluginSlug"]).Equal("hello-greeter")
		gt.Value(t, resp["downloadUrl"]).Equal("https://plugsmith.example/download/hello-greeter.zip")
		gt.Value(t, resp["playgroundUrl"]).Equal("https://plugsmith.example/playground/hello-greeter")

		dl := do(srv, http.MethodGet, "/download/hello-greeter.zip", "")
		gt.Number(t, dl.Code).Equal(http.StatusOK)
		gt.Value(t, dl.Header().Get("Content-Type")).Equal("application/zip")
		gt.String(t, dl.Header().Get("Content-Disposition")).Contains("attachment")
		gt.Bool(t, strings.HasPrefix(dl.Body.String(), "PK")).True()

		bp := do(srv, http.MethodGet, "/download/hello-greeter-blueprint.json", "")
		gt.Number(t, bp.Code).Equal(http.StatusOK)
		gt.Value(t, bp.Header().Get("Content-Type")).Equal("application/json")
		gt.String(t, bp.Header().Get("Content-Disposition")).Contains("inline")

		pg := do(srv, http.MethodGet, "/playground/hello-greeter", "")
		gt.Number(t, pg.Code).Equal(http.StatusFound)
		gt.String(t, pg.Header().Get("Location")).Contains("playground.wordpress.net")
	})

	t.Run("root path accepts generation requests", func(t *testing.T) {
		srv := newServer(t, &stubGenerator{text: greeterCode})
		w := do(srv, http.MethodPost, "/", `{"prompt":"a greeting shortcode"}`)
		gt.Number(t, w.Code).Equal(http.StatusOK)
	})

	t.Run("empty prompt is a bad request", func(t *testing.T) {
		gen := &stubGenerator{text: greeterCode}
		srv := newServer(t, gen)

		w := do(srv, http.MethodPost, "/api/generate", `{"prompt":"   "}`)
		gt.Number(t, w.Code).Equal(http.StatusBadRequest)
		gt.Number(t, gen.calls).Equal(0)

		var resp map[string]string
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp)).Required()
		gt.Value(t, resp["error"]).Equal("Bad Request")
		gt.String(t, resp["message"]).Contains("prompt is required")
	})

	t.Run("malformed JSON is a bad request", func(t *testing.T) {
		srv := newServer(t, &stubGenerator{text: greeterCode})
		w := do(srv, http.MethodPost, "/api/generate", `{"prompt":`)
		gt.Number(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("other methods are not allowed", func(t *testing.T) {
		srv := newServer(t, &stubGenerator{text: greeterCode})
		w := do(srv, http.MethodGet, "/api/generate", "")
		gt.Number(t, w.Code).Equal(http.StatusMethodNotAllowed)
	})

	t.Run("pipeline failure hides detail", func(t *testing.T) {
		srv := newServer(t, &stubGenerator{err: model.ErrAllProvidersExhausted})
		w := do(srv, http.MethodPost, "/api/generate", `{"prompt":"anything"}`)
		gt.Number(t, w.Code).Equal(http.StatusInternalServerError)
		gt.Bool(t, strings.Contains(w.Body.String(), "exhausted")).False()
	})
}

func TestDownloadEndpoint(t *testing.T) {
	srv := newServer(t, &stubGenerator{text: greeterCode})

	t.Run("unknown key is not found", func(t *testing.T) {
		w := do(srv, http.MethodGet, "/download/missing.zip", "")
		gt.Number(t, w.Code).Equal(http.StatusNotFound)
	})

	t.Run("key that cannot exist is not found", func(t *testing.T) {
		for _, target := range []string{"/download/Missing.zip", "/download/Bad..Key", "/download/a%20b.zip"} {
			w := do(srv, http.MethodGet, target, "")
			gt.Number(t, w.Code).Equal(http.StatusNotFound)
		}
	})

	t.Run("playground without blueprint is not found", func(t *testing.T) {
		w := do(srv, http.MethodGet, "/playground/missing", "")
		gt.Number(t, w.Code).Equal(http.StatusNotFound)
	})
}

func TestPreflight(t *testing.T) {
	srv := newServer(t, &stubGenerator{text: greeterCode})

	for _, target := range []string{"/api/generate", "/download/x.zip", "/anything"} {
		w := do(srv, http.MethodOptions, target, "")
		gt.Number(t, w.Code).Equal(http.StatusNoContent)
		gt.Value(t, w.Header().Get("Access-Control-Allow-Methods")).Equal("GET, POST, HEAD, OPTIONS")
		gt.Value(t, w.Header().Get("Access-Control-Allow-Headers")).Equal("*")
	}
}

func TestIngestEndpoint(t *testing.T) {
	t.Run("reports ingested count", func(t *testing.T) {
		srv := newServer(t, &stubGenerator{}, usecase.WithRetrieval(staticEmbedder{}, memory.NewVectorIndex()))

		w := do(srv, http.MethodGet, "/ingest", "")
		gt.Number(t, w.Code).Equal(http.StatusOK)

		var resp struct {
			Message string `json:"message"`
			Count   int    `json:"count"`
		}
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp)).Required()
		gt.Number(t, resp.Count).GreaterOrEqual(1)
	})

	t.Run("missing embedder is a server error", func(t *testing.T) {
		srv := newServer(t, &stubGenerator{})
		w := do(srv, http.MethodGet, "/ingest", "")
		gt.Number(t, w.Code).Equal(http.StatusInternalServerError)
	})
}

func TestAuxiliaryEndpoints(t *testing.T) {
	srv := newServer(t, &stubGenerator{})

	t.Run("health", func(t *testing.T) {
		w := do(srv, http.MethodGet, "/health", "")
		gt.Number(t, w.Code).Equal(http.StatusOK)
		gt.String(t, w.Body.String()).Contains(`"ok"`)
	})

	t.Run("providers", func(t *testing.T) {
		w := do(srv, http.MethodGet, "/api/providers", "")
		gt.Number(t, w.Code).Equal(http.StatusOK)

		var catalog usecase.ProviderCatalog
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &catalog)).Required()
		gt.Array(t, catalog.Providers).Length(1)
		gt.Value(t, catalog.Order[0]).Equal(types.ProviderGeminiFlash)
	})

	t.Run("spa fallback serves index", func(t *testing.T) {
		w := do(srv, http.MethodGet, "/some/client/route", "")
		gt.Number(t, w.Code).Equal(http.StatusOK)
		gt.String(t, w.Body.String()).Contains("plugsmith")

		root := do(srv, http.MethodGet, "/", "")
		gt.Number(t, root.Code).Equal(http.StatusOK)
		gt.String(t, root.Body.String()).Contains("plugsmith")
	})
}
