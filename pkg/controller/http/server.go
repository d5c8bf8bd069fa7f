package http

import (
	"context"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/plugsmith/plugsmith/frontend"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
	"github.com/plugsmith/plugsmith/pkg/domain/types"
	"github.com/plugsmith/plugsmith/pkg/usecase"
	"github.com/plugsmith/plugsmith/pkg/utils/logging"
	"github.com/plugsmith/plugsmith/pkg/utils/safe"
)

// UseCase is the subset of usecase.UseCases served over HTTP
type UseCase interface {
	Generate(ctx context.Context, req *model.GenerationRequest, baseURL string) (*usecase.GenerateOutput, error)
	GetObject(ctx context.Context, key types.ObjectKey) (*model.StoredObject, error)
	PlaygroundURL(ctx context.Context, slug types.Slug, baseURL string) (string, error)
	Ingest(ctx context.Context) (int, error)
	Providers() *usecase.ProviderCatalog
}

type Server struct {
	router    *chi.Mux
	uc        UseCase
	publicURL string
	staticFS  fs.FS
}

type Options func(*Server)

// WithPublicURL sets the origin used in returned links. When empty, the
// origin is derived from each request.
func WithPublicURL(publicURL string) Options {
	return func(s *Server) {
		s.publicURL = strings.TrimRight(publicURL, "/")
	}
}

// WithStaticFS replaces the embedded frontend
func WithStaticFS(fsys fs.FS) Options {
	return func(s *Server) {
		s.staticFS = fsys
	}
}

func New(uc UseCase, opts ...Options) (*Server, error) {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.staticFS == nil {
		staticFS, err := fs.Sub(frontend.StaticFiles, "dist")
		if err != nil {
			return nil, goerr.Wrap(err, "failed to bind dist dir for static")
		}
		s.staticFS = staticFS
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.HandleFunc("/api/generate", s.generateHandler)
	r.Post("/", s.generateHandler)
	r.Get("/api/providers", s.providersHandler)
	r.Get("/download/{key}", s.downloadHandler)
	r.Get("/playground/{slug}", s.playgroundHandler)
	r.Get("/ingest", s.ingestHandler)
	r.Get("/health", healthHandler)

	// Static file serving for SPA (catch-all, must be last)
	spa := spaHandler(s.staticFS)
	r.Get("/", spa)
	r.Get("/*", spa)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// baseURL returns the configured public URL or the origin of r
func (s *Server) baseURL(r *http.Request) string {
	if s.publicURL != "" {
		return s.publicURL
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.From(r.Context()).Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// spaHandler handles SPA routing by serving static files and falling back to index.html
func spaHandler(staticFS fs.FS) http.HandlerFunc {
	fileServer := http.FileServer(http.FS(staticFS))

	return func(w http.ResponseWriter, r *http.Request) {
		urlPath := strings.TrimPrefix(r.URL.Path, "/")

		if urlPath == "" {
			urlPath = "index.html"
		}

		if file, err := staticFS.Open(urlPath); err != nil {
			// File not found, serve index.html for SPA routing
			if indexFile, err := staticFS.Open("index.html"); err == nil {
				defer safe.Close(r.Context(), indexFile)
				w.Header().Set("Content-Type", "text/html")
				safe.Copy(r.Context(), w, indexFile)
				return
			}

			http.NotFound(w, r)
			return
		} else {
			safe.Close(r.Context(), file)
		}

		fileServer.ServeHTTP(w, r)
	}
}
