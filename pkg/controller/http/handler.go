package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
	"github.com/plugsmith/plugsmith/pkg/domain/types"
	"github.com/plugsmith/plugsmith/pkg/usecase"
	"github.com/plugsmith/plugsmith/pkg/utils/errutil"
	"github.com/plugsmith/plugsmith/pkg/utils/logging"
	"github.com/plugsmith/plugsmith/pkg/utils/safe"
)

// maxRequestBody limits the size of a generation request body
const maxRequestBody = 1 << 20

type generateRequest struct {
	Prompt   string           `json:"prompt"`
	Provider types.ProviderID `json:"provider,omitempty"`
	APIKey   string           `json:"apiKey,omitempty" masq:"secret"`
}

type generateResponse struct {
	Success bool `json:"success"`
	*usecase.GenerateOutput
}

type ingestResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

func (s *Server) generateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		errutil.HandleHTTP(ctx, w, goerr.New("method not allowed", goerr.V("method", r.Method)), http.StatusMethodNotAllowed)
		return
	}

	var body generateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&body); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(model.ErrValidation, "invalid JSON body: "+err.Error()), http.StatusBadRequest)
		return
	}

	req := model.NewGenerationRequest(body.Prompt)
	req.ProviderID = body.Provider
	req.APIKey = body.APIKey

	logging.From(ctx).Info("generation requested",
		"generation_id", req.ID,
		"provider", string(req.ProviderID),
		"prompt_length", len(req.Prompt),
	)

	out, err := s.uc.Generate(ctx, req, s.baseURL(r))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, generateStatus(err))
		return
	}

	writeJSON(w, r, http.StatusOK, &generateResponse{Success: true, GenerateOutput: out})
}

func generateStatus(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrUnknownProvider):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) downloadHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := types.ObjectKey(chi.URLParam(r, "key"))

	obj, err := s.uc.GetObject(ctx, key)
	switch {
	case err == nil:
	case errors.Is(err, model.ErrNotFound):
		errutil.HandleHTTP(ctx, w, err, http.StatusNotFound)
		return
	default:
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		return
	}

	disposition := "inline"
	if obj.ContentType == "application/zip" {
		disposition = "attachment"
	}

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Disposition", disposition+`; filename="`+key.String()+`"`)
	w.WriteHeader(http.StatusOK)
	safe.Write(ctx, w, obj.Data)
}

func (s *Server) playgroundHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := types.Slug(chi.URLParam(r, "slug"))

	target, err := s.uc.PlaygroundURL(ctx, slug, s.baseURL(r))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrNotFound) {
			status = http.StatusNotFound
		}
		errutil.HandleHTTP(ctx, w, err, status)
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

func (s *Server) ingestHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	count, err := s.uc.Ingest(ctx)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, http.StatusOK, &ingestResponse{
		Message: "Reference corpus ingested",
		Count:   count,
	})
}

func (s *Server) providersHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.uc.Providers())
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}
