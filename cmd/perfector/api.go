package main

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/hazyhaar/perfector/docmodel"
	"github.com/hazyhaar/perfector/docpipe"
	"github.com/hazyhaar/perfector/idgen"
	"github.com/hazyhaar/perfector/ingest"
	"github.com/hazyhaar/perfector/kit"
	"github.com/hazyhaar/perfector/library"
)

// maxUploadBytes caps multipart import uploads.
const maxUploadBytes = 50 * 1024 * 1024

type api struct {
	pipe   *docpipe.Pipeline
	store  *library.Store
	logger *slog.Logger
	newID  idgen.Generator
}

func newRouter(a *api, passwordHash string) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID(a.newID))
	if passwordHash != "" {
		r.Use(basicAuth(passwordHash))
	}

	r.Get("/v1/health", a.handleHealth)
	r.Post("/v1/import", a.handleImportFile)
	r.Post("/v1/import/text", a.handleImportText)
	r.Post("/v1/export/markdown", a.handleExportMarkdown)
	r.Post("/v1/roundtrip", a.handleRoundTrip)

	r.Route("/v1/documents", func(r chi.Router) {
		r.Get("/", a.handleList)
		r.Post("/", a.handleSave)
		r.Get("/search", a.handleSearch)
		r.Get("/{docID}", a.handleGet)
		r.Delete("/{docID}", a.handleDelete)
		r.Get("/{docID}/revisions", a.handleRevisions)
	})

	return r
}

// requestID tags each request context for log correlation.
func requestID(gen idgen.Generator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := kit.WithRequestID(r.Context(), gen())
			ctx = kit.WithTransport(ctx, "http")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// basicAuth guards the API with a shared bcrypt-hashed password.
func basicAuth(hash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok ||
				subtle.ConstantTimeCompare([]byte(user), []byte("editor")) != 1 ||
				bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass)) != nil {
				w.Header().Set("WWW-Authenticate", `Basic realm="perfector"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *api) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// handleImportFile accepts a multipart upload, spools it to a temp file and
// runs the import pipeline on it.
func (a *api) handleImportFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parse upload: %w", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing file field: %w", err))
		return
	}
	defer file.Close()

	tmpDir, err := os.MkdirTemp("", "perfector-import-*")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	defer os.RemoveAll(tmpDir)

	tmpPath := filepath.Join(tmpDir, filepath.Base(header.Filename))
	dst, err := os.Create(tmpPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	dst.Close()

	res, err := a.pipe.Import(r.Context(), tmpPath)
	if err != nil {
		a.logger.Warn("import failed", "file", header.Filename, "error", err,
			"request_id", kit.GetRequestID(r.Context()))
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type importTextReq struct {
	Text        string `json:"text"`
	SourceLabel string `json:"sourceLabel"`
}

func (a *api) handleImportText(w http.ResponseWriter, r *http.Request) {
	var req importTextReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	doc := a.pipe.ImportText(req.Text, req.SourceLabel)
	writeJSON(w, http.StatusOK, map[string]any{"doc": doc})
}

type exportReq struct {
	Document *docmodel.Document `json:"document"`
}

func (a *api) handleExportMarkdown(w http.ResponseWriter, r *http.Request) {
	var req exportReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Document == nil {
		writeError(w, http.StatusBadRequest, errors.New("missing document"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"markdown": a.pipe.ExportMarkdown(req.Document)})
}

type roundTripReq struct {
	Markdown string `json:"markdown"`
}

// handleRoundTrip is the freeform editor path: edited Markdown comes back
// in and must resolve to a structured document. This is the one import
// surface that reports a parse failure to the caller instead of silently
// degrading; the document state on the client stays unchanged on error.
func (a *api) handleRoundTrip(w http.ResponseWriter, r *http.Request) {
	var req roundTripReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Markdown) == "" {
		writeError(w, http.StatusUnprocessableEntity, errors.New("empty document text"))
		return
	}
	if !ingest.LooksLikeMarkdown(req.Markdown) {
		writeError(w, http.StatusUnprocessableEntity,
			errors.New("could not resolve document structure: text has no headings or formatting"))
		return
	}
	doc := ingest.FromMarkdown(req.Markdown, ingest.Options{SourceLabel: "freeform edit"})
	writeJSON(w, http.StatusOK, map[string]any{"doc": doc})
}

type saveReq struct {
	ID       string             `json:"id"`
	Document *docmodel.Document `json:"document"`
}

func (a *api) handleSave(w http.ResponseWriter, r *http.Request) {
	var req saveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Document == nil {
		writeError(w, http.StatusBadRequest, errors.New("missing document"))
		return
	}
	id, err := a.store.Save(r.Context(), req.ID, req.Document)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

func (a *api) handleList(w http.ResponseWriter, r *http.Request) {
	entries, err := a.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": entries})
}

func (a *api) handleGet(w http.ResponseWriter, r *http.Request) {
	doc, err := a.store.Get(r.Context(), chi.URLParam(r, "docID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"doc": doc})
}

func (a *api) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.store.Delete(r.Context(), chi.URLParam(r, "docID")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleRevisions(w http.ResponseWriter, r *http.Request) {
	revs, err := a.store.Revisions(r.Context(), chi.URLParam(r, "docID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"revisions": revs})
}

func (a *api) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing q parameter"))
		return
	}
	entries, err := a.store.Search(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": entries})
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, library.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}
