// Package httpadapter exposes the ingestion API: document upload, metadata
// reads, and the classification view.
package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/caseloom/docingest/internal/core/ports"
)

type Router struct {
	ingestor ports.DocumentIngestor
	repo     ports.DocumentRepository

	rateLimitRPS   int
	rateLimitBurst int
	maxConcurrent  int
	recordIngest   func(mimeType string, size int64)
}

type RouterOptions struct {
	RateLimitRPS   int
	RateLimitBurst int
	MaxConcurrent  int

	// RecordIngest, when set, is called once per accepted upload.
	RecordIngest func(mimeType string, size int64)
}

func NewRouter(ingestor ports.DocumentIngestor, repo ports.DocumentRepository, opts RouterOptions) *Router {
	return &Router{
		ingestor:       ingestor,
		repo:           repo,
		rateLimitRPS:   opts.RateLimitRPS,
		rateLimitBurst: opts.RateLimitBurst,
		maxConcurrent:  opts.MaxConcurrent,
		recordIngest:   opts.RecordIngest,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/documents", rt.uploadDocument)
	mux.HandleFunc("/v1/documents/", rt.documentSubresource)

	var handler http.Handler = mux
	if rt.maxConcurrent > 0 {
		handler = backpressureMiddleware(handler, rt.maxConcurrent, 50*time.Millisecond)
	}
	if rt.rateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.ingestor.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	if rt.recordIngest != nil {
		rt.recordIngest(fileHeader.Header.Get("Content-Type"), fileHeader.Size)
	}
	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) documentSubresource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	doc, err := rt.repo.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	switch sub {
	case "":
		writeJSON(w, http.StatusOK, doc)
	case "classification":
		writeJSON(w, http.StatusOK, map[string]any{
			"document_id":   doc.ID,
			"document_type": doc.DocumentType,
			"confidence":    doc.Confidence,
			"status":        doc.Status,
			"error":         doc.Error,
		})
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown document subresource"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
