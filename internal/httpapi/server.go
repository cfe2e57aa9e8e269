// Package httpapi serves uploads and document queries over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mfenderov/pdfvault/internal/apperr"
	"github.com/mfenderov/pdfvault/internal/ingestion"
	"github.com/mfenderov/pdfvault/internal/pipeline"
	"github.com/mfenderov/pdfvault/internal/query"
	"github.com/mfenderov/pdfvault/internal/store"
	"github.com/mfenderov/pdfvault/pkg/models"
)

// DefaultMaxUploadBytes caps a request body when no limit is configured.
const DefaultMaxUploadBytes = 50 << 20

// Processor runs one upload through the ingestion pipeline.
type Processor interface {
	Process(ctx context.Context, up pipeline.Upload) (models.Document, error)
}

// Pinger reports backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds HTTP server configuration.
type Config struct {
	MaxUploadBytes int64
}

// Server routes HTTP requests to the pipeline and the query engine.
type Server struct {
	proc      Processor
	queries   *query.Service
	health    Pinger
	maxUpload int64
	mux       *http.ServeMux
}

// NewServer builds the route table.
func NewServer(config Config, proc Processor, queries *query.Service, health Pinger) *Server {
	s := &Server{
		proc:      proc,
		queries:   queries,
		health:    health,
		maxUpload: config.MaxUploadBytes,
		mux:       http.NewServeMux(),
	}
	if s.maxUpload <= 0 {
		s.maxUpload = DefaultMaxUploadBytes
	}

	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /stats", s.handleStats)
	s.mux.HandleFunc("POST /upload", s.handleUpload)
	s.mux.HandleFunc("GET /documents", s.handleList)
	s.mux.HandleFunc("GET /documents/search", s.handleSearch)
	s.mux.HandleFunc("GET /documents/{id}", s.handleGet)
	s.mux.HandleFunc("DELETE /documents/{id}", s.handleDelete)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type deleteResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps error categories onto status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	detail := "internal server error"

	switch {
	case errors.Is(err, apperr.ErrValidation):
		status, detail = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, apperr.ErrNotFound):
		status, detail = http.StatusNotFound, "Document not found"
	case errors.Is(err, apperr.ErrUnsupported):
		status, detail = http.StatusBadRequest, apperr.ErrUnsupported.Error()
	case errors.Is(err, apperr.ErrDecode):
		status, detail = http.StatusBadRequest, err.Error()
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		slog.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Detail: detail})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.Ping(r.Context()); err != nil {
			slog.Warn("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.queries.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
				Detail: fmt.Sprintf("file exceeds %d bytes", tooLarge.Limit),
			})
			return
		}
		writeError(w, r, apperr.Invalid("file", "multipart field is required"))
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if !ingestion.IsPDFName(filename) {
		writeError(w, r, apperr.Unsupported(filename))
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, fmt.Errorf("read upload: %w", err))
		return
	}

	doc, err := s.proc.Process(r.Context(), pipeline.Upload{Filename: filename, Content: content})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()

	page, err := parsePage(v.Get("limit"), v.Get("offset"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	var f store.Filter
	if raw := v.Get("pii_found"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, r, apperr.Invalid("pii_found", "must be a boolean"))
			return
		}
		f.PIIFound = &b
	}
	if f.CreatedFrom, err = parseTime("from_date", v.Get("from_date")); err != nil {
		writeError(w, r, err)
		return
	}
	if f.CreatedTo, err = parseTime("to_date", v.Get("to_date")); err != nil {
		writeError(w, r, err)
		return
	}
	f.Author = v.Get("author")

	res, err := s.queries.List(r.Context(), f, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()

	page, err := parsePage(v.Get("limit"), v.Get("offset"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := s.queries.Search(r.Context(), v.Get("q"), page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	doc, err := s.queries.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.queries.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Message: "Document deleted successfully", ID: id})
}

func parsePage(limit, offset string) (query.Page, error) {
	var p query.Page
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return p, apperr.Invalid("limit", "must be an integer")
		}
		p.Limit = n
		if n == 0 {
			// Only an absent limit selects the default.
			return p, apperr.Invalid("limit", "must be between 1 and %d, got 0", query.MaxLimit)
		}
	}
	if offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil {
			return p, apperr.Invalid("offset", "must be an integer")
		}
		p.Offset = n
	}
	return p, nil
}

// timeLayouts are the accepted forms of from_date and to_date.
var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func parseTime(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apperr.Invalid(field, "must be an RFC 3339 timestamp or YYYY-MM-DD date")
}
