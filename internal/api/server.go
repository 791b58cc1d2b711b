// Package api exposes the compiler over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dgallion1/docforge/internal/compiler"
	"github.com/dgallion1/docforge/internal/config"
	"github.com/dgallion1/docforge/internal/pathstore"
	"github.com/dgallion1/docforge/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RecordStore is the record persistence the API needs.
type RecordStore interface {
	compiler.RecordSource
	Put(ctx context.Context, rec *compiler.Record) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit int) ([]pathstore.Summary, error)
}

// Server is the HTTP API server for docforge.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	compiler     *compiler.Compiler
	records      RecordStore
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, c *compiler.Compiler, records RecordStore, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		compiler:     c,
		records:      records,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.DocforgeAPIKey, s.log))

		r.Post("/api/compile", s.handleCompile)
		r.Post("/api/import", s.handleImport)

		r.Get("/api/documents", s.handleListDocuments)
		r.Put("/api/documents/{docID}", s.handlePutDocument)
		r.Delete("/api/documents/{docID}", s.handleDeleteDocument)
		r.Get("/api/documents/{docID}/export", s.handleExport)
		r.Post("/api/documents/{docID}/export/async", s.handleExportAsync)

		r.Get("/api/jobs/{jobID}/status", s.handleJobStatus)
		r.Get("/api/jobs/{jobID}/download", s.handleJobDownload)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":      "ok",
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
