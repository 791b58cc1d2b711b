package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/dgallion1/docforge/internal/compiler"
	"github.com/dgallion1/docforge/internal/content"
	"github.com/dgallion1/docforge/internal/pathstore"
	"github.com/go-chi/chi/v5"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// handleCompile compiles the record in the request body and returns the
// document.
func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var rec compiler.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		jsonError(w, "invalid record: "+err.Error(), http.StatusBadRequest)
		return
	}

	out, err := s.compiler.Render(r.Context(), &rec)
	if err != nil {
		s.compileError(w, err)
		return
	}
	writeDocument(w, out)
}

// handleExport compiles a stored record.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	out, err := s.compiler.Export(r.Context(), s.records, docID)
	if err != nil {
		s.compileError(w, err)
		return
	}
	writeDocument(w, out)
}

// handleListDocuments lists stored records.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	limit := 200
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	docs, err := s.records.List(r.Context(), limit)
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"documents": docs})
}

// handlePutDocument stores a record after checking that its content
// decodes.
func (s *Server) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if !pathstore.ValidID(docID) {
		jsonError(w, "invalid document id", http.StatusBadRequest)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var rec compiler.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		jsonError(w, "invalid record: "+err.Error(), http.StatusBadRequest)
		return
	}
	if rec.ID != "" && rec.ID != docID {
		jsonError(w, "record id does not match path", http.StatusBadRequest)
		return
	}
	rec.ID = docID

	if _, err := content.Decode(rec.Body, s.cfg.MaxContentDepth); err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if err := s.records.Put(r.Context(), &rec); err != nil {
		jsonError(w, "failed to store document: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"doc_id":     docID,
		"export_url": fmt.Sprintf("/api/documents/%s/export", docID),
	})
}

// handleDeleteDocument deletes a stored record.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if err := s.records.Delete(r.Context(), docID); err != nil {
		if errors.Is(err, pathstore.ErrInvalidID) {
			jsonError(w, "invalid document id", http.StatusBadRequest)
			return
		}
		jsonError(w, "failed to delete document: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// compileError maps compiler failures to status codes.
func (s *Server) compileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, compiler.ErrRecordNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case compiler.IsContentError(err):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		s.log.Error("compile failed", "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeDocument(w http.ResponseWriter, out *compiler.Output) {
	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": out.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Data)))
	w.Write(out.Data)
}
