package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dgallion1/docforge/internal/compiler"
	"github.com/dgallion1/docforge/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// handleExportAsync queues an export of a stored record.
func (s *Server) handleExportAsync(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")

	job := pipeline.NewJob(docID)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"doc_id":   job.DocID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/jobs/%s/status", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	resp := map[string]any{"job": snap}
	if snap.Status == pipeline.StatusCompleted {
		resp["download_url"] = fmt.Sprintf("/api/jobs/%s/download", snap.ID)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleJobDownload(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	name, data, ok := job.Result()
	if !ok {
		snap := job.Snapshot()
		if snap.NotFound {
			jsonError(w, "document not found", http.StatusNotFound)
			return
		}
		jsonError(w, fmt.Sprintf("job is %s", snap.Status), http.StatusConflict)
		return
	}
	writeDocument(w, &compiler.Output{Data: data, FileName: name})
}
