package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dgallion1/md2docx/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	in, err := s.readConvertInput(w, r)
	if err != nil {
		var re *requestError
		if errors.As(err, &re) {
			jsonError(w, re.msg, re.status)
			return
		}
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if in.Markdown == "" {
		jsonError(w, "markdown is required", http.StatusBadRequest)
		return
	}

	opts, err := s.defaults.Apply(in.Fields)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	job := pipeline.NewJob(in.Markdown, in.DocName, opts)
	if err := s.orchestrator.Submit(job); err != nil {
		if errors.Is(err, pipeline.ErrQueueFull) {
			jsonError(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":       snap.ID,
		"status":       snap.Status,
		"content_hash": snap.ContentHash,
		"poll_url":     fmt.Sprintf("/api/jobs/%s", job.ID),
		"document_url": fmt.Sprintf("/api/jobs/%s/document", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

func (s *Server) handleJobDocument(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	doc, hash, ok := job.Document()
	if !ok {
		snap := job.Snapshot()
		jsonError(w, fmt.Sprintf("document not ready (status %s)", snap.Status), http.StatusConflict)
		return
	}
	if match := r.Header.Get("If-None-Match"); match != "" && match == `"`+hash+`"` {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeDocument(w, doc, hash, job.Filename)
}
