package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iconidentify/vidcard/internal/domain"
)

// JobQueue accepts background enrichment passes.
type JobQueue interface {
	Submit(ctx context.Context, content string, mode domain.EnrichMode) (*domain.Job, error)
	GetJob(ctx context.Context, id domain.JobID) (*domain.Job, error)
}

// JobHandler handles background enrichment jobs.
type JobHandler struct {
	jobs   JobQueue
	logger *slog.Logger
}

// NewJobHandler creates a new job handler.
func NewJobHandler(jobs JobQueue, logger *slog.Logger) *JobHandler {
	return &JobHandler{
		jobs:   jobs,
		logger: logger,
	}
}

// SubmitJobRequest is the JSON body of POST /api/v1/jobs.
type SubmitJobRequest struct {
	HTML string `json:"html"`
	Mode string `json:"mode,omitempty"`
}

// SubmitJobResponse is returned once a job is queued.
type SubmitJobResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// JobResponse represents a job in GET responses.
type JobResponse struct {
	JobID     string               `json:"job_id"`
	Mode      string               `json:"mode"`
	Status    string               `json:"status"`
	HTML      string               `json:"html,omitempty"`
	Report    *domain.EnrichReport `json:"report,omitempty"`
	Error     string               `json:"error,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// Submit handles POST /api/v1/jobs
func (h *JobHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitJobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	mode, err := domain.ParseEnrichMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, "mode must be structural or textual")
		return
	}

	job, err := h.jobs.Submit(r.Context(), req.HTML, mode)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyContent) {
			writeError(w, http.StatusBadRequest, "html is required")
			return
		}
		h.logger.Error("submit job", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to queue job")
		return
	}

	writeJSON(w, http.StatusAccepted, SubmitJobResponse{
		JobID:  job.ID.String(),
		Status: string(job.Status),
	})
}

// Get handles GET /api/v1/jobs/{jobID}
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "job ID required")
		return
	}

	job, err := h.jobs.GetJob(r.Context(), domain.JobID(jobID))
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get job")
		return
	}

	resp := JobResponse{
		JobID:     job.ID.String(),
		Mode:      string(job.Mode),
		Status:    string(job.Status),
		Error:     job.LastError,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
	if job.Status == domain.JobStatusCompleted {
		report := job.Report
		resp.HTML = job.Output
		resp.Report = &report
	}
	writeJSON(w, http.StatusOK, resp)
}
