package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/iconidentify/vidcard/internal/domain"
)

// withJobID adds the chi URL param the router would set.
func withJobID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("jobID", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestJobHandler_Submit(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"structural", `{"html":"<a href=\"https://youtu.be/x\">x</a>"}`, http.StatusAccepted},
		{"textual", `{"html":"https://youtu.be/x","mode":"textual"}`, http.StatusAccepted},
		{"empty html", `{"html":"  "}`, http.StatusBadRequest},
		{"bad mode", `{"html":"x","mode":"nope"}`, http.StatusBadRequest},
		{"malformed", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewJobHandler(newMockJobQueue(), testLogger())

			w := httptest.NewRecorder()
			h.Submit(w, httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader(tt.body)))

			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusAccepted {
				return
			}

			var resp SubmitJobResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.JobID != "job_test" || resp.Status != string(domain.JobStatusQueued) {
				t.Errorf("resp = %+v", resp)
			}
		})
	}
}

func TestJobHandler_SubmitQueueError(t *testing.T) {
	queue := newMockJobQueue()
	queue.submitErr = errors.New("queue full")
	h := NewJobHandler(queue, testLogger())

	w := httptest.NewRecorder()
	h.Submit(w, httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader(`{"html":"x"}`)))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestJobHandler_Get(t *testing.T) {
	queue := newMockJobQueue()
	queued := domain.NewJob("job_q", domain.ModeStructural, "in")
	done := domain.NewJob("job_d", domain.ModeTextual, "in")
	done.MarkCompleted("out", domain.EnrichReport{Candidates: 2, Recognized: 2, Replaced: 1, Unresolved: 1})
	failed := domain.NewJob("job_f", domain.ModeStructural, "in")
	failed.MarkFailed("settings store unavailable")
	for _, j := range []*domain.Job{queued, done, failed} {
		queue.jobs[j.ID] = j
	}

	h := NewJobHandler(queue, testLogger())

	tests := []struct {
		id         string
		wantCode   int
		wantStatus string
		wantHTML   string
		wantReport bool
		wantError  string
	}{
		{"job_q", http.StatusOK, "queued", "", false, ""},
		{"job_d", http.StatusOK, "completed", "out", true, ""},
		{"job_f", http.StatusOK, "failed", "", false, "settings store unavailable"},
		{"job_missing", http.StatusNotFound, "", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			req := withJobID(httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+tt.id, nil), tt.id)
			w := httptest.NewRecorder()
			h.Get(w, req)

			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				return
			}

			var resp JobResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Status != tt.wantStatus || resp.HTML != tt.wantHTML || resp.Error != tt.wantError {
				t.Errorf("resp = %+v", resp)
			}
			if (resp.Report != nil) != tt.wantReport {
				t.Errorf("report present = %v, want %v", resp.Report != nil, tt.wantReport)
			}
			if tt.wantReport && resp.Report.Unresolved != 1 {
				t.Errorf("report = %+v", resp.Report)
			}
		})
	}
}

func TestJobHandler_GetErrors(t *testing.T) {
	h := NewJobHandler(newMockJobQueue(), testLogger())

	w := httptest.NewRecorder()
	h.Get(w, withJobID(httptest.NewRequest(http.MethodGet, "/api/v1/jobs/", nil), ""))
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty id: status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	queue := newMockJobQueue()
	queue.getErr = errors.New("boom")
	h = NewJobHandler(queue, testLogger())
	w = httptest.NewRecorder()
	h.Get(w, withJobID(httptest.NewRequest(http.MethodGet, "/api/v1/jobs/x", nil), "x"))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("repo error: status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}
