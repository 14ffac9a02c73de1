package domain

import (
	"time"
)

// JobID is a unique identifier for a job.
type JobID string

// String returns the string representation of the JobID.
func (id JobID) String() string {
	return string(id)
}

// JobStatus represents the current state of a job.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job is an enrichment pass submitted for background processing.
type Job struct {
	ID        JobID
	Mode      EnrichMode
	Input     string
	Output    string
	Report    EnrichReport
	Status    JobStatus
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewJob creates a queued job for the given content.
func NewJob(id JobID, mode EnrichMode, input string) *Job {
	now := time.Now()
	return &Job{
		ID:        id,
		Mode:      mode,
		Input:     input,
		Status:    JobStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsDone reports whether the job reached a final state.
func (j *Job) IsDone() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// MarkProcessing updates the job status to processing.
func (j *Job) MarkProcessing() {
	j.Status = JobStatusProcessing
	j.UpdatedAt = time.Now()
}

// MarkCompleted stores the pass result.
func (j *Job) MarkCompleted(output string, report EnrichReport) {
	j.Status = JobStatusCompleted
	j.Output = output
	j.Report = report
	j.UpdatedAt = time.Now()
}

// MarkFailed updates the job status to failed with an error message.
func (j *Job) MarkFailed(err string) {
	j.Status = JobStatusFailed
	j.LastError = err
	j.UpdatedAt = time.Now()
}
