package repository

import (
	"context"
	"time"

	"github.com/iconidentify/vidcard/internal/domain"
)

// SettingsRepository persists the enrichment settings.
type SettingsRepository interface {
	// Load returns the stored values. Fields never written are nil.
	Load(ctx context.Context) (*StoredSettings, error)

	// Save writes all fields.
	Save(ctx context.Context, s domain.Settings) error

	// Ping checks the store is reachable.
	Ping(ctx context.Context) error
}

// JobRepository manages the enrichment job queue.
type JobRepository interface {
	// Enqueue adds a job to the queue.
	Enqueue(ctx context.Context, job *domain.Job) error

	// Dequeue retrieves the next queued job (FIFO).
	Dequeue(ctx context.Context) (*domain.Job, error)

	// Update modifies job state.
	Update(ctx context.Context, job *domain.Job) error

	// Get retrieves a job by ID.
	Get(ctx context.Context, id domain.JobID) (*domain.Job, error)

	// Stats returns queue statistics.
	Stats(ctx context.Context) (*QueueStats, error)
}

// StoredSettings holds the persisted settings columns. A nil field was
// never written and falls back to its default.
type StoredSettings struct {
	ShowThumbnail   *bool
	ShowChannelIcon *bool
	APIKey          *string
	UpdatedAt       time.Time
}

// Merge overlays the stored values on base.
func (s *StoredSettings) Merge(base domain.Settings) domain.Settings {
	if s == nil {
		return base
	}
	if s.ShowThumbnail != nil {
		base.ShowThumbnail = *s.ShowThumbnail
	}
	if s.ShowChannelIcon != nil {
		base.ShowChannelIcon = *s.ShowChannelIcon
	}
	if s.APIKey != nil {
		base.APIKey = *s.APIKey
	}
	return base
}

// QueueStats contains job queue statistics.
type QueueStats struct {
	Queued     int `json:"queued"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}
