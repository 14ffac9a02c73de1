package handler

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/iconidentify/vidcard/internal/domain"
	"github.com/iconidentify/vidcard/internal/repository"
	"github.com/iconidentify/vidcard/internal/service"
)

// testLogger returns a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockSettings is a test implementation of SettingsManager and Pinger.
type mockSettings struct {
	mu      sync.Mutex
	current domain.Settings
	loadErr error
	saveErr error
	pingErr error
	applied int
}

func newMockSettings(s domain.Settings) *mockSettings {
	return &mockSettings{current: s}
}

func (m *mockSettings) Load(ctx context.Context) (domain.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return domain.Settings{}, m.loadErr
	}
	return m.current, nil
}

func (m *mockSettings) Apply(ctx context.Context, upd service.SettingsUpdate) (domain.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return domain.Settings{}, m.loadErr
	}
	next := m.current
	if upd.ShowThumbnail != nil {
		next.ShowThumbnail = *upd.ShowThumbnail
	}
	if upd.ShowChannelIcon != nil {
		next.ShowChannelIcon = *upd.ShowChannelIcon
	}
	if upd.APIKey != nil {
		next.APIKey = *upd.APIKey
	}
	if err := next.Validate(); err != nil {
		return domain.Settings{}, err
	}
	if m.saveErr != nil {
		return domain.Settings{}, m.saveErr
	}
	m.current = next
	m.applied++
	return next, nil
}

func (m *mockSettings) Ping(ctx context.Context) error {
	return m.pingErr
}

// mockEnricher records the pass it was asked to run.
type mockEnricher struct {
	mu           sync.Mutex
	gotSettings  domain.Settings
	gotMode      domain.EnrichMode
	documentCall bool
	docErr       error
}

func (m *mockEnricher) EnrichHTML(ctx context.Context, content string, settings domain.Settings, mode domain.EnrichMode) (string, domain.EnrichReport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gotSettings, m.gotMode = settings, mode
	n := strings.Count(content, "youtu")
	return strings.ReplaceAll(content, "LINK", "CARD"), domain.EnrichReport{Candidates: n, Recognized: n, Replaced: n}
}

func (m *mockEnricher) EnrichDocument(ctx context.Context, content string, settings domain.Settings) (string, domain.EnrichReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gotSettings = settings
	m.documentCall = true
	if m.docErr != nil {
		return "", domain.EnrichReport{}, m.docErr
	}
	return "<html><body>" + content + "</body></html>", domain.EnrichReport{}, nil
}

// mockJobQueue is a test implementation of JobQueue.
type mockJobQueue struct {
	mu        sync.Mutex
	jobs      map[domain.JobID]*domain.Job
	submitErr error
	getErr    error
}

func newMockJobQueue() *mockJobQueue {
	return &mockJobQueue{jobs: make(map[domain.JobID]*domain.Job)}
}

func (m *mockJobQueue) Submit(ctx context.Context, content string, mode domain.EnrichMode) (*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	if strings.TrimSpace(content) == "" {
		return nil, domain.ErrEmptyContent
	}
	job := domain.NewJob("job_test", mode, content)
	m.jobs[job.ID] = job
	return job, nil
}

func (m *mockJobQueue) GetJob(ctx context.Context, id domain.JobID) (*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	job, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return job, nil
}

// mockQueueStats is a test implementation of QueueStatter.
type mockQueueStats struct {
	stats *repository.QueueStats
	err   error
}

func (m *mockQueueStats) Stats(ctx context.Context) (*repository.QueueStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.stats, nil
}
