package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/iconidentify/vidcard/internal/domain"
	"github.com/iconidentify/vidcard/internal/repository"
)

// SettingsUpdate is a partial change to the settings. Nil fields keep the
// current value.
type SettingsUpdate struct {
	ShowThumbnail   *bool
	ShowChannelIcon *bool
	APIKey          *string
}

// SettingsService loads and saves settings, enforcing the save-time rule
// that channel icons need an API key.
type SettingsService struct {
	repo   repository.SettingsRepository
	logger *slog.Logger

	mu     sync.RWMutex
	cached *domain.Settings

	// applyMu serializes read-modify-write updates.
	applyMu sync.Mutex
}

// NewSettingsService creates a new settings service.
func NewSettingsService(repo repository.SettingsRepository, logger *slog.Logger) *SettingsService {
	return &SettingsService{
		repo:   repo,
		logger: logger,
	}
}

// Load returns the stored settings merged over the defaults.
func (s *SettingsService) Load(ctx context.Context) (domain.Settings, error) {
	s.mu.RLock()
	if s.cached != nil {
		cur := *s.cached
		s.mu.RUnlock()
		return cur, nil
	}
	s.mu.RUnlock()

	return s.Reload(ctx)
}

// Reload reads the store again, replacing the cached value.
func (s *SettingsService) Reload(ctx context.Context) (domain.Settings, error) {
	stored, err := s.repo.Load(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	cur := stored.Merge(domain.DefaultSettings())

	s.mu.Lock()
	s.cached = &cur
	s.mu.Unlock()

	return cur, nil
}

// Save persists settings. It returns domain.ErrChannelIconRequiresKey, and
// leaves the stored state unchanged, when channel icons are on without a key.
func (s *SettingsService) Save(ctx context.Context, settings domain.Settings) error {
	if err := settings.Validate(); err != nil {
		s.logger.Info("settings save rejected", "reason", err)
		return err
	}

	if err := s.repo.Save(ctx, settings); err != nil {
		return err
	}

	s.mu.Lock()
	s.cached = &settings
	s.mu.Unlock()

	s.logger.Info("settings saved",
		"show_thumbnail", settings.ShowThumbnail,
		"show_channel_icon", settings.ShowChannelIcon,
		"has_api_key", settings.HasAPIKey(),
	)
	return nil
}

// Apply merges upd into the current settings and saves the result.
func (s *SettingsService) Apply(ctx context.Context, upd SettingsUpdate) (domain.Settings, error) {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	cur, err := s.Load(ctx)
	if err != nil {
		return domain.Settings{}, err
	}

	if upd.ShowThumbnail != nil {
		cur.ShowThumbnail = *upd.ShowThumbnail
	}
	if upd.ShowChannelIcon != nil {
		cur.ShowChannelIcon = *upd.ShowChannelIcon
	}
	if upd.APIKey != nil {
		cur.APIKey = *upd.APIKey
	}

	if err := s.Save(ctx, cur); err != nil {
		return domain.Settings{}, err
	}
	return cur, nil
}

// Ping checks the settings store.
func (s *SettingsService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
