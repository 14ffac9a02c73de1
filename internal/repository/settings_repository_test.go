package repository

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iconidentify/vidcard/internal/domain"
	"github.com/iconidentify/vidcard/pkg/crypto"
)

func newTestSettingsRepo(t *testing.T, sealer *crypto.Sealer) (*SQLiteSettingsRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "vidcard.db")
	repo, err := NewSQLiteSettingsRepository(context.Background(), path, sealer)
	if err != nil {
		t.Fatalf("NewSQLiteSettingsRepository failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo, path
}

func TestSQLiteSettingsRepository_EmptyLoad(t *testing.T) {
	repo, _ := newTestSettingsRepo(t, nil)

	stored, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if stored.ShowThumbnail != nil || stored.ShowChannelIcon != nil || stored.APIKey != nil {
		t.Errorf("expected all nil fields, got %+v", stored)
	}
	if got := stored.Merge(domain.DefaultSettings()); got != domain.DefaultSettings() {
		t.Errorf("merged = %+v, want defaults", got)
	}
}

func TestSQLiteSettingsRepository_SaveLoad(t *testing.T) {
	repo, _ := newTestSettingsRepo(t, nil)
	ctx := context.Background()

	want := domain.Settings{ShowThumbnail: false, ShowChannelIcon: true, APIKey: "AIza-key"}
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	stored, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := stored.Merge(domain.DefaultSettings()); got != want {
		t.Errorf("loaded = %+v, want %+v", got, want)
	}
	if stored.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set")
	}

	// Overwrite keeps a single row.
	want = domain.Settings{ShowThumbnail: true}
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	stored, _ = repo.Load(ctx)
	if got := stored.Merge(domain.DefaultSettings()); got != want {
		t.Errorf("loaded = %+v, want %+v", got, want)
	}

	var rows int
	repo.db.QueryRow(`SELECT COUNT(*) FROM settings`).Scan(&rows)
	if rows != 1 {
		t.Errorf("settings rows = %d, want 1", rows)
	}
}

func TestSQLiteSettingsRepository_NullColumnsFallBack(t *testing.T) {
	repo, _ := newTestSettingsRepo(t, nil)
	ctx := context.Background()

	if _, err := repo.db.Exec(`INSERT INTO settings (id, show_thumbnail) VALUES (1, 0)`); err != nil {
		t.Fatalf("seed row: %v", err)
	}

	stored, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got := stored.Merge(domain.DefaultSettings())
	want := domain.Settings{ShowThumbnail: false, ShowChannelIcon: true}
	if got != want {
		t.Errorf("merged = %+v, want %+v", got, want)
	}
}

func TestSQLiteSettingsRepository_Persists(t *testing.T) {
	repo, path := newTestSettingsRepo(t, nil)
	ctx := context.Background()

	repo.Save(ctx, domain.Settings{ShowChannelIcon: false, APIKey: "kept"})
	repo.Close()

	reopened, err := NewSQLiteSettingsRepository(ctx, path, nil)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	stored, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if stored.APIKey == nil || *stored.APIKey != "kept" {
		t.Errorf("APIKey = %v, want kept", stored.APIKey)
	}
}

func TestSQLiteSettingsRepository_SealedKey(t *testing.T) {
	sealer, _ := crypto.NewSealer("storage-secret")
	repo, path := newTestSettingsRepo(t, sealer)
	ctx := context.Background()

	if err := repo.Save(ctx, domain.Settings{ShowChannelIcon: true, APIKey: "AIza-secret"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	var raw string
	repo.db.QueryRow(`SELECT api_key FROM settings WHERE id = 1`).Scan(&raw)
	if !strings.HasPrefix(raw, crypto.Prefix) || strings.Contains(raw, "AIza-secret") {
		t.Errorf("stored key should be sealed, got %q", raw)
	}

	stored, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *stored.APIKey != "AIza-secret" {
		t.Errorf("APIKey = %q, want AIza-secret", *stored.APIKey)
	}
	repo.Close()

	// Without the secret the sealed key cannot be read.
	plain, err := NewSQLiteSettingsRepository(ctx, path, nil)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer plain.Close()
	if _, err := plain.Load(ctx); !errors.Is(err, domain.ErrSettingsStore) {
		t.Errorf("Load without secret error = %v, want ErrSettingsStore", err)
	}
}

func TestSQLiteSettingsRepository_EmptyKeyNotSealed(t *testing.T) {
	sealer, _ := crypto.NewSealer("storage-secret")
	repo, _ := newTestSettingsRepo(t, sealer)
	ctx := context.Background()

	repo.Save(ctx, domain.Settings{ShowThumbnail: true})

	var raw string
	repo.db.QueryRow(`SELECT api_key FROM settings WHERE id = 1`).Scan(&raw)
	if raw != "" {
		t.Errorf("empty key stored as %q", raw)
	}
}

func TestSQLiteSettingsRepository_Ping(t *testing.T) {
	repo, _ := newTestSettingsRepo(t, nil)
	if err := repo.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
