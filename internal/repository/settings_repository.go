package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/iconidentify/vidcard/internal/domain"
	"github.com/iconidentify/vidcard/pkg/crypto"
)

const settingsSchema = `
CREATE TABLE IF NOT EXISTS settings (
	id                INTEGER PRIMARY KEY CHECK (id = 1),
	show_thumbnail    INTEGER,
	show_channel_icon INTEGER,
	api_key           TEXT,
	updated_at        TEXT
)`

// SQLiteSettingsRepository stores settings in a single-row SQLite table.
// The API key is sealed when a sealer is configured.
type SQLiteSettingsRepository struct {
	db     *sql.DB
	sealer *crypto.Sealer
}

// NewSQLiteSettingsRepository opens (creating if needed) the database at path.
// A nil sealer stores the API key as plain text.
func NewSQLiteSettingsRepository(ctx context.Context, path string, sealer *crypto.Sealer) (*SQLiteSettingsRepository, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and writes serialized.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, settingsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteSettingsRepository{db: db, sealer: sealer}, nil
}

// Load returns the stored row. A missing row or NULL column yields nil fields.
func (r *SQLiteSettingsRepository) Load(ctx context.Context) (*StoredSettings, error) {
	var (
		thumb, icon sql.NullBool
		key         sql.NullString
		updated     sql.NullString
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT show_thumbnail, show_channel_icon, api_key, updated_at FROM settings WHERE id = 1`,
	).Scan(&thumb, &icon, &key, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return &StoredSettings{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query settings: %v", domain.ErrSettingsStore, err)
	}

	stored := &StoredSettings{}
	if thumb.Valid {
		stored.ShowThumbnail = &thumb.Bool
	}
	if icon.Valid {
		stored.ShowChannelIcon = &icon.Bool
	}
	if key.Valid {
		plain, err := r.openKey(key.String)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrSettingsStore, err)
		}
		stored.APIKey = &plain
	}
	if updated.Valid {
		stored.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated.String)
	}

	return stored, nil
}

// Save writes all settings columns.
func (r *SQLiteSettingsRepository) Save(ctx context.Context, s domain.Settings) error {
	key, err := r.sealKey(s.APIKey)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSettingsStore, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO settings (id, show_thumbnail, show_channel_icon, api_key, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			show_thumbnail = excluded.show_thumbnail,
			show_channel_icon = excluded.show_channel_icon,
			api_key = excluded.api_key,
			updated_at = excluded.updated_at`,
		s.ShowThumbnail, s.ShowChannelIcon, key, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("%w: write settings: %v", domain.ErrSettingsStore, err)
	}

	return nil
}

// Ping checks the database connection.
func (r *SQLiteSettingsRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database.
func (r *SQLiteSettingsRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteSettingsRepository) sealKey(key string) (string, error) {
	if r.sealer == nil || key == "" {
		return key, nil
	}
	return r.sealer.Seal(key)
}

func (r *SQLiteSettingsRepository) openKey(stored string) (string, error) {
	if !crypto.IsSealed(stored) {
		return stored, nil
	}
	if r.sealer == nil {
		return "", errors.New("api key is sealed but no storage secret is configured")
	}
	return r.sealer.Open(stored)
}
