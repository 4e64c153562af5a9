package durable

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"videostudio/models"
)

const dbFileName = "studio.db"

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS autosave (
        project_id TEXT PRIMARY KEY,
        state_blob BLOB NOT NULL,
        timestamp  TEXT NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS user_media (
        id            TEXT PRIMARY KEY,
        user_id       TEXT NOT NULL,
        name          TEXT NOT NULL,
        kind          TEXT NOT NULL,
        remote_path   TEXT NOT NULL,
        size          INTEGER NOT NULL,
        last_modified TEXT NOT NULL,
        thumbnail     TEXT,
        duration      REAL,
        created_at    TEXT NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_user_media_user_id ON user_media(user_id)`,
}

// SQLiteStore implements Store on a single SQLite database file.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the database under dataDir and applies
// migrations.
func Open(dataDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	for _, migration := range migrations {
		if _, execErr := db.Exec(migration); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply migration: %w", execErr)
		}
	}

	return &SQLiteStore{db: db, path: dbPath}, nil
}

// Probe opens the durable store, falling back to the in-memory store when the
// environment cannot provide one. The degradation is logged once; callers use
// the returned store without caring which implementation they got.
func Probe(dataDir string, log *logrus.Logger) Store {
	store, err := Open(dataDir)
	if err != nil {
		log.WithField("error", err.Error()).Warn("Durable storage unavailable; autosave and media index are session-only")
		return NewMemoryStore()
	}
	return store
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveAutosave upserts the single autosave row for the project.
func (s *SQLiteStore) SaveAutosave(ctx context.Context, projectID string, stateBlob []byte, timestamp time.Time) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO autosave (project_id, state_blob, timestamp) VALUES (?, ?, ?)
         ON CONFLICT(project_id) DO UPDATE SET state_blob = excluded.state_blob, timestamp = excluded.timestamp`,
		projectID,
		stateBlob,
		timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save autosave for %s: %w", projectID, err)
	}
	return nil
}

// GetAutosave fetches the project's autosave record, nil when absent.
func (s *SQLiteStore) GetAutosave(ctx context.Context, projectID string) (*models.AutosaveRecord, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT state_blob, timestamp FROM autosave WHERE project_id = ?`,
		projectID,
	)

	var blob []byte
	var raw string
	if err := row.Scan(&blob, &raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get autosave for %s: %w", projectID, err)
	}

	timestamp, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, fmt.Errorf("parse autosave timestamp for %s: %w", projectID, err)
	}
	return &models.AutosaveRecord{ProjectID: projectID, StateBlob: blob, Timestamp: timestamp}, nil
}

// DeleteAutosave removes the project's autosave record, if any.
func (s *SQLiteStore) DeleteAutosave(ctx context.Context, projectID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM autosave WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("delete autosave for %s: %w", projectID, err)
	}
	return nil
}

// PutMediaItem upserts one media index row.
func (s *SQLiteStore) PutMediaItem(ctx context.Context, item models.MediaItem) error {
	var duration any
	if item.Duration != nil {
		duration = *item.Duration
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO user_media (
            id, user_id, name, kind, remote_path, size,
            last_modified, thumbnail, duration, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name, kind = excluded.kind,
            remote_path = excluded.remote_path, size = excluded.size,
            last_modified = excluded.last_modified, thumbnail = excluded.thumbnail,
            duration = excluded.duration`,
		item.ID,
		item.UserID,
		item.Name,
		string(item.Kind),
		item.ServerPath,
		item.Size,
		item.LastModified.UTC().Format(time.RFC3339Nano),
		item.Thumbnail,
		duration,
		item.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("put media item %s: %w", item.ID, err)
	}
	return nil
}

// GetMediaItem fetches one media row by id, nil when absent.
func (s *SQLiteStore) GetMediaItem(ctx context.Context, id string) (*models.MediaItem, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, user_id, name, kind, remote_path, size, last_modified, thumbnail, duration, created_at
         FROM user_media WHERE id = ?`,
		id,
	)
	item, err := scanMediaItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get media item %s: %w", id, err)
	}
	return item, nil
}

// ListMediaItems returns all of a user's media rows, newest first.
func (s *SQLiteStore) ListMediaItems(ctx context.Context, userID string) ([]models.MediaItem, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, user_id, name, kind, remote_path, size, last_modified, thumbnail, duration, created_at
         FROM user_media WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list media for %s: %w", userID, err)
	}
	defer rows.Close()

	var items []models.MediaItem
	for rows.Next() {
		item, scanErr := scanMediaItem(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan media row: %w", scanErr)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate media rows: %w", err)
	}
	return items, nil
}

// DeleteMediaItem removes one media row by id.
func (s *SQLiteStore) DeleteMediaItem(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM user_media WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete media item %s: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMediaItem(row rowScanner) (*models.MediaItem, error) {
	var item models.MediaItem
	var kind, lastModified, createdAt string
	var thumbnail sql.NullString
	var duration sql.NullFloat64

	if err := row.Scan(
		&item.ID, &item.UserID, &item.Name, &kind, &item.ServerPath, &item.Size,
		&lastModified, &thumbnail, &duration, &createdAt,
	); err != nil {
		return nil, err
	}

	item.Kind = models.MediaKind(kind)
	if thumbnail.Valid {
		item.Thumbnail = thumbnail.String
	}
	if duration.Valid {
		d := duration.Float64
		item.Duration = &d
	}

	parsedModified, err := time.Parse(time.RFC3339Nano, lastModified)
	if err != nil {
		return nil, fmt.Errorf("parse last_modified: %w", err)
	}
	item.LastModified = parsedModified

	parsedCreated, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	item.CreatedAt = parsedCreated

	return &item, nil
}
