package durable

import (
	"context"
	"sync"
	"time"

	"videostudio/models"
)

// MemoryStore is the session-only fallback used when SQLite cannot be opened.
// Contents vanish with the process, which downgrades autosave to in-session
// protection only.
type MemoryStore struct {
	mu       sync.RWMutex
	autosave map[string]models.AutosaveRecord
	media    map[string]models.MediaItem
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		autosave: make(map[string]models.AutosaveRecord),
		media:    make(map[string]models.MediaItem),
	}
}

// SaveAutosave implements Store.
func (m *MemoryStore) SaveAutosave(ctx context.Context, projectID string, stateBlob []byte, timestamp time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob := make([]byte, len(stateBlob))
	copy(blob, stateBlob)
	m.autosave[projectID] = models.AutosaveRecord{ProjectID: projectID, StateBlob: blob, Timestamp: timestamp}
	return nil
}

// GetAutosave implements Store.
func (m *MemoryStore) GetAutosave(ctx context.Context, projectID string) (*models.AutosaveRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.autosave[projectID]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// DeleteAutosave implements Store.
func (m *MemoryStore) DeleteAutosave(ctx context.Context, projectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.autosave, projectID)
	return nil
}

// PutMediaItem implements Store.
func (m *MemoryStore) PutMediaItem(ctx context.Context, item models.MediaItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.media[item.ID] = item
	return nil
}

// GetMediaItem implements Store.
func (m *MemoryStore) GetMediaItem(ctx context.Context, id string) (*models.MediaItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.media[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

// ListMediaItems implements Store.
func (m *MemoryStore) ListMediaItems(ctx context.Context, userID string) ([]models.MediaItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var items []models.MediaItem
	for _, item := range m.media {
		if item.UserID == userID {
			items = append(items, item)
		}
	}
	return items, nil
}

// DeleteMediaItem implements Store.
func (m *MemoryStore) DeleteMediaItem(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.media, id)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	return nil
}
