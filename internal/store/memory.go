package store

import (
	"context"
	"sync"
)

// MemoryStore keeps records in process. Used when no Redis is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	games map[string]GameRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{games: make(map[string]GameRecord)}
}

func (m *MemoryStore) Save(ctx context.Context, rec *GameRecord) error {
	if rec == nil {
		return nil
	}
	copy := *rec
	copy.Moves = append([]string(nil), rec.Moves...)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[rec.ID] = copy
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, gameID string) (*GameRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.games[gameID]
	if !ok {
		return nil, nil
	}
	rec.Moves = append([]string(nil), rec.Moves...)
	return &rec, nil
}

func (m *MemoryStore) Delete(ctx context.Context, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, gameID)
	return nil
}
