package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xtding233/idle-venues/internal/state"
)

type memEntry struct {
	level   int
	payload []byte
	updated time.Time
}

// MemoryStore keeps encoded snapshots in a map. Used when no database path is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	saves map[string]memEntry
	now   func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemory() *MemoryStore {
	return &MemoryStore{saves: make(map[string]memEntry), now: time.Now}
}

func (m *MemoryStore) Save(ctx context.Context, id string, gs *state.GameState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkID(id); err != nil {
		return err
	}
	payload, err := Encode(gs)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves[id] = memEntry{level: gs.Level, payload: payload, updated: m.now().UTC()}
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, id string) (*state.GameState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkID(id); err != nil {
		return nil, err
	}
	m.mu.RLock()
	e, ok := m.saves[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return Decode(e.payload)
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkID(id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.saves[id]; !ok {
		return ErrNotFound
	}
	delete(m.saves, id)
	return nil
}

func (m *MemoryStore) List(ctx context.Context) ([]SaveInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := make([]SaveInfo, 0, len(m.saves))
	for id, e := range m.saves {
		out = append(out, SaveInfo{ID: id, Level: e.level, UpdatedAt: e.updated})
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
