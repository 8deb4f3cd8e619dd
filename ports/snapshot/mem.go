package snapshot

import (
	"context"
	"sync"
	"time"
)

// MemStore keeps snapshots in process memory. Tests and single-process
// examples use it; state does not survive a restart.
type MemStore struct {
	mu   sync.RWMutex
	data map[string]memEntry
}

type memEntry struct {
	snap      Snapshot
	expiresAt time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{data: map[string]memEntry{}}
}

func (m *MemStore) Save(_ context.Context, snap Snapshot, opts SaveOptions) error {
	var expiresAt time.Time
	if opts.TTL > 0 {
		expiresAt = time.Now().Add(opts.TTL)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[snap.ActorID] = memEntry{snap: snap, expiresAt: expiresAt}
	return nil
}

func (m *MemStore) Load(_ context.Context, actorID string) (Snapshot, error) {
	m.mu.RLock()
	e, ok := m.data[actorID]
	m.mu.RUnlock()
	if !ok {
		return Snapshot{}, ErrNotFound
	}

	// expiry is lazy: the entry stays until someone asks for it
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.data, actorID)
		m.mu.Unlock()
		return Snapshot{}, ErrNotFound
	}

	return e.snap, nil
}

func (m *MemStore) Delete(_ context.Context, actorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, actorID)
	return nil
}

var _ Store = (*MemStore)(nil)
