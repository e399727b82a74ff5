package snapshot

import (
	"context"
	"sort"
	"sync"

	"chat-insights-go/internal/types"
)

// MemoryStore is an in-memory Store for tests and demo runs. The single
// mutex serializes writes per key (and across keys, which is stricter than
// required but harmless at this scale).
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]*types.Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]*types.Snapshot)}
}

func (s *MemoryStore) Put(ctx context.Context, snap *types.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *snap
	s.snapshots[keyFor(snap.Date)] = &cp
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, date string) (*types.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[keyFor(date)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *snap
	return &cp, nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]*types.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.Snapshot, 0, len(s.snapshots))
	for key, snap := range s.snapshots {
		if key == allTimeKey {
			continue
		}
		cp := *snap
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
