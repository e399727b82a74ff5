package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"chat-insights-go/internal/types"
)

var snapshotBucket = []byte("snapshots")

// BoltStore persists snapshots in a single BoltDB file. Bolt allows one
// writer at a time, which gives the required per-key write serialization
// and last-writer-wins overwrite for free.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the snapshot database at path.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(snapshotBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create snapshot bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Put(ctx context.Context, snap *types.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(snapshotBucket).Put([]byte(keyFor(snap.Date)), data)
	})
}

func (s *BoltStore) Get(ctx context.Context, date string) (*types.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var snap *types.Snapshot
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(snapshotBucket).Get([]byte(keyFor(date)))
		if v == nil {
			return ErrNotFound
		}
		snap = &types.Snapshot{}
		return json.Unmarshal(v, snap)
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *BoltStore) List(ctx context.Context, limit int) ([]*types.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []*types.Snapshot
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(snapshotBucket).ForEach(func(k, v []byte) error {
			if string(k) == allTimeKey {
				return nil
			}
			var snap types.Snapshot
			if err := json.Unmarshal(v, &snap); err != nil {
				// skip malformed entries instead of failing the whole list
				return nil
			}
			out = append(out, &snap)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
