// Package snapshot persists evaluation runs keyed by date. The engine only
// ever needs get/put/list; anything richer belongs to the caller.
package snapshot

import (
	"context"
	"errors"

	"chat-insights-go/internal/types"
)

// ErrNotFound is returned by Get when no snapshot exists for the key.
var ErrNotFound = errors.New("snapshot not found")

// allTimeKey stores the undated historical aggregate separately from the
// dated runs.
const allTimeKey = "all-time"

// Store is the persistence boundary of the engine. Put is an idempotent
// upsert: a second write for the same date replaces the first, and writes
// for a given key are serialized by the implementation (last writer wins).
type Store interface {
	// Put stores snap under its date key ("" means all-time).
	Put(ctx context.Context, snap *types.Snapshot) error
	// Get retrieves the snapshot for a date, or the all-time snapshot for "".
	Get(ctx context.Context, date string) (*types.Snapshot, error)
	// List returns dated snapshots most-recent-first, at most limit
	// (limit <= 0 means all). The all-time snapshot is not listed.
	List(ctx context.Context, limit int) ([]*types.Snapshot, error)
}

func keyFor(date string) string {
	if date == "" {
		return allTimeKey
	}
	return date
}
