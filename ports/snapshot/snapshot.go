// Package snapshot defines the port for persisting actor state between
// runs. Actors snapshot their state in lifecycle hooks and restore it on
// the next start; mailbox contents are never persisted.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("snapshot not found")
)

// Snapshot is one persisted actor state.
type Snapshot struct {
	// ActorID names the actor the state belongs to; it is also the
	// store key.
	ActorID string
	// Data is the encoded state.
	Data []byte
	// TakenAt is when the snapshot was written.
	TakenAt time.Time
}

type SaveOptions struct {
	// TTL expires the snapshot; zero keeps it until deleted. Stores
	// without expiry support ignore it.
	TTL time.Duration
}

type Store interface {
	Save(ctx context.Context, snap Snapshot, opts SaveOptions) error
	Load(ctx context.Context, actorID string) (Snapshot, error)
	Delete(ctx context.Context, actorID string) error
}

// Save encodes v as JSON and stores it under actorID.
func Save[T any](ctx context.Context, store Store, actorID string, v T, opts SaveOptions) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return store.Save(ctx, Snapshot{
		ActorID: actorID,
		Data:    data,
		TakenAt: time.Now(),
	}, opts)
}

// Load fetches actorID's snapshot and decodes it into T.
func Load[T any](ctx context.Context, store Store, actorID string) (out T, err error) {
	snap, err := store.Load(ctx, actorID)
	if err != nil {
		return
	}
	err = json.Unmarshal(snap.Data, &out)
	if err != nil {
		return
	}
	return
}
