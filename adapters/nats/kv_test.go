package nats

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/troupe-go/ports/snapshot"
)

func TestSnapshotStore(t *testing.T) {
	type counterState struct {
		Value int `json:"value"`
	}

	connectNats := NewTestContainer(t)
	store, err := NewSnapshotStore(SnapshotStoreConfig{
		Bucket:  "troupe_snapshots",
		Connect: connectNats,
	})
	require.NoError(t, err)
	defer store.Close()

	_, err = snapshot.Load[counterState](t.Context(), store, "counter-1")
	require.ErrorIs(t, err, snapshot.ErrNotFound)

	require.NoError(t, snapshot.Save(t.Context(), store, "counter-1", counterState{Value: 42}, snapshot.SaveOptions{}))

	loaded, err := snapshot.Load[counterState](t.Context(), store, "counter-1")
	require.NoError(t, err)
	require.Equal(t, counterState{Value: 42}, loaded)

	// metadata round-trips through the bucket
	snap, err := store.Load(t.Context(), "counter-1")
	require.NoError(t, err)
	require.Equal(t, "counter-1", snap.ActorID)
	require.False(t, snap.TakenAt.IsZero())

	// keyed-group actor IDs contain slashes; valid as KV keys
	require.NoError(t, snapshot.Save(t.Context(), store, "counter/slash", counterState{Value: 7}, snapshot.SaveOptions{}))
	loaded, err = snapshot.Load[counterState](t.Context(), store, "counter/slash")
	require.NoError(t, err)
	require.Equal(t, counterState{Value: 7}, loaded)

	require.NoError(t, store.Delete(t.Context(), "counter-1"))
	_, err = snapshot.Load[counterState](t.Context(), store, "counter-1")
	require.ErrorIs(t, err, snapshot.ErrNotFound)

	// delete of a missing snapshot is a no-op
	require.NoError(t, store.Delete(t.Context(), "counter-1"))
}

func TestSnapshotStore_requires_bucket(t *testing.T) {
	_, err := NewSnapshotStore(SnapshotStoreConfig{})
	require.ErrorContains(t, err, "bucket is required")
}
