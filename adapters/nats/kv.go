package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/codewandler/troupe-go/ports/snapshot"
)

// SnapshotStoreConfig configures a [SnapshotStore].
type SnapshotStoreConfig struct {
	// Connect creates the underlying connection; ConnectDefault when nil.
	Connect Connector
	// Bucket names the KV bucket. Required.
	Bucket string
	// TTL expires snapshots bucket-wide. JetStream KV has no per-key
	// expiry, so SaveOptions.TTL is ignored; set the bound here instead.
	TTL time.Duration
	// MaxBytes bounds the bucket size; unlimited when 0.
	MaxBytes int64
}

// SnapshotStore persists actor snapshots in a JetStream key-value bucket,
// keyed by actor ID. It survives process restarts and is shared by every
// process pointed at the same bucket.
type SnapshotStore struct {
	kv      jetstream.KeyValue
	closeNc closeFunc
}

// kvSnapshot is the stored value; the actor ID lives in the key.
type kvSnapshot struct {
	Data    json.RawMessage `json:"data"`
	TakenAt time.Time       `json:"taken_at"`
}

// NewSnapshotStore connects and creates (or updates) the bucket.
func NewSnapshotStore(cfg SnapshotStoreConfig) (*SnapshotStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket is required")
	}

	doConnect := cfg.Connect
	if doConnect == nil {
		doConnect = ConnectDefault()
	}
	nc, closeNc, err := doConnect()
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		closeNc()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:   cfg.Bucket,
		Storage:  jetstream.FileStorage,
		TTL:      cfg.TTL,
		MaxBytes: cfg.MaxBytes,
	})
	if err != nil {
		closeNc()
		return nil, err
	}

	return &SnapshotStore{kv: kv, closeNc: closeNc}, nil
}

func (s *SnapshotStore) Save(ctx context.Context, snap snapshot.Snapshot, _ snapshot.SaveOptions) error {
	data, err := json.Marshal(kvSnapshot{Data: snap.Data, TakenAt: snap.TakenAt})
	if err != nil {
		return err
	}
	if _, err := s.kv.Put(ctx, snap.ActorID, data); err != nil {
		return fmt.Errorf("failed to save snapshot for %s: %w", snap.ActorID, err)
	}
	return nil
}

func (s *SnapshotStore) Load(ctx context.Context, actorID string) (snapshot.Snapshot, error) {
	v, err := s.kv.Get(ctx, actorID)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return snapshot.Snapshot{}, snapshot.ErrNotFound
		}
		return snapshot.Snapshot{}, fmt.Errorf("failed to load snapshot for %s: %w", actorID, err)
	}

	var stored kvSnapshot
	if err := json.Unmarshal(v.Value(), &stored); err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("corrupt snapshot for %s: %w", actorID, err)
	}
	return snapshot.Snapshot{ActorID: actorID, Data: stored.Data, TakenAt: stored.TakenAt}, nil
}

func (s *SnapshotStore) Delete(ctx context.Context, actorID string) error {
	if err := s.kv.Delete(ctx, actorID); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return err
	}
	return nil
}

// Close releases the underlying connection.
func (s *SnapshotStore) Close() { s.closeNc() }

var _ snapshot.Store = (*SnapshotStore)(nil)
