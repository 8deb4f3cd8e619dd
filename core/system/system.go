package system

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/codewandler/troupe-go/core/actor"
	"github.com/codewandler/troupe-go/core/ds"
	"github.com/codewandler/troupe-go/core/events"
)

var (
	// ErrDuplicateID is returned by Spawn when the ID is already taken.
	ErrDuplicateID = errors.New("actor id already registered")
	// ErrSystemStopped is returned by Spawn after Stop.
	ErrSystemStopped = errors.New("system stopped")
)

// Options configures a System. The zero value is usable.
type Options struct {
	// ID names the system in logs. Defaults to "system-<nanoid>".
	ID string
	// Context is the parent of every spawned actor; cancelling it requests
	// a graceful stop of them all.
	Context context.Context
	Log     *slog.Logger
	// Events is the stream spawned actors publish lifecycle events to.
	// When nil the system creates its own and closes it on Stop.
	Events *events.Stream
	// Metrics is handed to every spawned actor whose own options carry
	// none.
	Metrics actor.ActorMetrics
}

// System tracks running actors by ID. See the package documentation.
type System struct {
	id  string
	log *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	events     *events.Stream
	ownsEvents bool
	metrics    actor.ActorMetrics

	mu     sync.RWMutex
	actors map[string]actor.Ref
	order  *ds.StringSet
	closed bool
}

// New creates an empty system.
func New(opts Options) *System {
	if opts.ID == "" {
		opts.ID = fmt.Sprintf("system-%s", gonanoid.Must(6))
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}

	log := opts.Log.With(slog.String("system", opts.ID))

	s := &System{
		id:      opts.ID,
		log:     log,
		events:  opts.Events,
		metrics: opts.Metrics,
		actors:  map[string]actor.Ref{},
		order:   ds.NewStringSet(),
	}
	if s.events == nil {
		s.events = events.NewStream(events.StreamOpts{Log: log})
		s.ownsEvents = true
	}
	s.ctx, s.cancel = context.WithCancel(opts.Context)

	return s
}

// ID returns the system ID.
func (s *System) ID() string { return s.id }

// Events returns the stream spawned actors publish to.
func (s *System) Events() *events.Stream { return s.events }

// Log returns the system logger.
func (s *System) Log() *slog.Logger { return s.log }

// Lookup returns the actor registered under id.
func (s *System) Lookup(id string) (actor.Ref, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ref, ok := s.actors[id]
	return ref, ok
}

// Refs returns all registered actors in spawn order.
func (s *System) Refs() []actor.Ref {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]actor.Ref, 0, s.order.Len())
	s.order.ForEach(func(id string) {
		out = append(out, s.actors[id])
	})
	return out
}

// Len returns the number of registered actors.
func (s *System) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.actors)
}

// Stop requests a graceful stop of every registered actor, newest first,
// and waits until all of them terminated or ctx expires. It then closes
// the event stream if the system owns it. Stop is idempotent; the first
// call wins and later calls return nil immediately.
func (s *System) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	refs := make([]actor.Ref, 0, s.order.Len())
	s.order.ForEach(func(id string) {
		refs = append(refs, s.actors[id])
	})
	s.mu.Unlock()

	s.log.Info("stopping", slog.Int("actors", len(refs)))

	g, waitCtx := errgroup.WithContext(ctx)
	for i := len(refs) - 1; i >= 0; i-- {
		ref := refs[i]
		ref.Stop()
		g.Go(func() error {
			select {
			case <-ref.Done():
				return nil
			case <-waitCtx.Done():
				return fmt.Errorf("stop %s: %w", ref.ID(), waitCtx.Err())
			}
		})
	}
	err := g.Wait()

	// backstop for actors spawned outside the registry with s.ctx
	s.cancel()

	if s.ownsEvents {
		s.events.Close()
	}

	if err != nil {
		return err
	}

	// all watchers have a closed Done by now; clear eagerly instead of
	// waiting for them
	s.mu.Lock()
	s.actors = map[string]actor.Ref{}
	s.order = ds.NewStringSet()
	s.mu.Unlock()

	s.log.Info("stopped")
	return nil
}

// Spawn starts an actor and registers it under its ID. Unset actor options
// default to the system's context, logger, event stream and metrics; an
// empty ID gets a generated one. The registration is removed automatically
// once the actor terminated.
func Spawn[A any](s *System, opts actor.Options, a A, bindings ...actor.Binding[A]) (*actor.Addr[A], error) {
	if opts.ID == "" {
		opts.ID = fmt.Sprintf("actor-%s", gonanoid.Must(6))
	}
	if opts.Context == nil {
		opts.Context = s.ctx
	}
	if opts.Logger == nil {
		opts.Logger = s.log
	}
	if opts.Events == nil {
		opts.Events = s.events
	}
	if opts.Metrics == nil {
		opts.Metrics = s.metrics
	}

	// The lock is held across Start so a duplicate ID can never slip in
	// between the check and the registration. Start does not block; it
	// only validates bindings and spawns the run goroutine.
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSystemStopped
	}
	if cur, dup := s.actors[opts.ID]; dup {
		select {
		case <-cur.Done():
			// terminated, watcher just has not cleaned up yet: reap
			// inline so the ID is immediately reusable
			delete(s.actors, opts.ID)
			s.order.Remove(opts.ID)
		default:
			s.mu.Unlock()
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, opts.ID)
		}
	}
	addr, err := actor.Start(opts, a, bindings...)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.actors[opts.ID] = addr
	s.order.Add(opts.ID)
	s.mu.Unlock()

	go func() {
		<-addr.Done()
		s.deregister(opts.ID, addr)
	}()

	return addr, nil
}

// deregister removes id if it still maps to ref. The identity check keeps
// a slow watcher goroutine from removing a successor that reused the ID.
func (s *System) deregister(id string, ref actor.Ref) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.actors[id]; ok && cur == ref {
		delete(s.actors, id)
		s.order.Remove(id)
	}
}
