package group

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/codewandler/troupe-go/core/actor"
	"github.com/codewandler/troupe-go/core/system"
	"github.com/codewandler/troupe-go/internal/hrw"
)

// PoolOptions configures a [Pool].
type PoolOptions[A any] struct {
	// System spawns and registers the members. Required.
	System *system.System
	// New builds a member's actor value and bindings. Required.
	New func(member string) (A, []actor.Binding[A], error)
	// Actor is the options template for every member. Its ID is
	// overwritten with the member ID.
	Actor actor.Options
	// Size is the member count; 8 when unset.
	Size int
	// Prefix namespaces the member IDs as "<prefix>/<n>". Defaults to
	// "pool". Must be unique per system.
	Prefix string
	// Seed namespaces the routing so two pools spread the same keys
	// differently.
	Seed string
}

// Pool is a fixed set of actors with stable key routing: the same key
// always routes to the same member. Members are expected to live for the
// pool's lifetime; they are spawned by NewPool and stopped by Close.
type Pool[A any] struct {
	members []string
	byID    map[string]*actor.Addr[A]
	seed    string

	mu     sync.Mutex
	closed bool
}

// NewPool spawns all members eagerly. On any spawn failure the members
// already started are stopped again and the error is returned.
func NewPool[A any](opts PoolOptions[A]) (*Pool[A], error) {
	if opts.System == nil {
		return nil, errors.New("group: PoolOptions.System is required")
	}
	if opts.New == nil {
		return nil, errors.New("group: PoolOptions.New is required")
	}
	if opts.Size <= 0 {
		opts.Size = 8
	}
	if opts.Prefix == "" {
		opts.Prefix = "pool"
	}
	if opts.Seed == "" {
		opts.Seed = "default"
	}

	p := &Pool[A]{
		members: make([]string, 0, opts.Size),
		byID:    make(map[string]*actor.Addr[A], opts.Size),
		seed:    opts.Seed,
	}

	for i := range opts.Size {
		member := fmt.Sprintf("%s/%d", opts.Prefix, i)
		addr, err := spawnMember(opts, member)
		if err != nil {
			for _, started := range p.byID {
				started.Stop()
			}
			return nil, fmt.Errorf("spawn pool member %s: %w", member, err)
		}
		p.members = append(p.members, member)
		p.byID[member] = addr
	}

	return p, nil
}

func spawnMember[A any](opts PoolOptions[A], member string) (*actor.Addr[A], error) {
	a, bindings, err := opts.New(member)
	if err != nil {
		return nil, err
	}
	aopts := opts.Actor
	aopts.ID = member
	return system.Spawn(opts.System, aopts, a, bindings...)
}

// Route returns the member that owns key. The mapping is stable for the
// life of the pool. After Close the returned address is stopped and sends
// to it fail with [actor.ErrStopped].
func (p *Pool[A]) Route(key string) *actor.Addr[A] {
	member, _ := hrw.Best(key, p.members, p.seed)
	return p.byID[member]
}

// Members returns the member IDs in spawn order.
func (p *Pool[A]) Members() []string {
	return append([]string(nil), p.members...)
}

// Addrs returns the member addresses in spawn order.
func (p *Pool[A]) Addrs() []*actor.Addr[A] {
	out := make([]*actor.Addr[A], len(p.members))
	for i, m := range p.members {
		out[i] = p.byID[m]
	}
	return out
}

// Size returns the member count.
func (p *Pool[A]) Size() int { return len(p.members) }

// Close stops all members and waits until they terminated or ctx expires.
// Close is idempotent.
func (p *Pool[A]) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	g, waitCtx := errgroup.WithContext(ctx)
	for _, member := range p.members {
		addr := p.byID[member]
		addr.Stop()
		g.Go(func() error {
			select {
			case <-addr.Done():
				return nil
			case <-waitCtx.Done():
				return fmt.Errorf("close %s: %w", addr.ID(), waitCtx.Err())
			}
		})
	}
	return g.Wait()
}
