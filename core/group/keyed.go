package group

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/codewandler/troupe-go/core/actor"
	"github.com/codewandler/troupe-go/core/cache"
	"github.com/codewandler/troupe-go/core/sf"
	"github.com/codewandler/troupe-go/core/system"
)

// ErrClosed is returned by Get after Close.
var ErrClosed = errors.New("group closed")

// KeyedOptions configures a [Keyed] group.
type KeyedOptions[A any] struct {
	// System spawns and registers the per-key actors. Required.
	System *system.System
	// New builds the actor value and bindings for a key. Required.
	New func(key string) (A, []actor.Binding[A], error)
	// Actor is the options template for every spawned actor. Its ID is
	// overwritten with the group's per-key ID.
	Actor actor.Options
	// Prefix namespaces the actor IDs as "<prefix>/<key>". Defaults to
	// "keyed". Must be unique per system.
	Prefix string
	// MaxResident bounds how many actors stay alive at once; the least
	// recently used one is passivated (gracefully stopped) when the bound
	// is exceeded. 0 means unbounded.
	MaxResident int
}

// Keyed spawns one actor per key, on demand. See the package
// documentation.
type Keyed[A any] struct {
	sys      *system.System
	newActor func(key string) (A, []actor.Binding[A], error)
	base     actor.Options
	prefix   string

	flight *sf.Singleflight[actor.Addr[A]]
	lru    *cache.LRU

	mu     sync.RWMutex
	addrs  map[string]*actor.Addr[A]
	closed bool
}

// NewKeyed creates an empty keyed group.
func NewKeyed[A any](opts KeyedOptions[A]) (*Keyed[A], error) {
	if opts.System == nil {
		return nil, errors.New("group: KeyedOptions.System is required")
	}
	if opts.New == nil {
		return nil, errors.New("group: KeyedOptions.New is required")
	}
	if opts.Prefix == "" {
		opts.Prefix = "keyed"
	}

	k := &Keyed[A]{
		sys:      opts.System,
		newActor: opts.New,
		base:     opts.Actor,
		prefix:   opts.Prefix,
		flight:   sf.New[actor.Addr[A]](),
		addrs:    map[string]*actor.Addr[A]{},
	}
	if opts.MaxResident > 0 {
		k.lru = cache.NewLRU(cache.LRUOpts{
			Size: opts.MaxResident,
			OnEvict: func(key string, val any) {
				val.(actor.Ref).Stop()
			},
		})
	}

	return k, nil
}

// Get returns the actor for key, spawning it first if it is not resident.
// Concurrent calls for the same key spawn exactly once. A passivated or
// self-stopped key is respawned fresh on its next Get.
//
// The returned address can still stop at any time (passivation, self-stop);
// callers that hold addresses across calls retry on [actor.ErrStopped].
func (k *Keyed[A]) Get(ctx context.Context, key string) (*actor.Addr[A], error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		k.mu.RLock()
		closed := k.closed
		addr, ok := k.addrs[key]
		k.mu.RUnlock()

		if closed {
			return nil, ErrClosed
		}

		if ok {
			if addr.State() < actor.Stopping {
				if k.lru != nil {
					k.lru.Get(key) // refresh recency
				}
				return addr, nil
			}
			// an old incarnation is on its way out: wait for it, clear
			// the registration, then spawn fresh
			select {
			case <-addr.Done():
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			k.remove(key, addr)
			continue
		}

		addr, err := k.flight.Do(key, func() (*actor.Addr[A], error) {
			return k.getOrSpawn(key)
		})
		if err != nil {
			return nil, err
		}
		if addr.State() < actor.Stopping {
			return addr, nil
		}
		// stopped while the flight was in progress; retry
	}
}

// Len returns the number of resident actors.
func (k *Keyed[A]) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.addrs)
}

// Keys returns the resident keys, sorted.
func (k *Keyed[A]) Keys() []string {
	k.mu.RLock()
	defer k.mu.RUnlock()

	out := make([]string, 0, len(k.addrs))
	for key := range k.addrs {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// Close stops all resident actors and waits until they terminated or ctx
// expires. Get fails with ErrClosed afterwards. Close is idempotent.
func (k *Keyed[A]) Close(ctx context.Context) error {
	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		return nil
	}
	k.closed = true
	addrs := make([]*actor.Addr[A], 0, len(k.addrs))
	for _, addr := range k.addrs {
		addrs = append(addrs, addr)
	}
	k.mu.Unlock()

	// stop the cache first so capacity evictions cannot race the shutdown
	if k.lru != nil {
		k.lru.Close()
	}

	g, waitCtx := errgroup.WithContext(ctx)
	for _, addr := range addrs {
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

// getOrSpawn runs inside the single-flight. A fresh registration that
// appeared since the caller's miss is returned as is; staleness is
// detected by the Get loop.
func (k *Keyed[A]) getOrSpawn(key string) (*actor.Addr[A], error) {
	k.mu.RLock()
	addr, ok := k.addrs[key]
	closed := k.closed
	k.mu.RUnlock()

	if closed {
		return nil, ErrClosed
	}
	if ok {
		return addr, nil
	}
	return k.spawn(key)
}

func (k *Keyed[A]) spawn(key string) (*actor.Addr[A], error) {
	a, bindings, err := k.newActor(key)
	if err != nil {
		return nil, fmt.Errorf("build actor for key %q: %w", key, err)
	}

	opts := k.base
	opts.ID = k.id(key)

	addr, err := system.Spawn(k.sys, opts, a, bindings...)
	if err != nil {
		return nil, err
	}

	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		addr.Stop()
		return nil, ErrClosed
	}
	k.addrs[key] = addr
	k.mu.Unlock()

	if k.lru != nil {
		k.lru.Put(key, actor.Ref(addr))
	}

	go func() {
		<-addr.Done()
		k.remove(key, addr)
	}()

	return addr, nil
}

// remove clears key if it still maps to addr.
func (k *Keyed[A]) remove(key string, addr *actor.Addr[A]) {
	k.mu.Lock()
	cur, ok := k.addrs[key]
	if ok && cur == addr {
		delete(k.addrs, key)
	}
	k.mu.Unlock()

	if !ok || cur != addr {
		return
	}
	k.flight.Forget(key)
	if k.lru != nil {
		k.lru.Delete(key)
	}
}

func (k *Keyed[A]) id(key string) string {
	return k.prefix + "/" + key
}
