// Package cache provides a simple key-value cache interface with LRU
// eviction and TTL support.
//
// The runtime uses it to bound keyed actor groups: core/group installs an
// [LRU] whose eviction callback passivates (stops) the least recently used
// actor. It is equally usable as a plain cache.
//
// # Implementations
//
//   - [LRU]: in-memory LRU, safe for concurrent use. All operations are
//     serialized through a background goroutine, so no external locking is
//     needed. Capacity evictions and lazy TTL expirations invoke the
//     optional OnEvict callback; explicit Delete does not.
//   - [Nop]: discards everything, for wiring tests.
//
// # Type-Safe Usage
//
// Use [NewTyped] for a compile-time typed view:
//
//	addrs := cache.NewTyped[*actor.Addr[*Counter]](lru)
//	addrs.Put("counter:42", addr)
//	if addr, ok := addrs.Get("counter:42"); ok {
//	    // addr needs no type assertion
//	}
//
// # TTL
//
// Use [WithTTL] for per-entry expiry; expired entries are evicted lazily on
// access:
//
//	lru.Put("session", data, cache.WithTTL(30*time.Minute))
package cache
