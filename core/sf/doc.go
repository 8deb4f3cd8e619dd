// Package sf provides a generic single-flight mechanism for deduplicating
// concurrent function calls with the same key.
//
// Single-flight ensures that only one execution of a function is in-flight
// for a given key at a time. If multiple goroutines call [Singleflight.Do]
// with the same key concurrently, only the first call executes the function;
// subsequent callers block until the first call completes and then receive
// the same result.
//
// The runtime uses this to guarantee that concurrent lookups of the same
// keyed actor spawn it exactly once (see core/group). It is equally useful
// for cache-miss and backend-call deduplication.
//
// # Usage
//
//	flight := sf.New[Conn]()
//
//	// Concurrent calls with the same key execute dial exactly once.
//	conn, err := flight.Do("backend-1", func() (*Conn, error) {
//	    return dial(ctx, "backend-1")
//	})
//
// The generic type parameter T allows type-safe returns without casting.
package sf
