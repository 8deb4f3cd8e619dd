// Package actor provides a minimal in-process actor runtime: isolated
// units of mutable state that communicate only through asynchronously
// delivered, typed messages, each processed one at a time by the actor's
// own goroutine.
//
// Each actor:
//   - Owns one state value of type A, never touched by another goroutine
//   - Processes messages sequentially from a bounded mailbox
//   - Can schedule background tasks via [Context.Schedule]
//   - Can be paused, resumed, and stepped for debugging/testing
//
// # Starting Actors
//
// An actor is a plain value plus message bindings:
//
//	type Counter struct{ n int }
//	type Add struct{ N int }
//	type Get struct{}
//
//	addr, err := actor.Start(actor.Options{}, &Counter{},
//	    actor.On(func(c *Counter, ctx *actor.Context[*Counter], msg Add) error {
//	        c.n += msg.N
//	        return nil
//	    }),
//	    actor.OnRequest(func(c *Counter, ctx *actor.Context[*Counter], msg Get) (int, error) {
//	        return c.n, nil
//	    }),
//	)
//
// [Start] returns the address immediately; messages sent before startup
// completes queue in the mailbox.
//
// # Message Bindings
//
// Messages are dispatched by their exact Go type to bindings registered
// at [Start]:
//
//   - [On] binds a one-way handler (fire-and-forget)
//   - [OnRequest] binds a request-response handler
//   - [Every] binds a periodic task, delivered through the mailbox and
//     therefore serialized with the other handlers
//
// Binding the same message type twice fails Start with
// [ErrDuplicateHandler]; sending an unbound type fails at the send site
// with [ErrNoHandler]. Dispatch inside the run loop cannot fail.
//
// # Sending Messages
//
// Use [Send] (blocking while the mailbox is full), [TrySend]
// (non-blocking) and [Request] (typed reply):
//
//	err := actor.Send(ctx, addr, Add{N: 10})
//	n, err := actor.Request[int](ctx, addr, Get{})
//
// Messages from one goroutine through one address arrive in send order.
//
// # Lifecycle
//
// Actor types may implement [Starter] and [Stopper] for exactly-once
// startup and shutdown hooks. [Addr.Stop] (or cancelling
// [Options.Context]) requests a graceful stop: messages already accepted
// into the mailbox are delivered, scheduled tasks are waited for, then
// Stopped runs and [Addr.Done] closes. Sends racing the shutdown either
// fail with [ErrStopped] or are dead-lettered through the event stream.
//
// # Panics
//
// A panicking handler never takes the actor down: the panic is recovered,
// reported via [Options.OnPanic] and the event stream, and surfaced to
// request callers as an [ErrHandlerPanic]-wrapped error. The run loop
// keeps going.
//
// # Self-Requests
//
// [Request] detects being called with the actor's own [Context], which
// would deadlock, and returns [ErrSelfRequest]. Handlers that need to
// message their own actor use the non-blocking [Context.Send].
package actor
