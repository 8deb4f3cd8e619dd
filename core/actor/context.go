package actor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/codewandler/troupe-go/internal/msgtype"
)

// Context is the in-loop handle handed to handlers and lifecycle hooks.
// It embeds the loop's context.Context, which is cancelled once the actor
// has fully stopped. A Context is only meaningful on the run goroutine;
// background work should capture Addr instead.
type Context[A any] struct {
	context.Context
	in *inner[A]
}

// Addr returns a fresh address for this actor. Addresses are safe to hand
// to other goroutines and outlive the actor.
func (c *Context[A]) Addr() *Addr[A] { return &Addr[A]{in: c.in} }

// ID returns the actor ID.
func (c *Context[A]) ID() string { return c.in.id }

// Log returns the actor's logger.
func (c *Context[A]) Log() *slog.Logger { return c.in.log }

// Stop requests shutdown. It only flags the request; the current handler
// runs to completion and the mailbox drains before the actor stops.
func (c *Context[A]) Stop() { c.in.requestStop() }

// Send enqueues a message to the actor itself without blocking. A handler
// must never block on its own full mailbox, so a full mailbox fails with
// ErrMailboxFull instead of suspending. The message type must be bound.
func (c *Context[A]) Send(msg any) error {
	b, ok := c.in.registry[msgtype.Of(msg).Key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoHandler, msgtype.Of(msg).Name)
	}
	return c.in.tryPush(b.wrap(msg, nil))
}

// Schedule runs fn on the actor's background scheduler. Tasks run off the
// run goroutine and must not touch actor state; the actor waits for them
// during shutdown.
func (c *Context[A]) Schedule(fn func()) { c.in.sched.Schedule(fn) }
