package actor

import (
	"context"
	"fmt"

	"github.com/codewandler/troupe-go/internal/msgtype"
)

// Addr is a cheap shareable handle on a running actor. All copies address
// the same actor; an Addr outlives it, and sends after termination fail
// with ErrStopped instead of panicking.
type Addr[A any] struct {
	in *inner[A]
}

// ID returns the actor ID.
func (a *Addr[A]) ID() string { return a.in.id }

// State returns the current lifecycle state.
func (a *Addr[A]) State() State { return a.in.state.load() }

// Stop requests a graceful shutdown and returns immediately. The mailbox
// drains before the Stopped hook runs; wait on Done for completion.
// Calling Stop again has no effect.
func (a *Addr[A]) Stop() { a.in.requestStop() }

// Done is closed once the actor has fully stopped.
func (a *Addr[A]) Done() <-chan struct{} { return a.in.done }

// Pause suspends message processing until Resume or Step. Messages keep
// queueing in the mailbox.
func (a *Addr[A]) Pause() error { return a.in.sendCtrl(ctrlPause) }

// Resume re-enables continuous processing.
func (a *Addr[A]) Resume() error { return a.in.sendCtrl(ctrlResume) }

// Step permits exactly one message to be processed while paused.
func (a *Addr[A]) Step() error { return a.in.sendCtrl(ctrlStep) }

// Ref is the type-erased view of an Addr, for registries and tooling that
// manage actors of mixed types.
type Ref interface {
	ID() string
	State() State
	Stop()
	Done() <-chan struct{}
}

var _ Ref = (*Addr[any])(nil)

// Send enqueues msg and returns once it is accepted into the mailbox.
// It blocks while the mailbox is full, failing with ctx's error on
// cancellation and ErrStopped once the actor shut down. The message type
// must have a binding; unbound types fail here with ErrNoHandler, never
// inside the run loop.
func Send[M any, A any](ctx context.Context, addr *Addr[A], msg M) error {
	b, err := addr.in.lookup(msgtype.For[M]())
	if err != nil {
		return err
	}
	return addr.in.push(ctx, b.wrap(msg, nil))
}

// TrySend is the non-blocking variant of [Send]; a full mailbox fails
// with ErrMailboxFull.
func TrySend[M any, A any](addr *Addr[A], msg M) error {
	b, err := addr.in.lookup(msgtype.For[M]())
	if err != nil {
		return err
	}
	return addr.in.tryPush(b.wrap(msg, nil))
}

// Request sends msg and waits for the handler's reply:
//
//	n, err := actor.Request[int](ctx, addr, Get{})
//
// The message type must have an [OnRequest] binding (ErrNoReply
// otherwise). Request fails with ErrStopped when the actor terminates
// before replying and with ErrSelfRequest when called with the actor's
// own Context, which would deadlock.
func Request[R any, M any, A any](ctx context.Context, addr *Addr[A], msg M) (R, error) {
	var zero R

	info := msgtype.For[M]()
	b, err := addr.in.lookup(info)
	if err != nil {
		return zero, err
	}
	if !b.replies {
		return zero, fmt.Errorf("%w: %s", ErrNoReply, info.Name)
	}
	if c, ok := ctx.(*Context[A]); ok && c.in == addr.in {
		return zero, fmt.Errorf("%w: %s", ErrSelfRequest, info.Name)
	}

	rc := make(chan reply, 1)
	if err := addr.in.push(ctx, b.wrap(msg, rc)); err != nil {
		return zero, err
	}

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-rc:
		return replyAs[R](info.Name, r)
	case <-addr.in.done:
		// the reply may have been completed right before termination
		select {
		case r := <-rc:
			return replyAs[R](info.Name, r)
		default:
			return zero, ErrStopped
		}
	}
}

func replyAs[R any](msgType string, r reply) (R, error) {
	var zero R
	if r.err != nil {
		return zero, r.err
	}
	if r.result == nil {
		return zero, nil
	}
	out, ok := r.result.(R)
	if !ok {
		return zero, fmt.Errorf("request %s: reply is %T, not %T", msgType, r.result, zero)
	}
	return out, nil
}
