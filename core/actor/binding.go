package actor

import (
	"fmt"
	"log/slog"
	"reflect"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/codewandler/troupe-go/internal/msgtype"
)

type (
	// Binding associates one message type with its handler on actor type A.
	// Create bindings with [On], [OnRequest] or [Every] and pass them to
	// [Start]. A binding value is inert until the actor starts.
	Binding[A any] struct {
		b *binding[A]
	}

	binding[A any] struct {
		info msgtype.Info
		// replies is set for OnRequest bindings; Request refuses message
		// types without it.
		replies bool
		// wrap boxes a concrete message into an envelope. msg is always
		// of the bound type; the assertion inside cannot fail for
		// messages that came through the registry.
		wrap func(msg any, rc chan reply) envelope[A]
		// init runs on the run goroutine during startup, after the
		// Started hook. Every uses it to start its ticker.
		init func(ctx *Context[A])
	}
)

// On binds a fire-and-forget handler for messages of type M. A non-nil
// error return is logged; use [OnRequest] when callers need the outcome.
func On[A, M any](fn func(self A, ctx *Context[A], msg M) error) Binding[A] {
	info := msgtype.For[M]()
	return Binding[A]{b: &binding[A]{
		info: info,
		wrap: func(msg any, rc chan reply) envelope[A] {
			m := msg.(M)
			return envelope[A]{
				msgType: info.Name,
				reply:   rc,
				deliver: func(a A, ctx *Context[A]) (any, error) {
					return nil, fn(a, ctx, m)
				},
			}
		},
	}}
}

// OnRequest binds a request handler for messages of type M returning R.
// Callers use [Request] to obtain the result; plain [Send] to the same
// type is allowed and discards it.
func OnRequest[A, M, R any](fn func(self A, ctx *Context[A], msg M) (R, error)) Binding[A] {
	info := msgtype.For[M]()
	return Binding[A]{b: &binding[A]{
		info:    info,
		replies: true,
		wrap: func(msg any, rc chan reply) envelope[A] {
			m := msg.(M)
			return envelope[A]{
				msgType: info.Name,
				reply:   rc,
				deliver: func(a A, ctx *Context[A]) (any, error) {
					return fn(a, ctx, m)
				},
			}
		},
	}}
}

// Every binds a periodic task. Ticks are delivered through the mailbox,
// so fn is serialized with the other handlers and never overlaps them.
// When the mailbox is full a tick is dropped, not queued; the next one
// fires interval later.
func Every[A any](interval time.Duration, fn func(self A, ctx *Context[A]) error) Binding[A] {
	name := fmt.Sprintf("tick/%s", gonanoid.Must(6))
	b := &binding[A]{
		// no dispatch key: ticks cannot be sent from outside
		info: msgtype.Info{Name: name},
	}
	b.init = func(ctx *Context[A]) {
		env := envelope[A]{
			msgType: name,
			deliver: func(a A, c *Context[A]) (any, error) {
				return nil, fn(a, c)
			},
		}
		tick := time.NewTicker(interval)
		go func() {
			defer tick.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-tick.C:
					switch err := ctx.in.tryPush(env); err {
					case nil:
					case ErrMailboxFull:
						ctx.Log().Debug("tick dropped", slog.String("tick", name))
					default:
						return
					}
				}
			}
		}()
	}
	return Binding[A]{b: b}
}

// buildRegistry validates the bindings and indexes them by dispatch key.
// Returns all bindings in registration order for init sequencing.
func buildRegistry[A any](bindings []Binding[A]) (map[reflect.Type]*binding[A], []*binding[A], error) {
	reg := make(map[reflect.Type]*binding[A], len(bindings))
	all := make([]*binding[A], 0, len(bindings))
	for _, w := range bindings {
		b := w.b
		if b == nil {
			return nil, nil, fmt.Errorf("zero binding; use On, OnRequest or Every")
		}
		if b.info.Key != nil {
			if _, dup := reg[b.info.Key]; dup {
				return nil, nil, fmt.Errorf("%w: %s", ErrDuplicateHandler, b.info.Name)
			}
			reg[b.info.Key] = b
		}
		all = append(all, b)
	}
	return reg, all, nil
}
