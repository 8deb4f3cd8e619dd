package events

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/codewandler/troupe-go/core/ds"
	"github.com/codewandler/troupe-go/internal/msgtype"
	"github.com/codewandler/troupe-go/internal/stack"
)

// Subscription is a handle for one subscriber. Pass it to
// [Stream.Unsubscribe] to stop receiving events.
type Subscription struct {
	id string
	ch chan any
	fn func(evt any)
}

// ID returns the generated subscription ID.
func (s *Subscription) ID() string { return s.id }

// StreamOpts configures a [Stream]. The zero value is usable.
type StreamOpts struct {
	// Log receives events implementing [EventLogger]. Defaults to
	// slog.Default().
	Log *slog.Logger
	// Buffer is the per-subscriber queue depth; 64 when unset. When a
	// subscriber's queue is full, events are dropped for that subscriber
	// rather than blocking publishers.
	Buffer int
	// Metrics defaults to a no-op implementation.
	Metrics Metrics
}

// Stream is a broadcast bus for runtime events. Publishing never blocks:
// each subscriber has its own buffered queue and a dedicated goroutine
// invoking its handler, so one slow subscriber cannot stall the others.
//
// All bookkeeping is serialized through a background goroutine; Stream is
// safe for concurrent use without external locking.
type Stream struct {
	log     *slog.Logger
	buffer  int
	metrics Metrics

	subCh   chan *Subscription
	unsubCh chan *Subscription
	pubCh   chan any

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewStream creates a running stream.
func NewStream(opts StreamOpts) *Stream {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 64
	}
	if opts.Metrics == nil {
		opts.Metrics = NopMetrics()
	}

	s := &Stream{
		log:     opts.Log,
		buffer:  opts.Buffer,
		metrics: opts.Metrics,
		subCh:   make(chan *Subscription),
		unsubCh: make(chan *Subscription),
		pubCh:   make(chan any),
		done:    make(chan struct{}),
	}

	s.wg.Add(1)
	go s.run()

	return s
}

// Subscribe registers fn to receive every event published after this call
// returns. fn runs on its own goroutine; events for the same subscription
// are delivered in publish order.
func (s *Stream) Subscribe(fn func(evt any)) *Subscription {
	sub := &Subscription{
		id: fmt.Sprintf("sub-%s", gonanoid.Must(6)),
		ch: make(chan any, s.buffer),
		fn: fn,
	}
	select {
	case s.subCh <- sub:
	case <-s.done:
		close(sub.ch)
	}
	return sub
}

// Unsubscribe removes sub. Events already queued for it are still
// delivered. Unsubscribing twice or after Close is a no-op.
func (s *Stream) Unsubscribe(sub *Subscription) {
	select {
	case s.unsubCh <- sub:
	case <-s.done:
	}
}

// Publish broadcasts evt to all current subscribers. Events implementing
// [EventLogger] are also logged. Publish after Close is a no-op.
func (s *Stream) Publish(evt any) {
	select {
	case s.pubCh <- evt:
	case <-s.done:
	}
}

// Close shuts the stream down and waits until every subscriber handler
// has finished processing its queued events.
func (s *Stream) Close() {
	s.closeOnce.Do(func() { close(s.done) })
	s.wg.Wait()
}

func (s *Stream) run() {
	defer s.wg.Done()

	subs := ds.NewSet[*Subscription]()

	for {
		select {
		case <-s.done:
			subs.ForEach(func(sub *Subscription) { close(sub.ch) })
			return

		case sub := <-s.subCh:
			subs.Add(sub)
			s.metrics.Subscribers(subs.Len())
			s.wg.Add(1)
			go s.consume(sub)

		case sub := <-s.unsubCh:
			if !subs.Contains(sub) {
				continue
			}
			subs.Remove(sub)
			s.metrics.Subscribers(subs.Len())
			close(sub.ch)

		case evt := <-s.pubCh:
			name := msgtype.Of(evt).Name
			s.metrics.Published(name)
			if el, ok := evt.(EventLogger); ok {
				level, msg, args := el.Log()
				s.log.Log(context.Background(), level, msg, args...)
			}
			subs.ForEach(func(sub *Subscription) {
				select {
				case sub.ch <- evt:
				default:
					s.metrics.Dropped(name)
					s.log.Debug("event dropped",
						slog.String("subscription", sub.id),
						slog.String("event", name),
					)
				}
			})
		}
	}
}

func (s *Stream) consume(sub *Subscription) {
	defer s.wg.Done()
	for evt := range sub.ch {
		s.invoke(sub, evt)
	}
}

func (s *Stream) invoke(sub *Subscription, evt any) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("event handler panicked",
				slog.String("subscription", sub.id),
				slog.String("event", msgtype.Of(evt).Name),
				slog.Any("recovered", r),
				slog.String("stack", string(stack.Clean(debug.Stack()))),
			)
		}
	}()
	sub.fn(evt)
}
