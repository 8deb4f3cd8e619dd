package actor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"runtime/debug"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/codewandler/troupe-go/core/events"
	"github.com/codewandler/troupe-go/internal/msgtype"
	"github.com/codewandler/troupe-go/internal/stack"
)

type (
	// OnPanic receives recovered handler and hook panics. stack is already
	// cleaned of runtime frames.
	OnPanic func(recovered any, stack []byte, msgType string)

	// Starter is implemented by actor types that want a startup hook.
	// Started runs exactly once on the run goroutine, before the first
	// message; it may send itself messages or schedule background work.
	Starter[A any] interface {
		Started(ctx *Context[A])
	}

	// Stopper is implemented by actor types that want a shutdown hook.
	// Stopped runs exactly once after the mailbox has drained and all
	// scheduled tasks finished; no handler runs after it.
	Stopper[A any] interface {
		Stopped(ctx *Context[A])
	}

	Options struct {
		// ID identifies the actor in logs, metrics and events.
		// Defaults to "actor-<nanoid>".
		ID string
		// Context is the parent context. Cancelling it requests a
		// graceful stop, same as Addr.Stop.
		Context context.Context
		Logger  *slog.Logger
		// MailboxSize bounds the mailbox; sends block while it is full.
		MailboxSize int
		ControlSize int
		// MaxConcurrentTasks caps tasks run via Context.Schedule.
		// If 0, defaults to 32; negative means unlimited.
		MaxConcurrentTasks int
		// OnPanic overrides the default panic report (error log).
		// Panics are always contained; the actor keeps running.
		OnPanic OnPanic
		Metrics ActorMetrics
		// Events receives lifecycle, panic and dead-letter events.
		Events *events.Stream
	}
)

// control messages, drained with priority over the mailbox

type ctrlKind int

const (
	ctrlPause ctrlKind = iota
	ctrlResume
	ctrlStep
)

type ctrlMsg struct {
	kind ctrlKind
}

// inner is the shared core behind Addr and Context. The actor state value
// itself never lives here: it is passed down the run goroutine's stack and
// stays unreachable from any other goroutine.
type inner[A any] struct {
	id     string
	log    *slog.Logger
	parent context.Context

	mailbox chan envelope[A]
	control chan ctrlMsg

	// stop is closed exactly once to request shutdown; done is closed
	// when the actor is fully terminated.
	stop chan struct{}
	done chan struct{}

	mu      sync.Mutex
	closed  bool
	sending sync.WaitGroup

	state    stateVar
	registry map[reflect.Type]*binding[A]

	sched   *scheduler
	metrics ActorMetrics
	events  *events.Stream
	onPanic OnPanic

	cancelLoop context.CancelFunc
}

// Start validates the bindings, takes ownership of a and spawns its run
// loop. The returned address is usable immediately; messages sent before
// startup completes queue in the mailbox. Start fails only on invalid
// bindings.
func Start[A any](opts Options, a A, bindings ...Binding[A]) (*Addr[A], error) {
	if opts.ID == "" {
		opts.ID = fmt.Sprintf("actor-%s", gonanoid.Must(6))
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MailboxSize <= 0 {
		opts.MailboxSize = 1024
	}
	if opts.ControlSize <= 0 {
		opts.ControlSize = 16
	}
	if opts.MaxConcurrentTasks == 0 {
		opts.MaxConcurrentTasks = 32
	}
	if opts.Metrics == nil {
		opts.Metrics = NopActorMetrics()
	}

	registry, all, err := buildRegistry(bindings)
	if err != nil {
		return nil, err
	}

	log := opts.Logger.With(slog.String("actor", opts.ID))
	if opts.OnPanic == nil {
		opts.OnPanic = func(recovered any, stack []byte, msgType string) {
			log.Error("actor panicked",
				slog.Any("recovered", recovered),
				slog.String("msg_type", msgType),
				slog.String("stack", string(stack)),
			)
		}
	}

	// The loop context is not derived from the parent: parent
	// cancellation must trigger the same graceful drain as Stop, not cut
	// tickers and waiters off mid-shutdown. It is cancelled only after
	// full termination.
	loopCtx, cancelLoop := context.WithCancel(context.Background())

	in := &inner[A]{
		id:         opts.ID,
		log:        log,
		parent:     opts.Context,
		mailbox:    make(chan envelope[A], opts.MailboxSize),
		control:    make(chan ctrlMsg, opts.ControlSize),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		registry:   registry,
		metrics:    opts.Metrics,
		events:     opts.Events,
		onPanic:    opts.OnPanic,
		cancelLoop: cancelLoop,
	}
	in.sched = newScheduler(loopCtx, opts.MaxConcurrentTasks, opts.ID, log, opts.Metrics)

	ctx := &Context[A]{Context: loopCtx, in: in}
	go in.run(a, ctx, all)

	return &Addr[A]{in: in}, nil
}

// run owns the whole actor lifecycle on one goroutine.
func (in *inner[A]) run(a A, ctx *Context[A], all []*binding[A]) {
	defer close(in.done)

	if s, ok := any(a).(Starter[A]); ok {
		in.safeHook(ctx, "hook/Started", s.Started)
	}
	for _, b := range all {
		if b.init != nil {
			b.init(ctx)
		}
	}

	in.state.store(Running)
	in.emit(events.ActorStarted{ID: in.id, At: time.Now()})

	in.loop(a, ctx)

	// shutdown: close the send gate (idempotent; covers parent-cancel),
	// deliver everything already accepted, wait out background tasks,
	// then run the hook. Envelopes that raced past the gate after the
	// drain become dead letters.
	in.requestStop()
	in.state.store(Stopping)

	in.drain(a, ctx)
	in.sched.Wait()

	if s, ok := any(a).(Stopper[A]); ok {
		in.safeHook(ctx, "hook/Stopped", s.Stopped)
	}
	in.sched.Wait()

	in.state.store(Stopped)
	in.emit(events.ActorStopped{ID: in.id, At: time.Now()})

	in.cancelLoop()
	in.sending.Wait()
	in.discard()
}

// loop processes messages until a stop is requested. Control directives
// take priority over the mailbox; a permit of 0 (pause) blocks processing
// until Resume or Step.
func (in *inner[A]) loop(a A, ctx *Context[A]) {
	paused := false
	permit := 1

	apply := func(c ctrlMsg) {
		switch c.kind {
		case ctrlPause:
			paused = true
			permit = 0
		case ctrlResume:
			paused = false
			if permit == 0 {
				permit = 1
			}
		case ctrlStep:
			permit++
		}
	}

	// drain all pending control msgs (priority); false means stop
	drainControl := func() bool {
		for {
			select {
			case <-in.stop:
				return false
			case c := <-in.control:
				apply(c)
			default:
				return true
			}
		}
	}

	for {
		if ok := drainControl(); !ok {
			return
		}

		if permit <= 0 {
			select {
			case <-in.stop:
				return
			case <-in.parent.Done():
				return
			case c := <-in.control:
				apply(c)
			}
			continue
		}

		var handled bool
		select {
		case <-in.stop:
			return
		case <-in.parent.Done():
			return
		case c := <-in.control:
			apply(c)
		case env := <-in.mailbox:
			permit--
			in.deliver(a, ctx, env)
			handled = true
		}

		// renew the permit in continuous mode
		if handled && !paused {
			permit++
		}
	}
}

// deliver runs one envelope with crash containment and completes its
// reply.
func (in *inner[A]) deliver(a A, ctx *Context[A], env envelope[A]) {
	in.metrics.MailboxDepth(in.id, len(in.mailbox))

	timer := in.metrics.MessageDuration(env.msgType)
	res, err := in.safeDeliver(a, ctx, env)
	timer.ObserveDuration()
	in.metrics.MessageProcessed(env.msgType, err == nil)

	if env.reply != nil {
		env.reply <- reply{result: res, err: err}
		return
	}
	if err != nil && !errors.Is(err, ErrHandlerPanic) {
		in.log.Warn("handler error",
			slog.String("msg_type", env.msgType),
			slog.Any("error", err),
		)
	}
}

func (in *inner[A]) safeDeliver(a A, ctx *Context[A], env envelope[A]) (res any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrHandlerPanic, env.msgType, r)
			in.reportPanic(r, env.msgType)
		}
	}()
	return env.deliver(a, ctx)
}

func (in *inner[A]) safeHook(ctx *Context[A], name string, hook func(*Context[A])) {
	defer func() {
		if r := recover(); r != nil {
			in.reportPanic(r, name)
		}
	}()
	hook(ctx)
}

func (in *inner[A]) reportPanic(recovered any, msgType string) {
	st := stack.Clean(debug.Stack())
	in.metrics.MessagePanic(msgType)
	in.onPanic(recovered, st, msgType)
	in.emit(events.ActorPanicked{
		ID:        in.id,
		MsgType:   msgType,
		Recovered: recovered,
		Stack:     st,
		At:        time.Now(),
	})
}

// drain delivers every envelope already in the mailbox.
func (in *inner[A]) drain(a A, ctx *Context[A]) {
	for {
		select {
		case env := <-in.mailbox:
			in.deliver(a, ctx, env)
		default:
			return
		}
	}
}

// discard dead-letters whatever raced into the mailbox after the final
// drain. Runs after in.sending.Wait(), so nothing can arrive later.
func (in *inner[A]) discard() {
	for {
		select {
		case env := <-in.mailbox:
			if env.reply != nil {
				env.reply <- reply{err: ErrStopped}
			}
			in.emit(events.DeadLetter{ID: in.id, MsgType: env.msgType, At: time.Now()})
		default:
			return
		}
	}
}

func (in *inner[A]) emit(evt any) {
	if in.events != nil {
		in.events.Publish(evt)
	}
}

// requestStop closes the send gate exactly once. It never blocks and
// never waits for termination.
func (in *inner[A]) requestStop() {
	in.mu.Lock()
	if in.closed {
		in.mu.Unlock()
		return
	}
	in.closed = true
	in.mu.Unlock()
	close(in.stop)
}

// begin registers an in-flight send attempt. The shutdown sequence waits
// for all of them before the final dead-letter sweep, so an accepted
// envelope is never silently lost.
func (in *inner[A]) begin() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return ErrStopped
	}
	in.sending.Add(1)
	return nil
}

// push blocks until the envelope is accepted, the caller gives up, or the
// actor stops.
func (in *inner[A]) push(ctx context.Context, env envelope[A]) error {
	if err := in.begin(); err != nil {
		return err
	}
	defer in.sending.Done()

	select {
	case <-ctx.Done():
		return fmt.Errorf("send failed: %w", ctx.Err())
	case <-in.stop:
		return ErrStopped
	case in.mailbox <- env:
		in.metrics.MailboxDepth(in.id, len(in.mailbox))
		return nil
	}
}

// tryPush is the non-blocking variant.
func (in *inner[A]) tryPush(env envelope[A]) error {
	if err := in.begin(); err != nil {
		return err
	}
	defer in.sending.Done()

	select {
	case <-in.stop:
		return ErrStopped
	default:
	}
	select {
	case in.mailbox <- env:
		in.metrics.MailboxDepth(in.id, len(in.mailbox))
		return nil
	default:
		return ErrMailboxFull
	}
}

func (in *inner[A]) lookup(info msgtype.Info) (*binding[A], error) {
	b, ok := in.registry[info.Key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, info.Name)
	}
	return b, nil
}

func (in *inner[A]) sendCtrl(k ctrlKind) error {
	in.mu.Lock()
	closed := in.closed
	in.mu.Unlock()
	if closed {
		return ErrStopped
	}
	select {
	case <-in.stop:
		return ErrStopped
	case in.control <- ctrlMsg{kind: k}:
		return nil
	}
}
