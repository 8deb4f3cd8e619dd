package actor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// lifeActor records its lifecycle into a channel.
type lifeActor struct {
	events chan string
}

func (l *lifeActor) Started(ctx *Context[*lifeActor]) { l.events <- "started" }
func (l *lifeActor) Stopped(ctx *Context[*lifeActor]) { l.events <- "stopped" }

type lifeMsg struct{}

func TestActor_lifecycle_hooks_exactly_once(t *testing.T) {
	l := &lifeActor{events: make(chan string, 16)}
	addr, err := Start(quietOpts(t), l,
		On(func(a *lifeActor, ctx *Context[*lifeActor], m lifeMsg) error {
			a.events <- "msg"
			return nil
		}),
	)
	require.NoError(t, err)

	require.NoError(t, Send(t.Context(), addr, lifeMsg{}))
	require.NoError(t, Send(t.Context(), addr, lifeMsg{}))

	addr.Stop()
	select {
	case <-addr.Done():
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}

	var got []string
	for {
		select {
		case e := <-l.events:
			got = append(got, e)
			continue
		default:
		}
		break
	}
	require.Equal(t, []string{"started", "msg", "msg", "stopped"}, got)
}

// gatedActor blocks in Started until released, so tests can line up
// mailbox contents and control messages before the loop runs.
type gatedActor struct {
	gate  chan struct{}
	n     int
	final chan int
}

func (g *gatedActor) Started(ctx *Context[*gatedActor]) { <-g.gate }
func (g *gatedActor) Stopped(ctx *Context[*gatedActor]) {
	if g.final != nil {
		g.final <- g.n
	}
}

type bump struct{}

func startGated(t *testing.T, g *gatedActor) *Addr[*gatedActor] {
	t.Helper()
	addr, err := Start(quietOpts(t), g,
		On(func(a *gatedActor, ctx *Context[*gatedActor], m bump) error {
			a.n++
			return nil
		}),
	)
	require.NoError(t, err)
	return addr
}

func TestActor_drain_on_stop(t *testing.T) {
	g := &gatedActor{gate: make(chan struct{}), final: make(chan int, 1)}
	addr := startGated(t, g)

	// queue K messages while startup is held, then request the stop
	// before a single one was processed
	const k = 50
	for i := 0; i < k; i++ {
		require.NoError(t, Send(t.Context(), addr, bump{}))
	}
	addr.Stop()
	close(g.gate)

	select {
	case <-addr.Done():
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}

	// every accepted message was delivered before the Stopped hook
	require.Equal(t, k, <-g.final)
}

func TestActor_stop_while_paused_drains(t *testing.T) {
	g := &gatedActor{gate: make(chan struct{}), final: make(chan int, 1)}
	addr := startGated(t, g)

	// pause lands in the control queue before the loop starts, so it is
	// applied before any delivery
	require.NoError(t, addr.Pause())
	close(g.gate)

	const k = 20
	for i := 0; i < k; i++ {
		require.NoError(t, Send(t.Context(), addr, bump{}))
	}

	addr.Stop()
	select {
	case <-addr.Done():
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}

	require.Equal(t, k, <-g.final)
}

func TestActor_stop_idempotent(t *testing.T) {
	addr := startCounter(t, quietOpts(t))

	addr.Stop()
	addr.Stop()

	select {
	case <-addr.Done():
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}

	addr.Stop() // after termination, still a no-op
	require.Equal(t, Stopped, addr.State())
}

func TestActor_send_after_stop(t *testing.T) {
	addr := startCounter(t, quietOpts(t))
	addr.Stop()
	<-addr.Done()

	require.ErrorIs(t, Send(t.Context(), addr, add{N: 1}), ErrStopped)
	require.ErrorIs(t, TrySend(addr, add{N: 1}), ErrStopped)

	_, err := Request[int](t.Context(), addr, get{})
	require.ErrorIs(t, err, ErrStopped)

	require.ErrorIs(t, addr.Pause(), ErrStopped)
	require.ErrorIs(t, addr.Resume(), ErrStopped)
	require.ErrorIs(t, addr.Step(), ErrStopped)
}

func TestActor_states(t *testing.T) {
	states := make(chan State, 1)
	g := &gatedActor{gate: make(chan struct{})}
	addr, err := Start(quietOpts(t), g,
		On(func(a *gatedActor, ctx *Context[*gatedActor], m bump) error {
			states <- ctx.Addr().State()
			return nil
		}),
	)
	require.NoError(t, err)

	require.Equal(t, Starting, addr.State())
	close(g.gate)

	require.NoError(t, Send(t.Context(), addr, bump{}))
	select {
	case s := <-states:
		require.Equal(t, Running, s)
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}

	addr.Stop()
	<-addr.Done()
	require.Equal(t, Stopped, addr.State())
}

func TestActor_stopped_hook_sees_stopping_state(t *testing.T) {
	states := make(chan State, 1)
	type probe struct{}
	s := &stopProbe{states: states}
	addr, err := Start(quietOpts(t), s,
		On(func(a *stopProbe, ctx *Context[*stopProbe], m probe) error { return nil }),
	)
	require.NoError(t, err)

	addr.Stop()
	select {
	case st := <-states:
		require.Equal(t, Stopping, st)
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
	<-addr.Done()
}

type stopProbe struct {
	states chan State
}

func (s *stopProbe) Stopped(ctx *Context[*stopProbe]) { s.states <- ctx.Addr().State() }

func TestActor_parent_context_cancel_stops(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	opts := quietOpts(t)
	opts.Context = ctx

	g := &gatedActor{gate: make(chan struct{}), final: make(chan int, 1)}
	addr, err := Start(opts, g,
		On(func(a *gatedActor, ctx *Context[*gatedActor], m bump) error {
			a.n++
			return nil
		}),
	)
	require.NoError(t, err)
	close(g.gate)

	for i := 0; i < 10; i++ {
		require.NoError(t, Send(t.Context(), addr, bump{}))
	}
	cancel()

	select {
	case <-addr.Done():
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}

	// cancellation takes the same graceful path as Stop
	require.Equal(t, Stopped, addr.State())
	require.Equal(t, 10, <-g.final)
}

func TestActor_early_sends_queue_until_started(t *testing.T) {
	g := &gatedActor{gate: make(chan struct{}), final: make(chan int, 1)}
	addr := startGated(t, g)

	// accepted while the Started hook is still blocked
	require.NoError(t, Send(t.Context(), addr, bump{}))
	require.Equal(t, Starting, addr.State())

	close(g.gate)
	addr.Stop()
	<-addr.Done()
	require.Equal(t, 1, <-g.final)
}

func TestActor_hook_panic_contained(t *testing.T) {
	panics := make(chan string, 1)
	opts := quietOpts(t)
	opts.OnPanic = func(recovered any, stack []byte, msgType string) {
		panics <- msgType
	}

	p := &panicStarter{processed: make(chan struct{}, 1)}
	addr, err := Start(opts, p,
		On(func(a *panicStarter, ctx *Context[*panicStarter], m bump) error {
			a.processed <- struct{}{}
			return nil
		}),
	)
	require.NoError(t, err)

	select {
	case mt := <-panics:
		require.Equal(t, "hook/Started", mt)
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}

	// the actor still runs
	require.NoError(t, Send(t.Context(), addr, bump{}))
	select {
	case <-p.processed:
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
}

type panicStarter struct {
	processed chan struct{}
}

func (p *panicStarter) Started(ctx *Context[*panicStarter]) { panic("bad start") }
