package actor

import "sync/atomic"

// State is the lifecycle phase of an actor. Transitions are strictly
// Starting -> Running -> Stopping -> Stopped; Stopped is terminal.
type State int32

const (
	// Starting: the run loop is up but the Started hook has not finished.
	// Sends are accepted and queue until Running.
	Starting State = iota
	// Running: messages are being processed.
	Running
	// Stopping: a stop was requested; the mailbox is draining.
	Stopping
	// Stopped: the actor is gone. Sends fail with ErrStopped.
	Stopped
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// stateVar is the atomically updated state cell. Written by the run loop
// only; read from any goroutine via Addr.State.
type stateVar struct {
	v atomic.Int32
}

func (s *stateVar) load() State   { return State(s.v.Load()) }
func (s *stateVar) store(n State) { s.v.Store(int32(n)) }
