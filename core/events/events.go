package events

import (
	"log/slog"
	"time"
)

// EventLogger is implemented by events that want to be logged when they
// pass through the stream. The stream logs them with the returned level,
// message and attributes.
type EventLogger interface {
	Log() (slog.Level, string, []any)
}

// ActorStarted is published once an actor finished starting up and entered
// its run loop. At the point of receiving this event the actor accepts
// messages.
type ActorStarted struct {
	ID string
	At time.Time
}

func (e ActorStarted) Log() (slog.Level, string, []any) {
	return slog.LevelDebug, "actor started", []any{slog.String("actor_id", e.ID)}
}

// ActorStopped is published after an actor drained its mailbox and shut
// down. No further events are published for that actor.
type ActorStopped struct {
	ID string
	At time.Time
}

func (e ActorStopped) Log() (slog.Level, string, []any) {
	return slog.LevelDebug, "actor stopped", []any{slog.String("actor_id", e.ID)}
}

// ActorPanicked is published after a message handler panicked. The actor
// keeps running; only the failing message is affected.
type ActorPanicked struct {
	ID        string
	MsgType   string
	Recovered any
	Stack     []byte
	At        time.Time
}

func (e ActorPanicked) Log() (slog.Level, string, []any) {
	return slog.LevelError, "actor handler panicked", []any{
		slog.String("actor_id", e.ID),
		slog.String("msg_type", e.MsgType),
		slog.Any("recovered", e.Recovered),
		slog.String("stack", string(e.Stack)),
	}
}

// DeadLetter is published for a message that was accepted but never
// delivered to a handler: mail that raced into the mailbox after the
// final shutdown drain.
type DeadLetter struct {
	ID      string
	MsgType string
	At      time.Time
}

func (e DeadLetter) Log() (slog.Level, string, []any) {
	return slog.LevelWarn, "dead letter", []any{
		slog.String("actor_id", e.ID),
		slog.String("msg_type", e.MsgType),
	}
}

var (
	_ EventLogger = ActorStarted{}
	_ EventLogger = ActorStopped{}
	_ EventLogger = ActorPanicked{}
	_ EventLogger = DeadLetter{}
)
