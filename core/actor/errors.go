package actor

import "errors"

var (
	// Lifecycle errors
	ErrStopped = errors.New("actor stopped")

	// Binding errors
	ErrNoHandler        = errors.New("no handler bound for message type")
	ErrDuplicateHandler = errors.New("duplicate handler for message type")
	ErrNoReply          = errors.New("message type has no request handler")

	// Send errors
	ErrMailboxFull = errors.New("mailbox full")
	ErrSelfRequest = errors.New("actor cannot request itself")

	// ErrHandlerPanic wraps a recovered handler panic when it is surfaced
	// to a request caller.
	ErrHandlerPanic = errors.New("handler panicked")
)
