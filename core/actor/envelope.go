package actor

// reply carries the outcome of one delivered envelope back to a waiting
// request caller.
type reply struct {
	result any
	err    error
}

// envelope is one message bound to its handler. The concrete message type
// is captured by the deliver closure at the send site; the run loop only
// ever performs the one indirect call, so dispatch can never fail there.
type envelope[A any] struct {
	// msgType is the display name used for logs, metrics and events.
	msgType string
	// deliver runs the bound handler against the actor state. Called at
	// most once, always on the run goroutine.
	deliver func(a A, ctx *Context[A]) (any, error)
	// reply receives the handler outcome. Capacity 1; nil for
	// fire-and-forget sends.
	reply chan reply
}
