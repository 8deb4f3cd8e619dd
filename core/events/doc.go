// Package events provides a broadcast stream for runtime events such as
// actor lifecycle transitions, handler panics and dead letters.
//
// The actor runtime publishes to a [Stream]; anything interested in what
// the runtime is doing subscribes to it. Subscribers are decoupled from
// publishers: each subscription has a buffered queue drained by its own
// goroutine, and a full queue drops events for that subscriber instead of
// blocking the publisher.
//
// # Subscribing
//
//	stream := events.NewStream(events.StreamOpts{})
//	sub := stream.Subscribe(func(evt any) {
//	    switch e := evt.(type) {
//	    case events.ActorPanicked:
//	        alert(e.ID, e.Recovered)
//	    case events.DeadLetter:
//	        audit(e.ID, e.MsgType)
//	    }
//	})
//	defer stream.Unsubscribe(sub)
//
// # Logging
//
// Events implementing [EventLogger] are logged by the stream itself, so
// wiring a logger into [StreamOpts] is all that is needed for lifecycle
// visibility.
package events
