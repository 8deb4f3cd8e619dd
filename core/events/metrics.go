package events

// Metrics defines the metrics interface for the event stream.
// All methods are thread-safe.
type Metrics interface {
	// Published is called for every event accepted by the stream.
	Published(event string)
	// Dropped is called when a subscriber queue is full and an event is
	// discarded for that subscriber.
	Dropped(event string)
	// Subscribers reports the current subscriber count.
	Subscribers(n int)
}

// nopMetrics is a no-op implementation of Metrics.
type nopMetrics struct{}

func (nopMetrics) Published(string) {}
func (nopMetrics) Dropped(string)   {}
func (nopMetrics) Subscribers(int)  {}

// NopMetrics returns a no-op Metrics implementation.
func NopMetrics() Metrics { return nopMetrics{} }
