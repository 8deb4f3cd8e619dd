// Package metrics holds the small abstract instrumentation surface shared by
// the runtime's metrics interfaces, so core packages stay decoupled from any
// concrete backend (see adapters/prometheus).
package metrics

// Timer measures the duration of an operation. Call ObserveDuration when
// the operation completes to record the elapsed time.
type Timer interface {
	// ObserveDuration records the elapsed time since the timer was created.
	ObserveDuration()
}

// TimerFunc creates a new Timer, enabling deferred timing:
//
//	defer m.MessageDuration(msgType).ObserveDuration()
type TimerFunc func() Timer
