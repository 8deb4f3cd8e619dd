package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/troupe-go/core/events"
)

// eventsMetrics implements events.Metrics using Prometheus.
type eventsMetrics struct {
	publishedTotal *prometheus.CounterVec
	droppedTotal   *prometheus.CounterVec
	subscribers    prometheus.Gauge
}

// NewEventsMetrics creates a new Prometheus implementation of
// events.Metrics.
func NewEventsMetrics(reg prometheus.Registerer) events.Metrics {
	m := &eventsMetrics{
		publishedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "troupe_events_published_total",
			Help: "Total number of events published to the stream",
		}, []string{"event"}),

		droppedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "troupe_events_dropped_total",
			Help: "Total number of events dropped for slow subscribers",
		}, []string{"event"}),

		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "troupe_events_subscribers",
			Help: "Current number of stream subscribers",
		}),
	}

	reg.MustRegister(
		m.publishedTotal,
		m.droppedTotal,
		m.subscribers,
	)

	return m
}

func (m *eventsMetrics) Published(event string) {
	m.publishedTotal.WithLabelValues(event).Inc()
}

func (m *eventsMetrics) Dropped(event string) {
	m.droppedTotal.WithLabelValues(event).Inc()
}

func (m *eventsMetrics) Subscribers(n int) {
	m.subscribers.Set(float64(n))
}

var _ events.Metrics = (*eventsMetrics)(nil)
