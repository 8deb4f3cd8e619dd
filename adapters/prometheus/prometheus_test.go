package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewActorMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewActorMetrics(reg)

	require.NotNil(t, m)

	// Test message handling
	timer := m.MessageDuration("MyMessage")
	assert.NotNil(t, timer)
	timer.ObserveDuration()

	m.MessageProcessed("MyMessage", true)
	m.MessageProcessed("MyMessage", false)
	m.MessagePanic("MyMessage")

	// Test mailbox
	m.MailboxDepth("actor-123", 10)

	// Test scheduler
	m.SchedulerInflight("actor-123", 5)

	timer = m.SchedulerTaskDuration()
	assert.NotNil(t, timer)
	timer.ObserveDuration()

	m.SchedulerTaskCompleted(true)
	m.SchedulerTaskCompleted(false)

	// Verify metrics were registered
	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)

	names := make(map[string]bool)
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}

	assert.True(t, names["troupe_actor_message_duration_seconds"])
	assert.True(t, names["troupe_actor_messages_total"])
	assert.True(t, names["troupe_actor_panics_total"])
	assert.True(t, names["troupe_actor_mailbox_depth"])
}

func TestNewEventsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewEventsMetrics(reg)

	require.NotNil(t, m)

	m.Published("ActorStarted")
	m.Published("ActorStopped")
	m.Dropped("ActorStarted")
	m.Subscribers(3)

	// Verify metrics were registered
	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)

	names := make(map[string]bool)
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}

	assert.True(t, names["troupe_events_published_total"])
	assert.True(t, names["troupe_events_dropped_total"])
	assert.True(t, names["troupe_events_subscribers"])
}

func TestNewAllMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAllMetrics(reg)

	require.NotNil(t, m)
	require.NotNil(t, m.Actor)
	require.NotNil(t, m.Events)

	// All metrics should be usable
	m.Actor.MessageProcessed("test", true)
	m.Events.Published("test")

	// Verify all metric families registered
	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}

func TestBoolToStr(t *testing.T) {
	assert.Equal(t, "true", boolToStr(true))
	assert.Equal(t, "false", boolToStr(false))
}
