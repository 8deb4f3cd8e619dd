package actor

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/codewandler/troupe-go/internal/stack"
)

// scheduler runs background tasks for one actor, bounded by a semaphore.
// The run loop waits for it during shutdown so that Stopped means no work
// is in flight.
type scheduler struct {
	ctx      context.Context
	log      *slog.Logger
	inflight atomic.Int32
	sem      chan struct{}
	max      int

	wg sync.WaitGroup

	actorID string
	metrics ActorMetrics
}

func newScheduler(ctx context.Context, max int, actorID string, log *slog.Logger, m ActorMetrics) *scheduler {
	var sem chan struct{}
	if max > 0 {
		sem = make(chan struct{}, max)
	}
	return &scheduler{
		ctx:     ctx,
		log:     log,
		sem:     sem,
		max:     max,
		actorID: actorID,
		metrics: m,
	}
}

// Schedule runs f asynchronously. When max concurrent tasks are already
// running, the task waits for a slot. Tasks scheduled after the actor
// fully stopped are dropped.
func (s *scheduler) Schedule(f func()) {
	select {
	case <-s.ctx.Done():
		return
	default:
	}

	s.wg.Add(1)

	if s.max <= 0 {
		go func() {
			defer s.wg.Done()
			count := s.inflight.Add(1)
			s.metrics.SchedulerInflight(s.actorID, int(count))
			defer func() {
				count := s.inflight.Add(-1)
				s.metrics.SchedulerInflight(s.actorID, int(count))
			}()
			s.runTask(f)
		}()
		return
	}

	go func() {
		defer s.wg.Done()

		select {
		case <-s.ctx.Done():
			return
		case s.sem <- struct{}{}:
		}

		count := s.inflight.Add(1)
		s.metrics.SchedulerInflight(s.actorID, int(count))
		defer func() {
			<-s.sem
			count := s.inflight.Add(-1)
			s.metrics.SchedulerInflight(s.actorID, int(count))
		}()

		s.runTask(f)
	}()
}

func (s *scheduler) runTask(f func()) {
	defer s.metrics.SchedulerTaskDuration().ObserveDuration()

	defer func() {
		if r := recover(); r != nil {
			s.metrics.SchedulerTaskCompleted(false)
			s.log.Error("scheduled task panicked",
				slog.Any("recovered", r),
				slog.String("stack", string(stack.Clean(debug.Stack()))),
			)
		}
	}()

	f()
	s.metrics.SchedulerTaskCompleted(true)
}

// Wait blocks until all in-flight tasks complete.
func (s *scheduler) Wait() {
	s.wg.Wait()
}
