package scheduler

import (
	"errors"
	"sync"
	"time"

	"github.com/vigild/vigil/pkg/logger"
)

// ErrJoinTimeout is returned by Join when the worker goroutine does not
// terminate within the given timeout.
var ErrJoinTimeout = errors.New("scheduler: join timed out")

// Scheduler is the debounce timer service shared by all project
// watchers. A single background goroutine sleeps until the next pending
// timer is due and runs due callbacks one at a time, in fire-time order.
type Scheduler struct {
	log logger.Logger

	mu      sync.Mutex
	heap    timerHeap
	nextID  uint64
	stopped bool

	wake     chan struct{}
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// New creates and starts a new Scheduler. The worker goroutine runs
// until Stop is called.
func New(log logger.Logger) *Scheduler {
	s := &Scheduler{
		log:  log,
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go s.run()
	return s
}

// Schedule arms a new timer that runs fn after delay. If prev is non-nil
// and its timer is still pending, that timer is cancelled first; the
// cancel and the arm happen under one lock, so there is no window in
// which both timers exist. The returned handle replaces prev.
//
// Calling Schedule after Stop returns an inert handle and arms nothing.
// Callers are expected to stop their event sources before stopping the
// scheduler.
func (s *Scheduler) Schedule(prev *Handle, delay time.Duration, fn func()) *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev != nil {
		heapRemoveByID(&s.heap, prev.id)
	}

	s.nextID++
	h := &Handle{id: s.nextID}
	if s.stopped {
		return h
	}

	heapPush(&s.heap, timerEntry{
		id:     h.id,
		fireAt: time.Now().Add(delay),
		fn:     fn,
	})
	s.log.Info("Scheduling callback in %s", delay)

	// Wake the worker so it re-arms its sleep for the new head.
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return h
}

// Stop signals the worker to terminate and discards all pending timers
// without running them. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.log.Info("Stopping event scheduler")
		s.mu.Lock()
		s.stopped = true
		s.heap = nil
		s.mu.Unlock()
		close(s.quit)
	})
}

// Join blocks until the worker goroutine has fully terminated. A
// timeout of zero or less waits indefinitely. Idempotent.
func (s *Scheduler) Join(timeout time.Duration) error {
	if timeout <= 0 {
		<-s.done
		return nil
	}
	select {
	case <-s.done:
		return nil
	case <-time.After(timeout):
		return ErrJoinTimeout
	}
}

// run is the worker goroutine. It blocks when no timer is pending,
// waking on a Schedule call or on Stop. A fresh time.Timer is created
// per wait so a stale tick can never leak across iterations.
func (s *Scheduler) run() {
	defer close(s.done)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		s.mu.Lock()
		var timerCh <-chan time.Time
		if len(s.heap) > 0 {
			dur := time.Until(s.heap[0].fireAt)
			if dur < 0 {
				dur = 0
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(dur)
			timerCh = timer.C
		}
		s.mu.Unlock()

		// A nil timerCh blocks forever; only wake or quit can
		// break the empty-heap wait.
		select {
		case <-s.quit:
			return
		case <-s.wake:
		case <-timerCh:
			s.fireDue()
		}
	}
}

// fireDue pops and runs every timer whose fire time has arrived, in
// heap order. The callback runs outside the lock: once an entry is
// popped its handle can no longer be cancelled, and a concurrent
// Schedule for that handle simply arms an independent new timer.
func (s *Scheduler) fireDue() {
	for {
		s.mu.Lock()
		if s.stopped || len(s.heap) == 0 || s.heap[0].fireAt.After(time.Now()) {
			s.mu.Unlock()
			return
		}
		e := heapPop(&s.heap)
		s.mu.Unlock()
		e.fn()
	}
}
