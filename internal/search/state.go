package search

import (
	"sync"
	"sync/atomic"
)

// sharedState is the scheduling state shared by all workers of one run.
// Everything except matches is guarded by mu.
type sharedState struct {
	mu      sync.Mutex
	paths   pathQueue
	waiters waiterRegistry

	alive    int
	failed   int
	finished bool

	matches atomic.Int64
}

func newSharedState(workers int) *sharedState {
	return &sharedState{alive: workers}
}

// acquire claims the next directory for the worker owning h. It returns
// false when the traversal is over for this worker. The termination test
// and the claim happen in one critical section.
func (s *sharedState) acquire(h *wakeHandle) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return "", false
	}

	// Every other alive worker is parked and nothing is queued
	if s.paths.isEmpty() && s.waiters.len()+1 == s.alive {
		s.finishLocked()
		return "", false
	}

	reserved := s.waiters.reserved()
	if s.paths.len() <= reserved {
		s.waiters.enqueue(h)
		h.park()
		s.waiters.resumed()

		if s.finished {
			return "", false
		}
		path, err := s.paths.dequeueHead()
		if err != nil {
			// A wakeup without a published path breaks the 1:1 promise
			panic("search: woken worker found an empty queue")
		}
		return path, true
	}

	path, err := s.paths.removeAt(reserved)
	if err != nil {
		panic("search: reserved offset past queue tail")
	}
	return path, true
}

// publish queues a newly discovered directory and wakes at most one parked
// worker to take it.
func (s *sharedState) publish(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.paths.enqueue(path)
	if h, err := s.waiters.dequeueHead(); err == nil {
		h.signal()
	}
}

// leave removes a worker from the pool and reports whether it was the last.
func (s *sharedState) leave(fatal bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.alive--
	if fatal {
		s.failed++
		// The survivors may all be parked already; nobody would re-run the
		// termination test for them.
		if !s.finished && s.alive > 0 && s.paths.isEmpty() && s.waiters.len() == s.alive {
			s.finishLocked()
		}
	}
	return s.alive == 0
}

// finishLocked marks the run finished and wakes every parked worker.
func (s *sharedState) finishLocked() {
	s.finished = true
	for !s.waiters.isEmpty() {
		h, _ := s.waiters.dequeueHead()
		h.signal()
	}
}

func (s *sharedState) failedWorkers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}
