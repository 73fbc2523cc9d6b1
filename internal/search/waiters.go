package search

import "sync"

// wakeHandle parks one worker on the queue lock.
type wakeHandle struct {
	cond     *sync.Cond
	signaled bool
}

func newWakeHandle(mu *sync.Mutex) *wakeHandle {
	return &wakeHandle{cond: sync.NewCond(mu)}
}

// park blocks until signal is called. The queue lock must be held; it is
// released while parked and held again on return.
func (h *wakeHandle) park() {
	for !h.signaled {
		h.cond.Wait()
	}
	h.signaled = false
}

// signal wakes the parked worker. The queue lock must be held.
func (h *wakeHandle) signal() {
	h.signaled = true
	h.cond.Signal()
}

// waiterRegistry is a FIFO of parked workers.
// Like pathQueue it relies on the caller holding the queue lock.
type waiterRegistry struct {
	handles []*wakeHandle
	// waking counts workers signaled but not yet running under the lock.
	waking int
}

func (r *waiterRegistry) enqueue(h *wakeHandle) {
	r.handles = append(r.handles, h)
}

// dequeueHead removes the oldest parked worker. The caller is expected to
// signal it, so it is counted as waking from here on.
func (r *waiterRegistry) dequeueHead() (*wakeHandle, error) {
	if len(r.handles) == 0 {
		return nil, ErrEmptyQueue
	}

	h := r.handles[0]
	r.handles[0] = nil
	r.handles = r.handles[1:]
	if len(r.handles) == 0 {
		r.handles = nil
	}
	r.waking++
	return h, nil
}

// resumed records that a woken worker holds the lock again.
func (r *waiterRegistry) resumed() {
	r.waking--
}

// reserved is the number of queued directories already promised to parked
// or waking workers.
func (r *waiterRegistry) reserved() int {
	return len(r.handles) + r.waking
}

func (r *waiterRegistry) isEmpty() bool {
	return len(r.handles) == 0
}

func (r *waiterRegistry) len() int {
	return len(r.handles)
}
