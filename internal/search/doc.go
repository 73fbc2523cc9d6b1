// Package search implements the parallel directory search pool.
//
// A fixed number of workers traverse a directory tree together. Every worker
// is both a consumer and a producer: it claims a pending directory, lists it,
// publishes the subdirectories it finds and reports files whose name contains
// the search term.
//
// # Coordination
//
// A single mutex, the queue lock, guards all shared scheduling state:
//
//	pathQueue       FIFO of discovered but unclaimed directories
//	waiterRegistry  FIFO of parked workers, plus the count of woken workers
//	                that have not yet re-acquired the lock ("waking")
//	alive           workers that have not exited
//
// The lock is never held across filesystem I/O.
//
// Publishing a directory wakes at most one parked worker, and that worker is
// promised the head of the queue. A worker that does not need to park claims
// the slot at offset waiters+waking instead of the head, so it never takes a
// directory already promised to a parked or waking peer, and it never parks
// while an unpromised directory exists.
//
// # Termination
//
// There is no central coordinator loop. A worker that finds the queue empty
// while every other alive worker is parked knows no more work can appear: it
// marks the run finished and wakes all parked workers so they can exit. The
// worker that brings the alive count to zero reports the summary, exactly
// once.
//
// A worker that hits a fatal filesystem error leaves the pool on its own;
// its peers keep searching and the run ends with a failure status.
package search
