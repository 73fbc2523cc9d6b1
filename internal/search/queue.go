package search

// pathQueue is a FIFO of directories waiting to be searched.
// It does no locking of its own; callers hold the queue lock.
type pathQueue struct {
	paths []string
}

func (q *pathQueue) enqueue(path string) {
	q.paths = append(q.paths, path)
}

func (q *pathQueue) dequeueHead() (string, error) {
	if len(q.paths) == 0 {
		return "", ErrEmptyQueue
	}
	return q.removeAt(0)
}

// removeAt removes the element i positions behind the head. Any i outside
// [0, len) fails with ErrIndexOutOfRange, including on an empty queue.
func (q *pathQueue) removeAt(i int) (string, error) {
	if i < 0 || i >= len(q.paths) {
		return "", ErrIndexOutOfRange
	}

	path := q.paths[i]
	copy(q.paths[i:], q.paths[i+1:])
	q.paths[len(q.paths)-1] = ""
	q.paths = q.paths[:len(q.paths)-1]

	// Drop the backing array once drained so a wide level does not pin memory
	if len(q.paths) == 0 {
		q.paths = nil
	}
	return path, nil
}

func (q *pathQueue) isEmpty() bool {
	return len(q.paths) == 0
}

func (q *pathQueue) len() int {
	return len(q.paths)
}
