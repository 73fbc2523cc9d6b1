package search

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArgument is returned by Run for a bad root or worker count.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEmptyQueue is returned when dequeuing from an empty queue.
	ErrEmptyQueue = errors.New("queue is empty")

	// ErrIndexOutOfRange is returned by removeAt for an offset past the tail.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Operations a worker can fail in
const (
	OpList  = "list"
	OpStat  = "stat"
	OpClose = "close"
)

// WorkerError is a fatal filesystem error that terminated one worker.
type WorkerError struct {
	WorkerID int    // Worker that hit the error
	Op       string // OpList, OpStat or OpClose
	Path     string // Path being processed
	Err      error  // Underlying error
}

// Error implements the error interface for WorkerError.
func (e *WorkerError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("worker %d: %s %s", e.WorkerID, e.Op, e.Path))
	if e.Err != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Err))
	}
	return sb.String()
}

// Unwrap returns the underlying error.
func (e *WorkerError) Unwrap() error {
	return e.Err
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
