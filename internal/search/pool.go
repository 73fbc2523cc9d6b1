package search

import (
	"sync"
	"time"

	"github.com/harrison/pfind/internal/models"
)

// Status is the terminal status of a search.
type Status int

const (
	// StatusSuccess means every worker finished cleanly.
	StatusSuccess Status = iota
	// StatusFailure means at least one worker exited on a fatal error.
	StatusFailure
)

// String returns the string representation of Status.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// ExitCode returns the process exit code for the status.
func (s Status) ExitCode() int {
	if s == StatusSuccess {
		return 0
	}
	return 1
}

// Result is returned by Run once every worker has exited.
type Result struct {
	Summary models.Summary
	Status  Status
}

// Pool runs searches over a FileSystem. A Pool holds no per-run state and
// may run several searches one after another.
type Pool struct {
	fs       FileSystem
	reporter Reporter
}

// NewPool creates a Pool. A nil reporter discards all events.
func NewPool(fs FileSystem, reporter Reporter) *Pool {
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &Pool{fs: fs, reporter: reporter}
}

// run is the state of one search.
type run struct {
	fs       FileSystem
	reporter Reporter
	term     string
	workers  int

	state   *sharedState
	gate    *startGate
	started time.Time

	done    chan struct{}
	summary models.Summary
}

// Run searches the tree under root with the given number of workers and
// blocks until all of them have exited. It fails with ErrInvalidArgument,
// before starting any worker, when workers < 1 or root is not a readable
// directory. Worker failures do not produce an error; they are reflected in
// the returned Status.
func (p *Pool) Run(root, term string, workers int) (Result, error) {
	if workers < 1 {
		return Result{}, invalidArgument("worker count must be at least 1, got %d", workers)
	}
	if isDir, err := p.fs.IsDir(root); err != nil || !isDir || !p.fs.CanRead(root) {
		return Result{}, invalidArgument("search root %s must be a searchable directory", root)
	}

	r := &run{
		fs:       p.fs,
		reporter: p.reporter,
		term:     term,
		workers:  workers,
		state:    newSharedState(workers),
		gate:     newStartGate(),
		done:     make(chan struct{}),
	}
	r.state.paths.enqueue(root)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		w := &worker{id: i + 1, run: r}
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.loop()
		}()
	}

	r.started = time.Now()
	r.gate.open()

	<-r.done
	wg.Wait()

	status := StatusSuccess
	if !r.summary.Success() {
		status = StatusFailure
	}
	return Result{Summary: r.summary, Status: status}, nil
}

// finish is called once, by the worker that brought the alive count to zero.
func (r *run) finish() {
	r.summary = models.Summary{
		Matches:       r.state.matches.Load(),
		Workers:       r.workers,
		FailedWorkers: r.state.failedWorkers(),
		Duration:      time.Since(r.started),
	}
	r.reporter.Done(r.summary)
	close(r.done)
}

type nopReporter struct{}

func (nopReporter) Match(string)            {}
func (nopReporter) Skipped(string, error)   {}
func (nopReporter) WorkerFailed(int, error) {}
func (nopReporter) Done(models.Summary)     {}
