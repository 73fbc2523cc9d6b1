// Package report collects the events of a search into a models.Run and
// renders it as a Markdown or HTML report or a plain match list.
package report

import (
	"errors"
	"sync"

	"github.com/harrison/pfind/internal/fsys"
	"github.com/harrison/pfind/internal/models"
)

// Collector accumulates search events into a Run. It is safe for
// concurrent use by search workers.
type Collector struct {
	mu   sync.Mutex
	run  *models.Run
	done bool
}

// NewCollector creates a Collector filling in run. The caller sets the
// run's identity fields (ID, Root, Term, StartedAt).
func NewCollector(run *models.Run) *Collector {
	return &Collector{run: run}
}

// Match records a matched path.
func (c *Collector) Match(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.run.MatchPaths = append(c.run.MatchPaths, path)
}

// Skipped records a directory that could not be searched.
func (c *Collector) Skipped(path string, reason error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.run.Skipped = append(c.run.Skipped, models.SkippedDir{Path: path, Reason: skipReason(reason)})
}

// WorkerFailed records a fatal worker error.
func (c *Collector) WorkerFailed(workerID int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.run.Failures = append(c.run.Failures, models.WorkerFailure{WorkerID: workerID, Message: err.Error()})
}

// Done copies the final counters into the run.
func (c *Collector) Done(summary models.Summary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.run.ApplySummary(summary)
	c.done = true
}

// Run returns the collected run. It reports false until Done was called.
func (c *Collector) Run() (*models.Run, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.run, c.done
}

func skipReason(reason error) string {
	if reason == nil || errors.Is(reason, fsys.ErrAccessDenied) {
		return "Permission denied"
	}
	return reason.Error()
}
