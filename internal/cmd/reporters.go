package cmd

import (
	"github.com/harrison/pfind/internal/models"
	"github.com/harrison/pfind/internal/search"
)

// multiReporter implements search.Reporter by delegating to multiple reporters
type multiReporter struct {
	reporters []search.Reporter
}

func newMultiReporter(reporters ...search.Reporter) *multiReporter {
	m := &multiReporter{}
	for _, r := range reporters {
		if r != nil {
			m.reporters = append(m.reporters, r)
		}
	}
	return m
}

// Match forwards to all reporters
func (m *multiReporter) Match(path string) {
	for _, r := range m.reporters {
		r.Match(path)
	}
}

// Skipped forwards to all reporters
func (m *multiReporter) Skipped(path string, reason error) {
	for _, r := range m.reporters {
		r.Skipped(path, reason)
	}
}

// WorkerFailed forwards to all reporters
func (m *multiReporter) WorkerFailed(workerID int, err error) {
	for _, r := range m.reporters {
		r.WorkerFailed(workerID, err)
	}
}

// Done forwards to all reporters
func (m *multiReporter) Done(summary models.Summary) {
	for _, r := range m.reporters {
		r.Done(summary)
	}
}
