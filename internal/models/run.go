package models

import (
	"sort"
	"time"
)

// Run is a complete record of one search, as written to history and reports.
type Run struct {
	ID            string
	Host          string
	Root          string
	Term          string
	Workers       int
	Matches       int64
	FailedWorkers int
	Status        string
	StartedAt     time.Time
	Duration      time.Duration

	MatchPaths []string
	Skipped    []SkippedDir
	Failures   []WorkerFailure
}

// ApplySummary copies the aggregate counters from a finished search.
func (r *Run) ApplySummary(s Summary) {
	r.Matches = s.Matches
	r.Workers = s.Workers
	r.FailedWorkers = s.FailedWorkers
	r.Duration = s.Duration
	r.Status = s.Status()
}

// Success reports whether the run finished without worker failures.
func (r *Run) Success() bool {
	return r.Status == StatusSuccess
}

// SortedMatches returns the matched paths in lexical order.
// Workers report matches in no particular order.
func (r *Run) SortedMatches() []string {
	out := make([]string, len(r.MatchPaths))
	copy(out, r.MatchPaths)
	sort.Strings(out)
	return out
}
