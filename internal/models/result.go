package models

import "time"

// Run status constants as stored in history
const (
	StatusSuccess = "SUCCESS" // Every worker finished cleanly
	StatusFailed  = "FAILED"  // At least one worker hit a fatal filesystem error
)

// Summary is the aggregate produced once by the last worker to exit
type Summary struct {
	Matches       int64         // Files whose name contains the term
	Workers       int           // Workers started
	FailedWorkers int           // Workers that exited on a fatal error
	Duration      time.Duration // Wall time from gate open to last exit
}

// Success reports whether no worker failed.
func (s Summary) Success() bool {
	return s.FailedWorkers == 0
}

// Status returns StatusSuccess or StatusFailed.
func (s Summary) Status() string {
	if s.Success() {
		return StatusSuccess
	}
	return StatusFailed
}

// SkippedDir is a directory the search could not enter
type SkippedDir struct {
	Path   string
	Reason string
}

// WorkerFailure records a worker that terminated on a fatal error
type WorkerFailure struct {
	WorkerID int
	Message  string
}
