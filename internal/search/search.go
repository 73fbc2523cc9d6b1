package search

import (
	"github.com/harrison/pfind/internal/fsys"
	"github.com/harrison/pfind/internal/models"
)

// FileSystem is the filesystem access the pool needs.
type FileSystem interface {
	// ReadDir opens a listing of path.
	ReadDir(path string) (fsys.Dir, error)
	// IsDir reports whether path is a directory, following symlinks.
	IsDir(path string) (bool, error)
	// CanRead reports whether path can be opened for listing.
	CanRead(path string) bool
}

// Reporter receives search events. Methods are called concurrently from
// worker goroutines and must be safe for concurrent use.
type Reporter interface {
	Match(path string)
	Skipped(path string, reason error)
	WorkerFailed(workerID int, err error)
	// Done is called exactly once, by the last worker to exit.
	Done(summary models.Summary)
}
