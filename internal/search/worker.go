package search

import (
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/harrison/pfind/internal/fsys"
)

// worker is one searching goroutine.
type worker struct {
	id   int
	run  *run
	wake *wakeHandle
}

func (w *worker) loop() {
	w.run.gate.wait()

	var err error
	for {
		path, ok := w.run.state.acquire(w.handle())
		if !ok {
			break
		}
		if err = w.searchDir(path); err != nil {
			break
		}
	}

	w.exit(err)
}

// handle returns the worker's wake handle, creating it on first use.
func (w *worker) handle() *wakeHandle {
	if w.wake == nil {
		w.wake = newWakeHandle(&w.run.state.mu)
	}
	return w.wake
}

// searchDir lists dir and handles each entry. A non-nil return is fatal.
func (w *worker) searchDir(dir string) error {
	listing, err := w.run.fs.ReadDir(dir)
	if err != nil {
		switch {
		case errors.Is(err, fsys.ErrAccessDenied):
			w.run.reporter.Skipped(dir, fsys.ErrAccessDenied)
			return nil
		case errors.Is(err, fsys.ErrNotFound):
			// Removed after it was queued
			return nil
		default:
			return w.fatal(OpList, dir, err)
		}
	}

	for {
		entry, err := listing.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			listing.Close()
			return w.fatal(OpList, dir, err)
		}
		if entry.Name == "." || entry.Name == ".." {
			continue
		}
		if err := w.visit(dir, entry); err != nil {
			listing.Close()
			return err
		}
	}

	if err := listing.Close(); err != nil {
		return w.fatal(OpClose, dir, err)
	}
	return nil
}

func (w *worker) visit(dir string, entry fsys.Entry) error {
	child := childPath(dir, entry.Name)

	isDir, err := w.run.fs.IsDir(child)
	if err != nil {
		if errors.Is(err, fsys.ErrVanished) {
			return nil
		}
		return w.fatal(OpStat, child, err)
	}

	if isDir {
		if !w.run.fs.CanRead(child) {
			w.run.reporter.Skipped(child, fsys.ErrAccessDenied)
			return nil
		}
		w.run.state.publish(child)
		return nil
	}

	if strings.Contains(entry.Name, w.run.term) {
		w.run.state.matches.Add(1)
		w.run.reporter.Match(child)
	}
	return nil
}

func (w *worker) fatal(op, path string, err error) error {
	return &WorkerError{WorkerID: w.id, Op: op, Path: path, Err: err}
}

// exit leaves the pool. The last worker out reports the summary.
func (w *worker) exit(err error) {
	if err != nil {
		w.run.reporter.WorkerFailed(w.id, err)
	}
	w.wake = nil

	if w.run.state.leave(err != nil) {
		w.run.finish()
	}
}

// childPath appends name to dir without cleaning, so a root of "." yields
// "./name". A trailing separator on dir is not doubled.
func childPath(dir, name string) string {
	if strings.HasSuffix(dir, string(filepath.Separator)) {
		return dir + name
	}
	return dir + string(filepath.Separator) + name
}
