// Package filelock serializes writers of pfind output files (match lists,
// reports) across goroutines and processes, and replaces files atomically so
// readers never observe a half-written result.
package filelock

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockSuffix is appended to a target path to name its lock file.
const LockSuffix = ".lock"

// FileLock is an exclusive advisory lock backed by a lock file.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// NewFileLock creates a lock on the given lock-file path. Nothing is
// touched on disk until the lock is acquired.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Path returns the lock file path.
func (fl *FileLock) Path() string {
	return fl.path
}

// Lock blocks until the exclusive lock is held.
func (fl *FileLock) Lock() error {
	if err := fl.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	return nil
}

// TryLock acquires the lock without blocking. It reports false when another
// holder has it.
func (fl *FileLock) TryLock() (bool, error) {
	acquired, err := fl.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", fl.path, err)
	}
	return acquired, nil
}

// Unlock releases the lock.
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}
	return nil
}

// AtomicWrite replaces path with data. See AtomicWriteFunc.
func AtomicWrite(path string, data []byte) error {
	return AtomicWriteFunc(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// AtomicWriteFunc streams content produced by write into a temp file next to
// path, syncs it, and renames it over path. On any failure the temp file is
// removed and an existing file at path is left untouched. Missing parent
// directories are created.
func AtomicWriteFunc(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// Same directory keeps the rename on one filesystem
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = write(bw); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err = os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}
	return nil
}

// WithLock runs fn while holding the lock for path (path + ".lock").
// The parent directory of path is created if needed.
func WithLock(path string, fn func() error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	lock := NewFileLock(path + LockSuffix)
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	return fn()
}

// LockAndWrite atomically replaces path with data under its lock.
func LockAndWrite(path string, data []byte) error {
	return WithLock(path, func() error {
		return AtomicWrite(path, data)
	})
}

// LockAndWriteFunc atomically replaces path with streamed content under its lock.
func LockAndWriteFunc(path string, write func(io.Writer) error) error {
	return WithLock(path, func() error {
		return AtomicWriteFunc(path, write)
	})
}
