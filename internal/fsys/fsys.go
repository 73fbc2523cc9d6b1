package fsys

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

var (
	// ErrAccessDenied is returned when a directory cannot be opened for reading.
	ErrAccessDenied = errors.New("permission denied")

	// ErrNotFound is returned when a directory to list no longer exists.
	ErrNotFound = errors.New("directory not found")

	// ErrVanished is returned by IsDir when the entry was removed after it was listed.
	ErrVanished = errors.New("entry vanished")
)

// DefaultBatchSize is the number of entries read per getdents round trip.
const DefaultBatchSize = 256

// Entry is a single directory entry as reported by a listing.
type Entry struct {
	// Name is the base name of the entry.
	Name string
	// IsDirHint is the type bit from the listing. Symlinks report false here,
	// so callers that follow links must still call IsDir.
	IsDirHint bool
}

// Dir is an open directory listing.
// Next returns io.EOF once every entry has been returned.
type Dir interface {
	Next() (Entry, error)
	Close() error
}

// OS is the operating system backed filesystem.
type OS struct {
	// BatchSize bounds how many entries are buffered per read (0 = DefaultBatchSize).
	BatchSize int

	excluded map[string]struct{}
}

// NewOS creates an OS filesystem with the given listing batch size.
func NewOS(batchSize int) *OS {
	return &OS{BatchSize: batchSize}
}

// Exclude hides paths from every listing, matched by absolute path. An
// excluded directory is never listed, so its whole subtree is hidden.
// Paths that cannot be made absolute are ignored. Call it before the OS is
// handed to a running search.
func (o *OS) Exclude(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		if o.excluded == nil {
			o.excluded = make(map[string]struct{})
		}
		o.excluded[abs] = struct{}{}
	}
}

// ReadDir opens path for a lazily batched listing.
func (o *OS) ReadDir(path string) (Dir, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, classifyOpenError(path, err)
	}

	batch := o.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}

	d := &osDir{file: f, path: path, batch: batch}
	if len(o.excluded) > 0 {
		if abs, err := filepath.Abs(path); err == nil {
			d.abs = abs
			d.excluded = o.excluded
		}
	}
	return d, nil
}

// IsDir reports whether path is a directory, following symlinks.
func (o *OS) IsDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		return info.IsDir(), nil
	}

	if errors.Is(err, fs.ErrNotExist) {
		// A dangling symlink still exists as an entry
		if _, lerr := os.Lstat(path); lerr == nil {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", path, ErrVanished)
	}

	return false, fmt.Errorf("stat %s: %w", path, err)
}

// CanRead reports whether path can be opened and closed again.
func (o *OS) CanRead(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	return f.Close() == nil
}

func classifyOpenError(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%s: %w", path, ErrAccessDenied)
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	default:
		return fmt.Errorf("open %s: %w", path, err)
	}
}

// osDir streams entries from an open *os.File in batches.
type osDir struct {
	file    *os.File
	path    string
	batch   int
	pending []fs.DirEntry
	eof     bool

	abs      string
	excluded map[string]struct{}
}

func (d *osDir) Next() (Entry, error) {
	for {
		for len(d.pending) == 0 {
			if d.eof {
				return Entry{}, io.EOF
			}

			entries, err := d.file.ReadDir(d.batch)
			if err == io.EOF {
				d.eof = true
			} else if err != nil {
				return Entry{}, fmt.Errorf("read %s: %w", d.path, err)
			}
			d.pending = entries
		}

		e := d.pending[0]
		d.pending = d.pending[1:]
		if d.hidden(e.Name()) {
			continue
		}
		return Entry{Name: e.Name(), IsDirHint: e.IsDir()}, nil
	}
}

func (d *osDir) hidden(name string) bool {
	if d.excluded == nil {
		return false
	}
	_, ok := d.excluded[filepath.Join(d.abs, name)]
	return ok
}

func (d *osDir) Close() error {
	if err := d.file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", d.path, err)
	}
	return nil
}
