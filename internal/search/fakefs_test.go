package search

import (
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/harrison/pfind/internal/fsys"
	"github.com/harrison/pfind/internal/models"
)

// fakeFS is an in-memory tree with fault injection.
// Paths ending in "/" passed to newFakeFS are directories.
type fakeFS struct {
	mu       sync.Mutex
	dirs     map[string][]string // dir -> child names
	files    map[string]bool
	denied   map[string]bool  // directories that cannot be opened
	statErr  map[string]error // IsDir failures
	listErr  map[string]error // ReadDir failures
	closeErr map[string]error
	listed   map[string]int
	yield    bool // Gosched inside listings to shake out interleavings
}

func newFakeFS(root string, paths ...string) *fakeFS {
	f := &fakeFS{
		dirs:     map[string][]string{root: nil},
		files:    map[string]bool{},
		denied:   map[string]bool{},
		statErr:  map[string]error{},
		listErr:  map[string]error{},
		closeErr: map[string]error{},
		listed:   map[string]int{},
	}
	for _, p := range paths {
		isDir := strings.HasSuffix(p, "/")
		full := filepath.Join(root, strings.TrimSuffix(p, "/"))
		f.add(full, isDir)
	}
	return f
}

func (f *fakeFS) add(path string, isDir bool) {
	parent := filepath.Dir(path)
	if _, ok := f.dirs[parent]; !ok {
		f.add(parent, true)
	}
	name := filepath.Base(path)
	if isDir {
		if _, ok := f.dirs[path]; ok {
			return
		}
		f.dirs[path] = nil
	} else {
		f.files[path] = true
	}
	f.dirs[parent] = append(f.dirs[parent], name)
}

func (f *fakeFS) ReadDir(path string) (fsys.Dir, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listed[path]++
	if err, ok := f.listErr[path]; ok {
		return nil, err
	}
	if f.denied[path] {
		return nil, fmt.Errorf("%s: %w", path, fsys.ErrAccessDenied)
	}
	children, ok := f.dirs[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, fsys.ErrNotFound)
	}

	// Real listings include the pseudo entries
	entries := []fsys.Entry{{Name: ".", IsDirHint: true}, {Name: "..", IsDirHint: true}}
	for _, name := range children {
		_, isDir := f.dirs[filepath.Join(path, name)]
		entries = append(entries, fsys.Entry{Name: name, IsDirHint: isDir})
	}
	return &fakeDir{entries: entries, closeErr: f.closeErr[path], yield: f.yield}, nil
}

func (f *fakeFS) IsDir(path string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.statErr[path]; ok {
		return false, err
	}
	if _, ok := f.dirs[path]; ok {
		return true, nil
	}
	if f.files[path] {
		return false, nil
	}
	return false, fmt.Errorf("%s: %w", path, fsys.ErrVanished)
}

func (f *fakeFS) CanRead(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.dirs[path]
	return ok && !f.denied[path]
}

func (f *fakeFS) listCounts() map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int, len(f.listed))
	for k, v := range f.listed {
		out[k] = v
	}
	return out
}

type fakeDir struct {
	entries  []fsys.Entry
	closeErr error
	yield    bool
}

func (d *fakeDir) Next() (fsys.Entry, error) {
	if d.yield {
		runtime.Gosched()
	}
	if len(d.entries) == 0 {
		return fsys.Entry{}, io.EOF
	}
	e := d.entries[0]
	d.entries = d.entries[1:]
	return e, nil
}

func (d *fakeDir) Close() error {
	return d.closeErr
}

// recorder is a goroutine-safe Reporter that keeps everything it sees.
type recorder struct {
	mu       sync.Mutex
	matches  []string
	skipped  []string
	failures []error
	dones    int
	summary  models.Summary
}

func (r *recorder) Match(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches = append(r.matches, path)
}

func (r *recorder) Skipped(path string, reason error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skipped = append(r.skipped, path)
}

func (r *recorder) WorkerFailed(workerID int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, err)
}

func (r *recorder) Done(summary models.Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dones++
	r.summary = summary
}

func (r *recorder) sortedMatches() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]string(nil), r.matches...)
	sort.Strings(out)
	return out
}

// runWithTimeout fails the test instead of hanging when the pool deadlocks.
func runWithTimeout(t *testing.T, p *Pool, root, term string, workers int) (Result, error) {
	t.Helper()

	type outcome struct {
		res Result
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		res, err := p.Run(root, term, workers)
		ch <- outcome{res, err}
	}()

	select {
	case o := <-ch:
		return o.res, o.err
	case <-time.After(10 * time.Second):
		t.Fatalf("search with %d workers did not terminate", workers)
		return Result{}, nil
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}
