// Package watch re-runs a search whenever the searched tree changes.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 500 * time.Millisecond

// ErrClosed is returned by Run when the watcher was closed underneath it.
var ErrClosed = errors.New("watcher closed")

// Options configures a Watcher.
type Options struct {
	// Debounce is how long the tree must stay quiet before the trigger runs.
	Debounce time.Duration

	// IgnorePaths are files or directory trees whose changes never trigger,
	// typically pfind's own outputs when they live under the root.
	IgnorePaths []string

	// IgnorePatterns are filepath.Match patterns tested against base names.
	IgnorePatterns []string

	// OnError receives errors from the notification backend. Nil drops them.
	OnError func(error)
}

// Watcher watches a directory tree recursively.
type Watcher struct {
	fs       *fsnotify.Watcher
	root     string
	opts     Options
	ignore   []string
	watching int
}

// New starts watching root and every subdirectory that can be read.
func New(root string, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{fs: fsw, root: abs, opts: opts}
	for _, p := range opts.IgnorePaths {
		if a, err := filepath.Abs(p); err == nil {
			w.ignore = append(w.ignore, a)
		}
	}

	if err := w.addRecursive(abs); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Root returns the absolute path of the watched tree.
func (w *Watcher) Root() string {
	return w.root
}

// Watching returns how many directories have been added to the watch list.
func (w *Watcher) Watching() int {
	return w.watching
}

// addRecursive watches dir and its subdirectories. Directories that vanish
// or cannot be read are skipped.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) || os.IsPermission(err) {
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.ignored(path) {
			return fs.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			if os.IsPermission(err) || os.IsNotExist(err) {
				return fs.SkipDir
			}
			return err
		}
		w.watching++
		return nil
	})
}

func (w *Watcher) ignored(path string) bool {
	for _, p := range w.ignore {
		if path == p || strings.HasPrefix(path, p+string(filepath.Separator)) {
			return true
		}
	}
	base := filepath.Base(path)
	for _, pattern := range w.opts.IgnorePatterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// relevant reports whether ev should count as a change, and starts watching
// newly created directories.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod || w.ignored(ev.Name) {
		return false
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(ev.Name); err != nil {
				w.reportError(err)
			}
		}
	}
	return true
}

func (w *Watcher) reportError(err error) {
	if w.opts.OnError != nil {
		w.opts.OnError(err)
	}
}

// Run calls trigger with the sorted set of changed paths each time the tree
// has been quiet for the debounce period after a change. Changes that
// arrive while trigger runs are batched into the next call. Run returns nil
// when ctx is done.
func (w *Watcher) Run(ctx context.Context, trigger func(changed []string)) error {
	pending := make(map[string]struct{})
	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return ErrClosed
			}
			if !w.relevant(ev) {
				continue
			}
			pending[ev.Name] = struct{}{}
			timer.Reset(w.opts.Debounce)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return ErrClosed
			}
			w.reportError(err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)
			trigger(changed)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
