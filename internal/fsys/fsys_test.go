package fsys

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func collect(t *testing.T, d Dir) []Entry {
	t.Helper()
	var out []Entry
	for {
		e, err := d.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		out = append(out, e)
	}
	return out
}

func TestOSReadDir(t *testing.T) {
	tmpDir := t.TempDir()
	for _, f := range []string{"a.txt", "b.txt", "c.txt", "d.txt", "e.txt"} {
		if err := os.WriteFile(filepath.Join(tmpDir, f), []byte("x"), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(tmpDir, "sub"), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	// Batch size smaller than the entry count forces several refills
	o := NewOS(2)
	d, err := o.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	entries := collect(t, d)
	if err := d.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if len(entries) != 6 {
		t.Fatalf("got %d entries, want 6", len(entries))
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
		if e.Name == "sub" && !e.IsDirHint {
			t.Errorf("expected IsDirHint for sub")
		}
		if e.Name != "sub" && e.IsDirHint {
			t.Errorf("unexpected IsDirHint for %s", e.Name)
		}
	}
	sort.Strings(names)
	want := []string{"a.txt", "b.txt", "c.txt", "d.txt", "e.txt", "sub"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestOSReadDirEmpty(t *testing.T) {
	d, err := NewOS(0).ReadDir(t.TempDir())
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	defer d.Close()

	if _, err := d.Next(); err != io.EOF {
		t.Errorf("Next() on empty dir = %v, want io.EOF", err)
	}
	// Stays at EOF
	if _, err := d.Next(); err != io.EOF {
		t.Errorf("second Next() = %v, want io.EOF", err)
	}
}

func TestOSReadDirNotFound(t *testing.T) {
	_, err := NewOS(0).ReadDir(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ReadDir() error = %v, want ErrNotFound", err)
	}
}

func TestOSReadDirPermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}

	locked := filepath.Join(t.TempDir(), "locked")
	if err := os.Mkdir(locked, 0000); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	o := NewOS(0)
	_, err := o.ReadDir(locked)
	if !errors.Is(err, ErrAccessDenied) {
		t.Errorf("ReadDir() error = %v, want ErrAccessDenied", err)
	}
	if o.CanRead(locked) {
		t.Error("CanRead() = true for a 0000 directory")
	}
}

func TestOSIsDir(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "file.txt")
	dir := filepath.Join(tmpDir, "dir")
	dirLink := filepath.Join(tmpDir, "dirlink")
	dangling := filepath.Join(tmpDir, "dangling")

	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.Symlink(dir, dirLink); err != nil {
		t.Fatalf("failed to create symlink: %v", err)
	}
	if err := os.Symlink(filepath.Join(tmpDir, "nowhere"), dangling); err != nil {
		t.Fatalf("failed to create symlink: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		want    bool
		wantErr error
	}{
		{name: "regular file", path: file, want: false},
		{name: "directory", path: dir, want: true},
		{name: "symlink to directory is followed", path: dirLink, want: true},
		{name: "dangling symlink is a non-directory", path: dangling, want: false},
		{name: "missing entry vanished", path: filepath.Join(tmpDir, "gone"), wantErr: ErrVanished},
	}

	o := NewOS(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := o.IsDir(tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("IsDir() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("IsDir() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsDir() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOSCanRead(t *testing.T) {
	o := NewOS(0)
	tmpDir := t.TempDir()
	if !o.CanRead(tmpDir) {
		t.Error("CanRead() = false for temp dir")
	}
	if o.CanRead(filepath.Join(tmpDir, "missing")) {
		t.Error("CanRead() = true for missing path")
	}
}

func TestOSExclude(t *testing.T) {
	tmpDir := t.TempDir()
	for _, d := range []string{"logs", "data"} {
		if err := os.Mkdir(filepath.Join(tmpDir, d), 0755); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range []string{"keep.txt", "out.txt", "out.txt.lock", "data/inner.txt"} {
		if err := os.WriteFile(filepath.Join(tmpDir, f), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	fs := NewOS(1)
	fs.Exclude(filepath.Join(tmpDir, "logs"), filepath.Join(tmpDir, "out.txt"), filepath.Join(tmpDir, "out.txt.lock"), "")

	d, err := fs.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	defer d.Close()

	var names []string
	for _, e := range collect(t, d) {
		names = append(names, e.Name)
	}
	sort.Strings(names)

	want := []string{"data", "keep.txt"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names = %v, want %v", names, want)
		}
	}
}

func TestOSExcludeRelativePaths(t *testing.T) {
	tmpDir := t.TempDir()
	chdirForTest(t, tmpDir)
	if err := os.MkdirAll(filepath.Join(".pfind", "logs"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile("notes.log", nil, 0644); err != nil {
		t.Fatal(err)
	}

	fs := NewOS(0)
	fs.Exclude(filepath.Join(".pfind", "logs"))

	d, err := fs.ReadDir("./.pfind")
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	defer d.Close()
	if entries := collect(t, d); len(entries) != 0 {
		t.Errorf("excluded log dir still listed: %v", entries)
	}

	root, err := fs.ReadDir(".")
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	defer root.Close()
	if entries := collect(t, root); len(entries) != 2 {
		t.Errorf("entries = %v, want .pfind and notes.log", entries)
	}
}

// chdirForTest changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
