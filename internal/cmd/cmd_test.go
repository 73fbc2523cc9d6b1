package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for a command writing in one goroutine
// while the test reads in another.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// setupWorkspace moves the test into an empty working directory with its own
// pfind home and returns that directory.
func setupWorkspace(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	chdirForTest(t, dir)
	t.Setenv("PFIND_HOME", filepath.Join(dir, "home"))
	return dir
}

// makeTree creates files (relative paths) under dir/tree and returns the tree root.
func makeTree(t *testing.T, dir string, files ...string) string {
	t.Helper()

	root := filepath.Join(dir, "tree")
	require.NoError(t, os.MkdirAll(root, 0755))
	for _, f := range files {
		path := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	}
	return root
}

// executeCommand runs the root command with args and returns stdout and stderr.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return executeCommandContext(t, context.Background(), args...)
}

func executeCommandContext(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()

	rootCmd := NewRootCommand()
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
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
