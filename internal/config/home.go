package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnv names the environment variable that overrides the pfind home.
const HomeEnv = "PFIND_HOME"

// rootMarker marks a directory whose .pfind home is shared by its subtree.
const rootMarker = ".pfind-root"

// GetHome returns the pfind home directory.
// Priority order:
//  1. PFIND_HOME environment variable (if set)
//  2. .pfind in the nearest ancestor containing a .pfind-root marker
//  3. .pfind in the current working directory (fallback)
//
// The directory is created if it doesn't exist.
func GetHome() (string, error) {
	if home := os.Getenv(HomeEnv); home != "" {
		return home, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	base := cwd
	if root, ok := findMarkedRoot(cwd); ok {
		base = root
	}

	home := filepath.Join(base, ".pfind")
	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create pfind home directory: %w", err)
	}
	return home, nil
}

// findMarkedRoot walks up from dir looking for the .pfind-root marker.
func findMarkedRoot(dir string) (string, bool) {
	current := dir
	for {
		if _, err := os.Stat(filepath.Join(current, rootMarker)); err == nil {
			return current, true
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", false
		}
		current = parent
	}
}

// HistoryDBPath returns the path of the history database:
// $PFIND_HOME/history/runs.db. The history directory is created if needed.
func HistoryDBPath() (string, error) {
	home, err := GetHome()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(home, "history")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create history directory: %w", err)
	}
	return filepath.Join(dir, "runs.db"), nil
}
