// Package fsys provides the filesystem access used by the parallel search.
//
// The search pool never touches the os package directly. It reads directory
// listings, classifies entries and probes directory readability through the
// small surface defined here, which keeps the pool testable with fake trees
// that inject permission, vanish and fatal errors.
//
// # Error Classes
//
// Errors returned by [OS] fall into three classes:
//
//   - [ErrAccessDenied]: a directory exists but cannot be opened. The search
//     reports it as skipped and continues.
//   - [ErrNotFound] / [ErrVanished]: the path disappeared between the moment
//     it was discovered and the moment it was opened or stat'ed. The search
//     ignores it silently.
//   - Anything else is returned wrapped and is fatal to the worker that hit it.
//
// # Symlinks
//
// [OS.IsDir] follows symbolic links, so a link to a directory is searched like
// the directory itself. There is no cycle detection. A dangling link is
// classified as a non-directory so its name can still match.
package fsys
