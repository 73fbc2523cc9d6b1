// Package display formats user-facing terminal blocks that are not log lines:
// warning boxes after a search that skipped directories or lost workers, and
// the status lines printed by watch mode.
//
//	warning := display.SkippedWarning(run.Skipped, 10)
//	warning.Display(os.Stderr, true)
//
// All functions accept io.Writer for testability. Color is decided by the
// caller, so piping output to a file never embeds escape codes.
package display
