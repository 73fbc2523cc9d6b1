package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/harrison/pfind/internal/models"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Files      []string // Related paths (optional)
	More       int      // Paths omitted from Files
	Suggestion string   // Action to take (optional)
}

// Display writes the warning, in yellow when useColor is set.
func (w Warning) Display(out io.Writer, useColor bool) {
	var b strings.Builder

	b.WriteString("Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	if len(w.Files) > 0 {
		if len(w.Files)+w.More == 1 {
			b.WriteString("    Affected path:\n")
		} else {
			b.WriteString("    Affected paths:\n")
		}
		for i, file := range w.Files {
			fmt.Fprintf(&b, "      %d. %s\n", i+1, file)
		}
		if w.More > 0 {
			fmt.Fprintf(&b, "      ... and %d more\n", w.More)
		}
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion:\n")
		b.WriteString("    ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	if useColor {
		yellow := color.New(color.FgYellow)
		yellow.EnableColor()
		fmt.Fprint(out, yellow.Sprint(b.String()))
		return
	}
	fmt.Fprint(out, b.String())
}

// SkippedWarning builds the warning shown after a search that could not
// enter some directories. At most limit paths are listed (all when limit <= 0).
func SkippedWarning(skipped []models.SkippedDir, limit int) Warning {
	paths := make([]string, len(skipped))
	for i, d := range skipped {
		paths[i] = d.Path
	}
	files, more := truncate(paths, limit)

	noun := "directories were"
	if len(skipped) == 1 {
		noun = "directory was"
	}
	return Warning{
		Title:      fmt.Sprintf("%d %s not searched", len(skipped), noun),
		Message:    "Matches below these paths are missing from the results.",
		Files:      files,
		More:       more,
		Suggestion: "Re-run with permissions to read them, or search a narrower root.",
	}
}

// FailureWarning builds the warning shown when workers exited on fatal
// errors. The search still returned every match found by the others.
func FailureWarning(failures []models.WorkerFailure, workers int) Warning {
	msgs := make([]string, len(failures))
	for i, f := range failures {
		msgs[i] = f.Message
	}
	return Warning{
		Title:   fmt.Sprintf("%d of %d workers failed", len(failures), workers),
		Message: "The search finished with the remaining workers; results may be incomplete.",
		Files:   msgs,
	}
}

func truncate(items []string, limit int) ([]string, int) {
	if limit <= 0 || len(items) <= limit {
		return items, 0
	}
	return items[:limit], len(items) - limit
}
