package report

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/harrison/pfind/internal/filelock"
	"github.com/harrison/pfind/internal/models"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// Markdown renders run as a Markdown document.
func Markdown(run *models.Run) []byte {
	var b bytes.Buffer

	fmt.Fprintf(&b, "# pfind report: %s\n\n", escapeText(run.Term))
	b.WriteString("| Field | Value |\n")
	b.WriteString("|-------|-------|\n")
	row := func(k, v string) { fmt.Fprintf(&b, "| %s | %s |\n", k, v) }
	if run.ID != "" {
		row("Run ID", cellCode(run.ID))
	}
	if run.Host != "" {
		row("Host", escapeText(run.Host))
	}
	row("Root", cellCode(run.Root))
	row("Term", cellCode(run.Term))
	if !run.StartedAt.IsZero() {
		row("Started", run.StartedAt.Format(time.RFC3339))
	}
	row("Duration", run.Duration.Round(time.Millisecond).String())
	row("Workers", fmt.Sprintf("%d", run.Workers))
	row("Failed workers", fmt.Sprintf("%d", run.FailedWorkers))
	row("Matches", fmt.Sprintf("%d", run.Matches))
	row("Status", run.Status)

	fmt.Fprintf(&b, "\n## Matches (%d)\n\n", len(run.MatchPaths))
	if len(run.MatchPaths) == 0 {
		b.WriteString("No matches.\n")
	}
	for _, p := range run.SortedMatches() {
		fmt.Fprintf(&b, "- %s\n", codeSpan(p))
	}

	if len(run.Skipped) > 0 {
		skipped := make([]models.SkippedDir, len(run.Skipped))
		copy(skipped, run.Skipped)
		sort.Slice(skipped, func(i, j int) bool { return skipped[i].Path < skipped[j].Path })

		fmt.Fprintf(&b, "\n## Skipped directories (%d)\n\n", len(skipped))
		for _, d := range skipped {
			fmt.Fprintf(&b, "- %s: %s\n", codeSpan(d.Path), escapeText(d.Reason))
		}
	}

	if len(run.Failures) > 0 {
		failures := make([]models.WorkerFailure, len(run.Failures))
		copy(failures, run.Failures)
		sort.Slice(failures, func(i, j int) bool { return failures[i].WorkerID < failures[j].WorkerID })

		fmt.Fprintf(&b, "\n## Worker failures (%d)\n\n", len(failures))
		for _, f := range failures {
			fmt.Fprintf(&b, "- worker %d: %s\n", f.WorkerID, codeSpan(f.Message))
		}
	}

	return b.Bytes()
}

// HTML renders run as a standalone HTML page.
func HTML(run *models.Run) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert(Markdown(run), &body); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	var b bytes.Buffer
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>pfind report: %s</title>\n", html.EscapeString(run.Term))
	b.WriteString("</head>\n<body>\n")
	b.Write(body.Bytes())
	b.WriteString("</body>\n</html>\n")
	return b.Bytes(), nil
}

// IsHTMLPath reports whether path names an HTML report.
func IsHTMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// Write writes the report for run to path, as HTML for .html/.htm and
// Markdown otherwise.
func Write(path string, run *models.Run) error {
	data := Markdown(run)
	if IsHTMLPath(path) {
		var err error
		if data, err = HTML(run); err != nil {
			return err
		}
	}
	if err := filelock.LockAndWrite(path, data); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

// WriteMatchList writes the matched paths of run to path, sorted, one per line.
func WriteMatchList(path string, run *models.Run) error {
	err := filelock.LockAndWriteFunc(path, func(w io.Writer) error {
		for _, p := range run.SortedMatches() {
			if _, err := io.WriteString(w, p+"\n"); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write match list %s: %w", path, err)
	}
	return nil
}

// codeSpan wraps s in a backtick fence longer than any backtick run inside it.
func codeSpan(s string) string {
	if s == "" {
		return "*(empty)*"
	}
	longest, run := 0, 0
	for _, r := range s {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	fence := strings.Repeat("`", longest+1)
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		s = " " + s + " "
	}
	return fence + s + fence
}

// cellCode is codeSpan for table cells, where pipes must be escaped even
// inside code.
func cellCode(s string) string {
	return strings.ReplaceAll(codeSpan(s), "|", `\|`)
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"|", `\|`,
	"#", `\#`,
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}
