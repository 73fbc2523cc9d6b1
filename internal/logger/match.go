package logger

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/harrison/pfind/internal/models"
)

// MatchPrinter writes one matched path per line and, at the end, the
// "Done searching, found K files" line. This is the program's primary
// output and is not subject to log levels.
type MatchPrinter struct {
	writer   io.Writer
	term     string
	useColor bool
	mu       sync.Mutex
}

// NewMatchPrinter creates a MatchPrinter. When useColor is set, occurrences
// of term in the final path element are highlighted.
func NewMatchPrinter(writer io.Writer, term string, useColor bool) *MatchPrinter {
	return &MatchPrinter{writer: writer, term: term, useColor: useColor}
}

// NewAutoMatchPrinter enables color only when writer is a terminal.
func NewAutoMatchPrinter(writer io.Writer, term string) *MatchPrinter {
	return NewMatchPrinter(writer, term, isTerminal(writer))
}

// Match prints the path.
func (p *MatchPrinter) Match(path string) {
	if p.writer == nil {
		return
	}
	line := path
	if p.useColor {
		line = p.highlight(path)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.writer, line)
}

func (p *MatchPrinter) highlight(path string) string {
	if p.term == "" {
		return path
	}
	dir, name := filepath.Split(path)
	hi := color.New(color.FgGreen, color.Bold)
	return dir + strings.ReplaceAll(name, p.term, hi.Sprint(p.term))
}

// Skipped is ignored; diagnostics go through the loggers.
func (p *MatchPrinter) Skipped(path string, reason error) {}

// WorkerFailed is ignored; diagnostics go through the loggers.
func (p *MatchPrinter) WorkerFailed(workerID int, err error) {}

// Done prints the summary line.
func (p *MatchPrinter) Done(summary models.Summary) {
	if p.writer == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.writer, "Done searching, found %d files\n", summary.Matches)
}
