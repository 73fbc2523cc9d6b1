package display

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
)

// WatchStatus prints watch mode progress lines.
type WatchStatus struct {
	writer   io.Writer
	useColor bool
	reruns   int
}

// NewWatchStatus creates a WatchStatus writing to w.
func NewWatchStatus(w io.Writer, useColor bool) *WatchStatus {
	return &WatchStatus{writer: w, useColor: useColor}
}

func (s *WatchStatus) paint(attr color.Attribute, text string) string {
	if !s.useColor {
		return text
	}
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(text)
}

// Start announces the watched tree.
func (s *WatchStatus) Start(root string, dirs int) {
	fmt.Fprintf(s.writer, "%s %s (%d directories). Press Ctrl+C to stop.\n",
		s.paint(color.FgCyan, "Watching"), root, dirs)
}

// Rerun announces a search triggered by changed paths.
func (s *WatchStatus) Rerun(changed []string) {
	s.reruns++
	first := ""
	if len(changed) > 0 {
		first = changed[0]
	}
	switch len(changed) {
	case 0:
		fmt.Fprintf(s.writer, "%s searching again\n", s.paint(color.FgCyan, fmt.Sprintf("[%d]", s.reruns)))
	case 1:
		fmt.Fprintf(s.writer, "%s %s changed, searching again\n", s.paint(color.FgCyan, fmt.Sprintf("[%d]", s.reruns)), first)
	default:
		fmt.Fprintf(s.writer, "%s %s and %d more changed, searching again\n",
			s.paint(color.FgCyan, fmt.Sprintf("[%d]", s.reruns)), first, len(changed)-1)
	}
}

// Stopped prints the closing line.
func (s *WatchStatus) Stopped(elapsed time.Duration) {
	fmt.Fprintf(s.writer, "%s after %d re-runs (%s)\n",
		s.paint(color.FgGreen, "Stopped watching"), s.reruns, elapsed.Round(time.Second))
}

// Reruns returns how many re-runs were announced.
func (s *WatchStatus) Reruns() int {
	return s.reruns
}
