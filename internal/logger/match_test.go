package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/harrison/pfind/internal/models"
)

func TestMatchPrinterPlain(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewAutoMatchPrinter(buf, "fooba")

	p.Match("/tmp/t/a/fooba")
	p.Match("/tmp/t/b/xfoobar.txt")
	p.Skipped("/tmp/t/c", nil)
	p.Done(models.Summary{Matches: 2})

	want := "/tmp/t/a/fooba\n/tmp/t/b/xfoobar.txt\nDone searching, found 2 files\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestMatchPrinterZeroMatches(t *testing.T) {
	buf := &bytes.Buffer{}
	NewMatchPrinter(buf, "nothing", false).Done(models.Summary{})
	if buf.String() != "Done searching, found 0 files\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestMatchPrinterHighlight(t *testing.T) {
	saved := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = saved }()

	buf := &bytes.Buffer{}
	NewMatchPrinter(buf, "log", true).Match("/var/log/app.log")

	out := buf.String()
	// Directory part is never highlighted
	if !strings.HasPrefix(out, "/var/log/app.") {
		t.Errorf("directory part altered: %q", out)
	}
	if !strings.Contains(out, "\x1b[") {
		t.Errorf("expected ANSI highlight in %q", out)
	}
}

func TestMatchPrinterNilWriter(t *testing.T) {
	p := NewMatchPrinter(nil, "x", false)
	p.Match("/x")
	p.Done(models.Summary{Matches: 1})
}
