package logger

import (
	"bytes"
	"strings"
	"testing"
)

// TestLogLevelFiltering verifies that messages are filtered based on log level
func TestLogLevelFiltering(t *testing.T) {
	levels := []string{"trace", "debug", "info", "warn", "error"}

	for ci, configured := range levels {
		for mi, message := range levels {
			shouldAppear := mi >= ci
			t.Run(configured+"/"+message, func(t *testing.T) {
				buf := &bytes.Buffer{}
				logger := NewConsoleLogger(buf, configured)
				text := message + " msg"

				switch message {
				case "trace":
					logger.LogTrace(text)
				case "debug":
					logger.LogDebug(text)
				case "info":
					logger.LogInfo(text)
				case "warn":
					logger.LogWarn(text)
				case "error":
					logger.LogError(text)
				}

				contains := strings.Contains(buf.String(), text)
				if shouldAppear && !contains {
					t.Errorf("expected %q to appear at level %s, output: %q", text, configured, buf.String())
				}
				if !shouldAppear && contains {
					t.Errorf("expected %q to be filtered at level %s, output: %q", text, configured, buf.String())
				}
			})
		}
	}
}

// TestNormalizeLogLevel verifies handling of invalid/unknown log levels
func TestNormalizeLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty string defaults to info", input: "", expected: "info"},
		{name: "unknown level defaults to info", input: "verbose", expected: "info"},
		{name: "uppercase level normalized", input: "DEBUG", expected: "debug"},
		{name: "mixed case normalized", input: "WaRn", expected: "warn"},
		{name: "whitespace trimmed", input: "  error ", expected: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeLogLevel(tt.input); got != tt.expected {
				t.Errorf("normalizeLogLevel(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// TestSkippedIgnoresLogLevel verifies the skipped-directory line survives
// the strictest level, like match output does.
func TestSkippedIgnoresLogLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "error")

	logger.LogWarn("filtered warning")
	logger.Skipped("/data/locked", nil)

	out := buf.String()
	if strings.Contains(out, "filtered warning") {
		t.Errorf("warn message should be filtered at error level: %q", out)
	}
	if !strings.Contains(out, "[WARN] Directory /data/locked: Permission denied") {
		t.Errorf("skipped line missing at error level: %q", out)
	}
	if strings.Count(out, "\n") != 1 {
		t.Errorf("expected exactly one line, got %q", out)
	}
}
