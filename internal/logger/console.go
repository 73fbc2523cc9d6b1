// Package logger provides logging implementations for pfind searches.
//
// The loggers in this package receive search events (matches, skipped
// directories, worker failures, the final summary) and write them to the
// console or to per-run log files. Implementations are thread-safe because
// search workers report concurrently.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/pfind/internal/models"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ConsoleLogger logs search diagnostics to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps.
// It supports log level filtering to control message verbosity.
// Color output is automatically enabled for terminal output (os.Stdout/os.Stderr).
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// SetColorOutput overrides terminal detection.
func (cl *ConsoleLogger) SetColorOutput(enabled bool) {
	cl.mutex.Lock()
	defer cl.mutex.Unlock()
	cl.colorOutput = enabled
}

// IsTerminal reports whether w is a terminal that should get colored output.
func IsTerminal(w io.Writer) bool {
	return isTerminal(w)
}

// isTerminal checks if the writer is a terminal that supports colors.
// Returns false when NO_COLOR is set or color was disabled globally.
func isTerminal(w io.Writer) bool {
	if w == nil || color.NoColor {
		return false
	}

	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))

	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	}
	return "info"
}

// shouldLog checks if a message at the given level should be logged.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if !cl.shouldLog(strings.ToLower(level)) {
		return
	}
	cl.write(level, message)
}

// write emits one line regardless of the configured level.
func (cl *ConsoleLogger) write(level string, message string) {
	if cl.writer == nil {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	var formatted string
	if cl.colorOutput {
		formatted = cl.formatWithColor(ts, level, message)
	} else {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, level, message)
	}

	cl.writer.Write([]byte(formatted))
}

// formatWithColor formats a log message with ANSI color codes.
func (cl *ConsoleLogger) formatWithColor(ts, level, message string) string {
	var coloredLevel string

	switch strings.ToUpper(level) {
	case "TRACE":
		coloredLevel = color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		coloredLevel = color.New(color.FgCyan).Sprint(level)
	case "INFO":
		coloredLevel = color.New(color.FgBlue).Sprint(level)
	case "WARN":
		coloredLevel = color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		coloredLevel = color.New(color.FgRed).Sprint(level)
	default:
		coloredLevel = level
	}

	return fmt.Sprintf("[%s] [%s] %s\n", ts, coloredLevel, message)
}

// Match logs a matched path at DEBUG level.
// Matches themselves go to stdout through MatchPrinter.
func (cl *ConsoleLogger) Match(path string) {
	cl.LogDebug(fmt.Sprintf("match: %s", path))
}

// Skipped logs a directory that could not be searched. The line is tagged
// WARN but printed at every log level, like matches.
// Format: "Directory <path>: Permission denied"
func (cl *ConsoleLogger) Skipped(path string, reason error) {
	cl.write("WARN", fmt.Sprintf("Directory %s: %s", path, describeReason(reason)))
}

// WorkerFailed logs a fatal worker error at ERROR level with the OS error text.
func (cl *ConsoleLogger) WorkerFailed(workerID int, err error) {
	cl.LogError(err.Error())
}

// Done logs the search summary at INFO level.
func (cl *ConsoleLogger) Done(summary models.Summary) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	output := fmt.Sprintf("[%s] %s\n", ts, cl.paint(color.New(color.Bold), "=== Search Summary ==="))
	output += fmt.Sprintf("[%s] %s\n", ts, formatMetric("Matches", summary.Matches, cl.colorOutput, metricSuccess))
	output += fmt.Sprintf("[%s] %s\n", ts, formatMetric("Workers", summary.Workers, cl.colorOutput, metricPlain))

	kind := metricPlain
	if summary.FailedWorkers > 0 {
		kind = metricFail
	}
	output += fmt.Sprintf("[%s] %s\n", ts, formatMetric("Failed workers", summary.FailedWorkers, cl.colorOutput, kind))
	output += fmt.Sprintf("[%s] Duration: %s\n", ts, FormatDuration(summary.Duration))

	cl.writer.Write([]byte(output))
}

func (cl *ConsoleLogger) paint(c *color.Color, s string) string {
	if !cl.colorOutput {
		return s
	}
	return c.Sprint(s)
}

// describeReason turns a skip reason into the short text shown to users.
func describeReason(reason error) string {
	if reason == nil {
		return "Permission denied"
	}
	msg := reason.Error()
	if msg == "permission denied" {
		return "Permission denied"
	}
	return msg
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// FormatDuration converts a time.Duration to a human-readable string.
// Examples: "120ms", "5s", "1m30s", "2h15m"
func FormatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		remainder := d % time.Hour
		if remainder == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		minutes := remainder / time.Minute
		remainder = remainder % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dh%dm", hours, minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	case d >= time.Minute:
		minutes := d / time.Minute
		remainder := d % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= time.Second:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}
