package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harrison/pfind/internal/models"
)

// FileLogger logs search events to files in the .pfind/logs/ directory.
// It creates a timestamped log file per run and maintains a latest.log
// symlink pointing to the most recent run.
// It is thread-safe and implements the search.Reporter interface.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger that writes to .pfind/logs/ with level "info".
func NewFileLogger(runID string) (*FileLogger, error) {
	return NewFileLoggerWithDirAndLevel(filepath.Join(".pfind", "logs"), runID, "info")
}

// NewFileLoggerWithDirAndLevel creates a FileLogger with a custom log directory and level.
// It creates the directory if needed, opens a timestamped run log file
// (run-YYYYMMDD-HHMMSS.log), and points latest.log at it.
func NewFileLoggerWithDirAndLevel(logDir, runID, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	runFile, file, err := openRunFile(logDir)
	if err != nil {
		return nil, err
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	fl := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
	}

	fl.writeRunLog("=== pfind Run Log ===\n")
	if runID != "" {
		fl.writeRunLog(fmt.Sprintf("Run ID: %s\n", runID))
	}
	fl.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return fl, nil
}

// openRunFile creates a new run log. Runs started within the same second
// (watch mode) get a numeric suffix instead of sharing a file.
func openRunFile(logDir string) (string, *os.File, error) {
	base := fmt.Sprintf("run-%s", time.Now().Format("20060102-150405"))
	name := base + ".log"
	for i := 1; ; i++ {
		path := filepath.Join(logDir, name)
		file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			return path, file, nil
		}
		if !os.IsExist(err) || i > 100 {
			return "", nil, fmt.Errorf("failed to create run log file: %w", err)
		}
		name = fmt.Sprintf("%s-%d.log", base, i)
	}
}

// RunFile returns the path of the current run log.
func (fl *FileLogger) RunFile() string {
	return fl.runFile
}

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.write(level, message)
}

func (fl *FileLogger) write(level string, message string) {
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

// Match records a matched path at DEBUG level.
func (fl *FileLogger) Match(path string) {
	fl.logWithLevel("DEBUG", "match: "+path)
}

// Skipped records a directory that could not be searched, at every level.
func (fl *FileLogger) Skipped(path string, reason error) {
	fl.write("WARN", fmt.Sprintf("Directory %s: %s", path, describeReason(reason)))
}

// WorkerFailed records a fatal worker error at ERROR level.
func (fl *FileLogger) WorkerFailed(workerID int, err error) {
	fl.logWithLevel("ERROR", err.Error())
}

// Done writes the search summary at INFO level.
func (fl *FileLogger) Done(summary models.Summary) {
	if !fl.shouldLog("info") {
		return
	}

	ts := timestamp()
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] === Search Summary ===\n", ts)
	fmt.Fprintf(&b, "[%s] Matches: %d\n", ts, summary.Matches)
	fmt.Fprintf(&b, "[%s] Workers: %d\n", ts, summary.Workers)
	fmt.Fprintf(&b, "[%s] Failed workers: %d\n", ts, summary.FailedWorkers)
	fmt.Fprintf(&b, "[%s] Duration: %s\n", ts, FormatDuration(summary.Duration))
	fmt.Fprintf(&b, "[%s] Status: %s\n", ts, summary.Status())
	fl.writeRunLog(b.String())
}

// Close flushes and closes the run log file.
// Safe to call multiple times.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog == nil {
		return nil
	}
	if err := fl.runLog.Sync(); err != nil {
		return fmt.Errorf("failed to sync run log: %w", err)
	}
	if err := fl.runLog.Close(); err != nil {
		return fmt.Errorf("failed to close run log: %w", err)
	}
	fl.runLog = nil
	return nil
}

// writeRunLog writes to the run log file with thread safety.
func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
	}
}
